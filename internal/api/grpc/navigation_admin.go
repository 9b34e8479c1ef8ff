package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"journal-backend/internal/domain"
	"journal-backend/internal/invitation"
	"journal-backend/internal/logger"
	"journal-backend/internal/security"
	"journal-backend/internal/service"
)

// NavigationMenuAdminHandler serves NavigationMenuAdmin.
//
//	InstallNavigationMenus          {journal_id?, document} -> {menus}
//	GetNavigationMenu               {id} -> NavigationMenuTree
//	DispatchRegistrationInvitation  {user_id, journal_id?} -> {id, status, expires_at}
//
// A missing journal_id means the site-wide scope.
type NavigationMenuAdminHandler struct {
	navSvc service.NavigationService
	invSvc service.InvitationService
}

func NewNavigationMenuAdminHandler(navSvc service.NavigationService, invSvc service.InvitationService) *NavigationMenuAdminHandler {
	return &NavigationMenuAdminHandler{navSvc: navSvc, invSvc: invSvc}
}

func (h *NavigationMenuAdminHandler) InstallNavigationMenus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	contextID, err := optionalID(req, "journal_id")
	if err != nil {
		return nil, err
	}
	if err := checkScope(ctx, contextID); err != nil {
		return nil, err
	}
	document := req.GetFields()["document"].GetStringValue()
	if document == "" {
		return nil, status.Error(codes.InvalidArgument, "document is required")
	}

	if err := h.navSvc.InstallSettings(ctx, contextID, strings.NewReader(document)); err != nil {
		return nil, toStatus(err)
	}
	menus, err := h.navSvc.ListMenus(ctx, contextID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"menus": menus})
}

func (h *NavigationMenuAdminHandler) GetNavigationMenu(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := optionalID(req, "id")
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	tree, err := h.navSvc.GetMenuTree(ctx, *id)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := checkScope(ctx, tree.Menu.ContextID); err != nil {
		return nil, err
	}
	return toStruct(tree)
}

func (h *NavigationMenuAdminHandler) DispatchRegistrationInvitation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	invitee, err := optionalID(req, "user_id")
	if err != nil {
		return nil, err
	}
	contextID, err := optionalID(req, "journal_id")
	if err != nil {
		return nil, err
	}
	if err := checkScope(ctx, contextID); err != nil {
		return nil, err
	}

	inv := &domain.Invitation{ClassName: invitation.RegistrationAccessClass, ContextID: contextID}
	if invitee != nil {
		inv.UserID = *invitee
	}
	if _, err := h.invSvc.Dispatch(ctx, inv); err != nil {
		return nil, toStatus(err)
	}
	logger.Info("Registration invitation dispatched over gRPC", "invitation_id", inv.ID, "by_user_id", userID)
	return toStruct(map[string]any{
		"id":         inv.ID,
		"status":     inv.Status,
		"expires_at": inv.ExpiryDate.Format(time.RFC3339),
	})
}

// optionalID reads a numeric field. Absent or null fields yield nil.
func optionalID(req *structpb.Struct, name string) (*int32, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return nil, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, nil
	}
	n, isNum := v.GetKind().(*structpb.Value_NumberValue)
	if !isNum || n.NumberValue != float64(int32(n.NumberValue)) {
		return nil, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
	}
	id := int32(n.NumberValue)
	return &id, nil
}

func checkScope(ctx context.Context, journalID *int32) error {
	claims := security.ClaimsFromContext(ctx)
	if claims == nil || !claims.CanManage(journalID) {
		return status.Error(codes.PermissionDenied, "not allowed to administer this scope")
	}
	return nil
}

// toStruct converts v through its JSON form so the wire shape matches the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvitationNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrMalformedInput),
		errors.Is(err, domain.ErrInvitationIncomplete),
		errors.Is(err, domain.ErrUnknownInvitationKind):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrSlotTaken), errors.Is(err, domain.ErrInvitationNotPending):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	logger.Error("gRPC call failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}
