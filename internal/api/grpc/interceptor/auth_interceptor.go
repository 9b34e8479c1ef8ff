package interceptor

import (
	"context"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"journal-backend/internal/config"
	"journal-backend/internal/logger"
	"journal-backend/internal/security"
)

type AuthInterceptor struct {
	tokenManager security.TokenManager
}

func NewAuthInterceptor(tm security.TokenManager) *AuthInterceptor {
	return &AuthInterceptor{tokenManager: tm}
}

// Unary returns a server interceptor function to authenticate and authorize unary RPCs
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		level := config.GetSecurityLevel(info.FullMethod)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			return handler(ctx, req)
		}

		token, err := i.extractToken(ctx)
		if err != nil {
			return nil, err
		}

		claims, err := i.tokenManager.ValidateToken(token)
		if err != nil {
			logger.Warn("Rejected admin token", "method", info.FullMethod, "error", err)
			return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
		}

		if err := i.checkSecurityLevel(level, claims); err != nil {
			return nil, err
		}

		// Set overwrites any "user-id" header sent by the client.
		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			md = metadata.New(nil)
		} else {
			md = md.Copy()
		}
		md.Set("user-id", strconv.Itoa(int(claims.UserID)))
		newCtx := metadata.NewIncomingContext(ctx, md)

		return handler(security.WithClaims(newCtx, claims), req)
	}
}

// extractToken reads the "authorization" metadata. The Bearer scheme is optional.
func (i *AuthInterceptor) extractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "metadata is not provided")
	}
	values := md.Get("authorization")
	if len(values) == 0 || values[0] == "" {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}
	token := values[0]
	if scheme, rest, found := strings.Cut(token, " "); found && strings.EqualFold(scheme, "bearer") {
		token = rest
	}
	return token, nil
}

// checkSecurityLevel checks the role the level asks for. Per-journal scope is left
// to the handlers, which know the journal being touched.
func (i *AuthInterceptor) checkSecurityLevel(level config.SecurityLevel, claims *security.AdminClaims) error {
	switch level {
	case config.SecurityAdmin:
		if !claims.HasRole(security.RoleSiteAdmin) && !claims.HasRole(security.RoleJournalAdmin) {
			return status.Error(codes.PermissionDenied, "admin role required")
		}
	}
	return nil
}
