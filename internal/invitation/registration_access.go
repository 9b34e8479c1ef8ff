package invitation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository"
	"journal-backend/internal/routing"
)

const (
	RegistrationAccessClass    = "RegistrationAccessInvite"
	RegistrationAccessTemplate = "registration_access"
)

// RegistrationAccess activates an account that registered but never validated its email.
type RegistrationAccess struct {
	users  repository.UserRepository
	locale string
	now    func() time.Time
}

// NewRegistrationAccess renders names in locale, the site's primary locale.
func NewRegistrationAccess(users repository.UserRepository, locale string) *RegistrationAccess {
	return &RegistrationAccess{users: users, locale: locale, now: time.Now}
}

func (h *RegistrationAccess) ClassName() string { return RegistrationAccessClass }

func (h *RegistrationAccess) RedirectRoute() string { return routing.RouteLogin }

func (h *RegistrationAccess) Prepare(ctx context.Context, inv *domain.Invitation) error {
	if _, err := h.users.GetByID(ctx, inv.UserID); err != nil {
		return fmt.Errorf("load invited user %d: %w", inv.UserID, err)
	}
	return nil
}

func (h *RegistrationAccess) Mail(ctx context.Context, inv *domain.Invitation, acceptURL string) (*domain.Mail, error) {
	user, err := h.users.GetByID(ctx, inv.UserID)
	if err != nil {
		return nil, fmt.Errorf("load invited user %d: %w", inv.UserID, err)
	}
	to := user.Email
	if inv.Email != "" {
		to = inv.Email
	}
	name := user.FullName(h.locale, h.locale)
	return &domain.Mail{
		To:       to,
		ToName:   name,
		Subject:  "Validate your account",
		Template: RegistrationAccessTemplate,
		Data: map[string]any{
			"activateUrl":  acceptURL,
			"userFullName": name,
			"username":     user.Username,
		},
	}, nil
}

// Validate holds while the user has not validated yet. A missing user makes the
// acceptance a no-op rather than an error.
func (h *RegistrationAccess) Validate(ctx context.Context, inv *domain.Invitation) (bool, error) {
	user, err := h.users.GetByID(ctx, inv.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Invited user no longer exists", "invitation_id", inv.ID, "user_id", inv.UserID)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.DateValidated == nil, nil
}

func (h *RegistrationAccess) Apply(ctx context.Context, inv *domain.Invitation) error {
	user, err := h.users.GetByID(ctx, inv.UserID)
	if err != nil {
		return err
	}
	now := h.now().UTC()
	user.Disabled = false
	user.DisabledReason = ""
	user.DateValidated = &now
	if err := h.users.Update(ctx, user); err != nil {
		return fmt.Errorf("activate user %d: %w", user.ID, err)
	}
	logger.Info("User account activated by invitation", "invitation_id", inv.ID, "user_id", user.ID)
	return nil
}
