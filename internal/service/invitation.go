package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"journal-backend/internal/domain"
	"journal-backend/internal/invitation"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository"
	"journal-backend/internal/routing"
)

type invitationService struct {
	invitationRepo repository.InvitationRepository
	journalRepo    repository.JournalRepository
	handlers       *invitation.Registry
	mailQueue      MailQueue
	urls           *routing.URLBuilder
	expiryDays     int
	hashCost       int
	now            func() time.Time
}

func NewInvitationService(
	invitationRepo repository.InvitationRepository,
	journalRepo repository.JournalRepository,
	handlers *invitation.Registry,
	mailQueue MailQueue,
	urls *routing.URLBuilder,
	expiryDays int,
) InvitationService {
	if expiryDays <= 0 {
		expiryDays = 3
	}
	return &invitationService{
		invitationRepo: invitationRepo,
		journalRepo:    journalRepo,
		handlers:       handlers,
		mailQueue:      mailQueue,
		urls:           urls,
		expiryDays:     expiryDays,
		hashCost:       bcrypt.DefaultCost,
		now:            time.Now,
	}
}

func (s *invitationService) Dispatch(ctx context.Context, inv *domain.Invitation) (string, error) {
	logger.EnterMethod("InvitationService.Dispatch", "type", inv.ClassName, "user_id", inv.UserID)

	if inv.UserID == 0 {
		return "", domain.ErrInvitationIncomplete
	}
	handler, err := s.handlers.Get(inv.ClassName)
	if err != nil {
		return "", err
	}
	contextPath, err := s.contextPath(ctx, inv.ContextID)
	if err != nil {
		return "", err
	}

	if err := handler.Prepare(ctx, inv); err != nil {
		logger.ExitMethodWithError("InvitationService.Dispatch", err)
		return "", err
	}

	key := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(key), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash invitation key: %w", err)
	}
	inv.KeyHash = string(hash)
	inv.Status = domain.InvitationStatusPending
	inv.ExpiryDate = s.now().UTC().AddDate(0, 0, s.expiryDays)

	cancelled, err := s.invitationRepo.Supersede(ctx, inv, func(created *domain.Invitation) (*domain.Job, error) {
		acceptURL, err := s.urls.URL(routing.RouteInvitationAccept, contextPath, "id", strconv.Itoa(int(created.ID)), "key", key)
		if err != nil {
			return nil, err
		}
		m, err := handler.Mail(ctx, created, acceptURL)
		if err != nil {
			return nil, err
		}
		return s.mailQueue.Job(m)
	})
	if err != nil {
		logger.ExitMethodWithError("InvitationService.Dispatch", err)
		return "", err
	}
	if cancelled > 0 {
		logger.Info("Cancelled superseded invitations", "user_id", inv.UserID, "type", inv.ClassName, "count", cancelled)
	}

	logger.ExitMethod("InvitationService.Dispatch", "invitation_id", inv.ID)
	return key, nil
}

func (s *invitationService) Accept(ctx context.Context, id int32, key string) (string, error) {
	logger.EnterMethod("InvitationService.Accept", "invitation_id", id)

	inv, err := s.invitationRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Invitation not found", "invitation_id", id)
		return "", domain.ErrInvitationNotFound
	}
	if err != nil {
		return "", err
	}

	handler, err := s.handlers.Get(inv.ClassName)
	if err != nil {
		return "", err
	}
	redirect, err := s.followUpURL(ctx, inv.ContextID, handler.RedirectRoute())
	if err != nil {
		return "", err
	}

	if err := s.checkAcceptable(ctx, inv, key); err != nil {
		logger.Info("Invitation acceptance ignored", "invitation_id", id, "reason", err)
		return redirect, nil
	}

	ok, err := handler.Validate(ctx, inv)
	if err != nil {
		return "", err
	}
	if !ok {
		logger.Info("Invitation acceptance ignored", "invitation_id", id, "reason", "validation failed")
		return redirect, nil
	}

	if err := handler.Apply(ctx, inv); err != nil {
		logger.ExitMethodWithError("InvitationService.Accept", err)
		return "", err
	}
	if err := s.invitationRepo.UpdateStatus(ctx, inv.ID, domain.InvitationStatusAccepted); err != nil {
		return "", fmt.Errorf("mark invitation accepted: %w", err)
	}

	logger.ExitMethod("InvitationService.Accept", "invitation_id", id, "status", domain.InvitationStatusAccepted)
	return redirect, nil
}

// checkAcceptable reports why inv cannot be accepted with key, or nil. An expired
// pending invitation is moved to EXPIRED on the way.
func (s *invitationService) checkAcceptable(ctx context.Context, inv *domain.Invitation, key string) error {
	if inv.Status != domain.InvitationStatusPending {
		return domain.ErrInvitationNotPending
	}
	if inv.IsExpired(s.now()) {
		if err := s.invitationRepo.UpdateStatus(ctx, inv.ID, domain.InvitationStatusExpired); err != nil {
			logger.Warn("Failed to mark invitation expired", "invitation_id", inv.ID, "error", err)
		}
		return domain.ErrInvitationExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(inv.KeyHash), []byte(key)) != nil {
		return domain.ErrInvalidInvitationKey
	}
	return nil
}

// followUpURL builds the redirect after acceptance. Kinds without a route of their own
// land on the journal index.
func (s *invitationService) followUpURL(ctx context.Context, contextID *int32, route string) (string, error) {
	if route == "" {
		route = routing.RouteIndex
	}
	contextPath, err := s.contextPath(ctx, contextID)
	if err != nil {
		return "", err
	}
	return s.urls.URL(route, contextPath)
}

// contextPath returns the journal's URL path, or "" for the site-wide form when the
// scope is absent or no longer exists.
func (s *invitationService) contextPath(ctx context.Context, contextID *int32) (string, error) {
	if contextID == nil {
		return "", nil
	}
	j, err := s.journalRepo.GetByID(ctx, *contextID)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return j.Path, nil
}

func (s *invitationService) Cancel(ctx context.Context, id int32) error {
	inv, err := s.invitationRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrInvitationNotFound
	}
	if err != nil {
		return err
	}
	if inv.Status != domain.InvitationStatusPending {
		return domain.ErrInvitationNotPending
	}
	return s.invitationRepo.UpdateStatus(ctx, id, domain.InvitationStatusCancelled)
}

func (s *invitationService) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.invitationRepo.ExpirePending(ctx, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("Expired pending invitations", "count", n)
	}
	return n, nil
}
