package service

import (
	"context"
	"io"
	"time"

	"journal-backend/internal/domain"
)

// NavigationService installs and serves navigation menus. A nil contextID means site-wide.
type NavigationService interface {
	// InstallSettings reconciles the menus of an install document into the store.
	// Slot conflicts are logged and skipped; only a malformed document or a store
	// failure returns an error.
	InstallSettings(ctx context.Context, contextID *int32, r io.Reader) error
	InstallFromStorage(ctx context.Context, contextID *int32, key string) error
	GetMenuTree(ctx context.Context, id int32) (*domain.NavigationMenuTree, error)
	ListMenus(ctx context.Context, contextID *int32) ([]domain.NavigationMenu, error)
	DeleteMenu(ctx context.Context, id int32) error
}

type InvitationService interface {
	// Dispatch cancels pending invitations for the same user, kind and scope, stores
	// inv as PENDING and queues its notification. It returns the plain key.
	Dispatch(ctx context.Context, inv *domain.Invitation) (string, error)
	// Accept applies the invitation when it is valid and always returns the follow-up
	// URL, even when acceptance was a no-op.
	Accept(ctx context.Context, id int32, key string) (string, error)
	Cancel(ctx context.Context, id int32) error
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

type AuthorService interface {
	ListByPublication(ctx context.Context, publicationID int32) ([]domain.Author, error)
	GetAuthor(ctx context.Context, id int32) (*domain.Author, error)
	AddAuthor(ctx context.Context, author *domain.Author) error
	UpdateAuthor(ctx context.Context, author *domain.Author) error
	DeleteAuthor(ctx context.Context, id int32) error
	ReorderAuthors(ctx context.Context, publicationID int32, authorIDs []int32) error
}

type JobAdminService interface {
	ListJobs(ctx context.Context, page, pageSize int32) ([]domain.Job, int32, error)
	ListFailedJobs(ctx context.Context, page, pageSize int32) ([]domain.FailedJob, int32, error)
	GetFailedJob(ctx context.Context, id int64) (*domain.FailedJob, error)
	RedispatchFailedJob(ctx context.Context, id int64) error
	RedispatchAllFailedJobs(ctx context.Context) (int64, error)
	DeleteFailedJob(ctx context.Context, id int64) error
}

// MailQueue defers delivery to the mail cron job.
type MailQueue interface {
	Enqueue(ctx context.Context, mail *domain.Mail) error
	// Job encodes mail as a queue row for callers that insert it themselves.
	Job(mail *domain.Mail) (*domain.Job, error)
}

// EmailService renders a mail template and delivers it.
type EmailService interface {
	Send(ctx context.Context, mail *domain.Mail) error
}
