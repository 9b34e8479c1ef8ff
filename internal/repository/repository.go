package repository

import (
	"context"
	"time"

	"journal-backend/internal/domain"
)

// All getters return domain.ErrNotFound when no row matches.

type NavigationMenuRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.NavigationMenu, error)
	GetByTitle(ctx context.Context, contextID *int32, title string) (*domain.NavigationMenu, error)
	GetByArea(ctx context.Context, contextID *int32, areaName string) ([]domain.NavigationMenu, error)
	ListByContext(ctx context.Context, contextID *int32) ([]domain.NavigationMenu, error)
	// Create returns domain.ErrSlotTaken when the (context, area) slot is already occupied.
	Create(ctx context.Context, menu *domain.NavigationMenu) error
	Update(ctx context.Context, menu *domain.NavigationMenu) error
	Delete(ctx context.Context, id int32) error
}

type NavigationMenuItemRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.NavigationMenuItem, error)
	GetByTypeAndTitleKey(ctx context.Context, contextID *int32, itemType domain.NavigationMenuItemType, titleLocaleKey string) (*domain.NavigationMenuItem, error)
	GetByIDs(ctx context.Context, ids []int32) (map[int32]domain.NavigationMenuItem, error)
	Create(ctx context.Context, item *domain.NavigationMenuItem) error
	Update(ctx context.Context, item *domain.NavigationMenuItem) error
}

type NavigationMenuItemAssignmentRepository interface {
	ListByMenu(ctx context.Context, menuID int32) ([]domain.NavigationMenuItemAssignment, error)
	Find(ctx context.Context, menuID, itemID int32, parentID *int32) (*domain.NavigationMenuItemAssignment, error)
	Create(ctx context.Context, a *domain.NavigationMenuItemAssignment) error
	UpdateSeq(ctx context.Context, id, seq int32) error
	DeleteByMenu(ctx context.Context, menuID int32) error
	// ListMenuIDsByItem returns the menus that place itemID anywhere in their tree.
	ListMenuIDsByItem(ctx context.Context, itemID int32) ([]int32, error)
}

type InvitationRepository interface {
	Create(ctx context.Context, inv *domain.Invitation) error
	GetByID(ctx context.Context, id int32) (*domain.Invitation, error)
	UpdateStatus(ctx context.Context, id int32, status domain.InvitationStatus) error
	// CancelPending moves every PENDING invitation for the triple to CANCELLED.
	CancelPending(ctx context.Context, userID int32, className string, contextID *int32) (int64, error)
	ListPending(ctx context.Context, userID int32, className string, contextID *int32) ([]domain.Invitation, error)
	// Supersede cancels the PENDING invitations for inv's triple, then stores inv and the job
	// built by notify in one transaction. notify sees inv with its ID assigned.
	Supersede(ctx context.Context, inv *domain.Invitation, notify func(*domain.Invitation) (*domain.Job, error)) (int64, error)
	// ExpirePending moves PENDING invitations whose expiry is before now to EXPIRED.
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type JournalRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Journal, error)
	GetByPath(ctx context.Context, path string) (*domain.Journal, error)
}

type AuthorRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Author, error)
	ListByPublication(ctx context.Context, publicationID int32) ([]domain.Author, error)
	Create(ctx context.Context, author *domain.Author) error
	Update(ctx context.Context, author *domain.Author) error
	Delete(ctx context.Context, id int32) error
	UpdateSeq(ctx context.Context, id, seq int32) error
	MaxSeq(ctx context.Context, publicationID int32) (int32, error)
}

type UserGroupRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.UserGroup, error)
}

type JobRepository interface {
	Enqueue(ctx context.Context, job *domain.Job) error
	// Reserve marks up to limit available jobs on queue as reserved and returns them.
	Reserve(ctx context.Context, queue string, limit int, now time.Time) ([]domain.Job, error)
	Delete(ctx context.Context, id int64) error
	Release(ctx context.Context, id int64, availableAt time.Time) error
	// Fail moves the job to failed_jobs.
	Fail(ctx context.Context, job *domain.Job, exception string) error
	List(ctx context.Context, limit, offset int32) ([]domain.Job, int32, error)

	ListFailed(ctx context.Context, limit, offset int32) ([]domain.FailedJob, int32, error)
	GetFailed(ctx context.Context, id int64) (*domain.FailedJob, error)
	DeleteFailed(ctx context.Context, id int64) error
	// Redispatch moves a failed job back onto its queue with attempts reset.
	Redispatch(ctx context.Context, id int64) error
	RedispatchAll(ctx context.Context) (int64, error)
}
