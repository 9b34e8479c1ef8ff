package http

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"journal-backend/internal/domain"
)

type MockNavigationService struct{ mock.Mock }

func (m *MockNavigationService) InstallSettings(ctx context.Context, contextID *int32, r io.Reader) error {
	return m.Called(ctx, contextID, r).Error(0)
}

func (m *MockNavigationService) InstallFromStorage(ctx context.Context, contextID *int32, key string) error {
	return m.Called(ctx, contextID, key).Error(0)
}

func (m *MockNavigationService) GetMenuTree(ctx context.Context, id int32) (*domain.NavigationMenuTree, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NavigationMenuTree), args.Error(1)
}

func (m *MockNavigationService) ListMenus(ctx context.Context, contextID *int32) ([]domain.NavigationMenu, error) {
	args := m.Called(ctx, contextID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NavigationMenu), args.Error(1)
}

func (m *MockNavigationService) DeleteMenu(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}

type MockInvitationService struct{ mock.Mock }

func (m *MockInvitationService) Dispatch(ctx context.Context, inv *domain.Invitation) (string, error) {
	args := m.Called(ctx, inv)
	return args.String(0), args.Error(1)
}

func (m *MockInvitationService) Accept(ctx context.Context, id int32, key string) (string, error) {
	args := m.Called(ctx, id, key)
	return args.String(0), args.Error(1)
}

func (m *MockInvitationService) Cancel(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInvitationService) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuthorService struct{ mock.Mock }

func (m *MockAuthorService) ListByPublication(ctx context.Context, publicationID int32) ([]domain.Author, error) {
	args := m.Called(ctx, publicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Author), args.Error(1)
}

func (m *MockAuthorService) GetAuthor(ctx context.Context, id int32) (*domain.Author, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Author), args.Error(1)
}

func (m *MockAuthorService) AddAuthor(ctx context.Context, author *domain.Author) error {
	return m.Called(ctx, author).Error(0)
}

func (m *MockAuthorService) UpdateAuthor(ctx context.Context, author *domain.Author) error {
	return m.Called(ctx, author).Error(0)
}

func (m *MockAuthorService) DeleteAuthor(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAuthorService) ReorderAuthors(ctx context.Context, publicationID int32, authorIDs []int32) error {
	return m.Called(ctx, publicationID, authorIDs).Error(0)
}

type MockJobAdminService struct{ mock.Mock }

func (m *MockJobAdminService) ListJobs(ctx context.Context, page, pageSize int32) ([]domain.Job, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.Job), args.Get(1).(int32), args.Error(2)
}

func (m *MockJobAdminService) ListFailedJobs(ctx context.Context, page, pageSize int32) ([]domain.FailedJob, int32, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]domain.FailedJob), args.Get(1).(int32), args.Error(2)
}

func (m *MockJobAdminService) GetFailedJob(ctx context.Context, id int64) (*domain.FailedJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FailedJob), args.Error(1)
}

func (m *MockJobAdminService) RedispatchFailedJob(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockJobAdminService) RedispatchAllFailedJobs(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobAdminService) DeleteFailedJob(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockUserGroupRepo struct{ mock.Mock }

func (m *MockUserGroupRepo) GetByID(ctx context.Context, id int32) (*domain.UserGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserGroup), args.Error(1)
}
