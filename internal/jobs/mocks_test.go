package jobs

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"journal-backend/internal/domain"
)

type MockJobRepo struct{ mock.Mock }

func (m *MockJobRepo) Enqueue(ctx context.Context, job *domain.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *MockJobRepo) Reserve(ctx context.Context, queue string, limit int, now time.Time) ([]domain.Job, error) {
	args := m.Called(ctx, queue, limit, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Job), args.Error(1)
}

func (m *MockJobRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockJobRepo) Release(ctx context.Context, id int64, availableAt time.Time) error {
	return m.Called(ctx, id, availableAt).Error(0)
}

func (m *MockJobRepo) Fail(ctx context.Context, job *domain.Job, exception string) error {
	return m.Called(ctx, job, exception).Error(0)
}

func (m *MockJobRepo) List(ctx context.Context, limit, offset int32) ([]domain.Job, int32, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Job), args.Get(1).(int32), args.Error(2)
}

func (m *MockJobRepo) ListFailed(ctx context.Context, limit, offset int32) ([]domain.FailedJob, int32, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.FailedJob), args.Get(1).(int32), args.Error(2)
}

func (m *MockJobRepo) GetFailed(ctx context.Context, id int64) (*domain.FailedJob, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.FailedJob), args.Error(1)
}

func (m *MockJobRepo) DeleteFailed(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockJobRepo) Redispatch(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockJobRepo) RedispatchAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockEmailService struct{ mock.Mock }

func (m *MockEmailService) Send(ctx context.Context, mail *domain.Mail) error {
	return m.Called(ctx, mail).Error(0)
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
