package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"journal-backend/internal/config"
	"journal-backend/internal/domain"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newRunner(repo *MockJobRepo, email *MockEmailService, invitations *MockInvitationService) *JobRunner {
	cfg := &config.Config{Scheduler: config.SchedulerConfig{MailBatchSize: 10}}
	jr := NewJobRunner(repo, &Services{Email: email, Invitation: invitations}, cfg)
	jr.now = func() time.Time { return fixedNow }
	return jr
}

func mailJob(t *testing.T, id int64, attempts int32) domain.Job {
	t.Helper()
	payload, err := json.Marshal(domain.Mail{To: "jdoe@example.org", Template: "registration_access"})
	require.NoError(t, err)
	return domain.Job{ID: id, Queue: domain.QueueMail, Payload: payload, Attempts: attempts}
}

func TestDeliverQueuedMail(t *testing.T) {
	ctx := context.Background()

	t.Run("sent jobs are deleted", func(t *testing.T) {
		repo, email := new(MockJobRepo), new(MockEmailService)
		repo.On("Reserve", ctx, domain.QueueMail, 10, fixedNow).Return([]domain.Job{mailJob(t, 1, 1), mailJob(t, 2, 1)}, nil)
		email.On("Send", ctx, mock.MatchedBy(func(m *domain.Mail) bool { return m.To == "jdoe@example.org" })).Return(nil)
		repo.On("Delete", ctx, int64(1)).Return(nil)
		repo.On("Delete", ctx, int64(2)).Return(nil)

		sent, retried, failed := newRunner(repo, email, nil).deliverQueuedMail(ctx)
		assert.Equal(t, 2, sent)
		assert.Zero(t, retried)
		assert.Zero(t, failed)
		repo.AssertExpectations(t)
	})

	t.Run("failure is retried with backoff", func(t *testing.T) {
		repo, email := new(MockJobRepo), new(MockEmailService)
		repo.On("Reserve", ctx, domain.QueueMail, 10, fixedNow).Return([]domain.Job{mailJob(t, 3, 2)}, nil)
		email.On("Send", ctx, mock.Anything).Return(errors.New("sendgrid error: status 503"))
		repo.On("Release", ctx, int64(3), fixedNow.Add(4*time.Second)).Return(nil)

		_, retried, _ := newRunner(repo, email, nil).deliverQueuedMail(ctx)
		assert.Equal(t, 1, retried)
		repo.AssertExpectations(t)
	})

	t.Run("last attempt moves the job to failed jobs", func(t *testing.T) {
		repo, email := new(MockJobRepo), new(MockEmailService)
		job := mailJob(t, 4, domain.MaxJobAttempts)
		repo.On("Reserve", ctx, domain.QueueMail, 10, fixedNow).Return([]domain.Job{job}, nil)
		email.On("Send", ctx, mock.Anything).Return(errors.New("bad recipient"))
		repo.On("Fail", ctx, mock.MatchedBy(func(j *domain.Job) bool { return j.ID == 4 }), "bad recipient").Return(nil)

		_, _, failed := newRunner(repo, email, nil).deliverQueuedMail(ctx)
		assert.Equal(t, 1, failed)
		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("abandoned job past its attempts is failed without sending", func(t *testing.T) {
		repo, email := new(MockJobRepo), new(MockEmailService)
		repo.On("Reserve", ctx, domain.QueueMail, 10, fixedNow).Return([]domain.Job{mailJob(t, 6, domain.MaxJobAttempts+1)}, nil)
		repo.On("Fail", ctx, mock.MatchedBy(func(j *domain.Job) bool { return j.ID == 6 }), "max attempts exceeded").Return(nil)

		_, _, failed := newRunner(repo, email, nil).deliverQueuedMail(ctx)
		assert.Equal(t, 1, failed)
		repo.AssertExpectations(t)
		email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("undecodable payload never reaches the mailer", func(t *testing.T) {
		repo, email := new(MockJobRepo), new(MockEmailService)
		repo.On("Reserve", ctx, domain.QueueMail, 10, fixedNow).Return([]domain.Job{{ID: 5, Payload: []byte("{"), Attempts: 1}}, nil)
		repo.On("Release", ctx, int64(5), fixedNow.Add(time.Second)).Return(nil)

		newRunner(repo, email, nil).deliverQueuedMail(ctx)
		email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("reserve failure", func(t *testing.T) {
		repo := new(MockJobRepo)
		repo.On("Reserve", ctx, domain.QueueMail, 10, fixedNow).Return(nil, errors.New("connection refused"))

		sent, retried, failed := newRunner(repo, new(MockEmailService), nil).deliverQueuedMail(ctx)
		assert.Zero(t, sent+retried+failed)
	})
}

func TestExpireInvitations(t *testing.T) {
	invitations := new(MockInvitationService)
	invitations.On("ExpirePending", mock.Anything, fixedNow).Return(int64(2), nil)

	newRunner(new(MockJobRepo), new(MockEmailService), invitations).ExpireInvitations()
	invitations.AssertExpectations(t)
}

func TestRunWithRecovery(t *testing.T) {
	jr := newRunner(new(MockJobRepo), new(MockEmailService), new(MockInvitationService))
	assert.NotPanics(t, func() {
		jr.runWithRecovery("Boom", func() { panic("boom") })
	})
}
