package jobs

import (
	"time"

	"journal-backend/internal/config"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository"
	"journal-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	jobRepo  repository.JobRepository
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Email      service.EmailService
	Invitation service.InvitationService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(jobRepo repository.JobRepository, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		jobRepo:  jobRepo,
		services: services,
		config:   cfg,
		now:      time.Now,
	}
}

func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ExpireInvitations()
	jr.DeliverQueuedMail()
}
