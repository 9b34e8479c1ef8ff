package jobs

import (
	"context"
	"time"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/service"
)

// DeliverQueuedMail sends a batch of queued mail. Failed deliveries are retried with a
// quadratic backoff and moved to failed_jobs after domain.MaxJobAttempts.
func (jr *JobRunner) DeliverQueuedMail() {
	jr.runWithRecovery("DeliverQueuedMail", func() {
		sent, retried, failed := jr.deliverQueuedMail(context.Background())
		logger.Info("Queued mail processed", "sent", sent, "retried", retried, "failed", failed)
	})
}

func (jr *JobRunner) deliverQueuedMail(ctx context.Context) (sent, retried, failed int) {
	log := logger.WithJob("DeliverQueuedMail")
	now := jr.now().UTC()

	batch, err := jr.jobRepo.Reserve(ctx, domain.QueueMail, jr.config.Scheduler.MailBatchSize, now)
	if err != nil {
		log.Error("Failed to reserve mail jobs", "error", err)
		return
	}

	for i := range batch {
		job := &batch[i]
		// Reclaimed reservations count as attempts; a job past the limit was abandoned mid-send.
		if job.Attempts > domain.MaxJobAttempts {
			log.Warn("Mail job exceeded its attempts, giving up", "job_id", job.ID, "attempts", job.Attempts)
			if err := jr.jobRepo.Fail(ctx, job, "max attempts exceeded"); err != nil {
				log.Error("Failed to move mail job to failed jobs", "job_id", job.ID, "error", err)
			}
			failed++
			continue
		}

		m, err := service.DecodeMail(job)
		if err == nil {
			err = jr.services.Email.Send(ctx, m)
		}
		if err == nil {
			if err := jr.jobRepo.Delete(ctx, job.ID); err != nil {
				log.Error("Failed to delete delivered mail job", "job_id", job.ID, "error", err)
			}
			sent++
			continue
		}

		if job.Attempts >= domain.MaxJobAttempts {
			log.Warn("Mail delivery failed, giving up", "job_id", job.ID, "attempts", job.Attempts, "error", err)
			if err := jr.jobRepo.Fail(ctx, job, err.Error()); err != nil {
				log.Error("Failed to move mail job to failed jobs", "job_id", job.ID, "error", err)
			}
			failed++
			continue
		}

		backoff := time.Duration(job.Attempts*job.Attempts) * time.Second
		log.Warn("Mail delivery failed, retrying", "job_id", job.ID, "attempts", job.Attempts, "backoff", backoff, "error", err)
		if err := jr.jobRepo.Release(ctx, job.ID, now.Add(backoff)); err != nil {
			log.Error("Failed to release mail job", "job_id", job.ID, "error", err)
		}
		retried++
	}
	return sent, retried, failed
}
