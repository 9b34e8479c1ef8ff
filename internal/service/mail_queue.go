package service

import (
	"context"
	"encoding/json"
	"fmt"

	"journal-backend/internal/domain"
	"journal-backend/internal/repository"
)

type mailQueue struct {
	jobRepo repository.JobRepository
}

func NewMailQueue(jobRepo repository.JobRepository) MailQueue {
	return &mailQueue{jobRepo: jobRepo}
}

func (q *mailQueue) Job(m *domain.Mail) (*domain.Job, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode mail: %w", err)
	}
	return &domain.Job{
		Queue:       domain.QueueMail,
		DisplayName: m.Template,
		Payload:     payload,
	}, nil
}

func (q *mailQueue) Enqueue(ctx context.Context, m *domain.Mail) error {
	job, err := q.Job(m)
	if err != nil {
		return err
	}
	if err := q.jobRepo.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	return nil
}

// DecodeMail reads a mail job payload written by the mail queue.
func DecodeMail(job *domain.Job) (*domain.Mail, error) {
	var m domain.Mail
	if err := json.Unmarshal(job.Payload, &m); err != nil {
		return nil, fmt.Errorf("decode mail job %d: %w", job.ID, err)
	}
	return &m, nil
}
