package domain

import "time"

const (
	QueueMail      = "mail"
	QueueDefault   = "default"
	MaxJobAttempts = 3

	// JobRetryAfter is how long a reservation holds before another worker may take the job.
	JobRetryAfter = 5 * time.Minute
)

type Job struct {
	ID          int64      `json:"id"`
	UUID        string     `json:"uuid"`
	Queue       string     `json:"queue"`
	DisplayName string     `json:"display_name"`
	Payload     []byte     `json:"-"`
	Attempts    int32      `json:"attempts"`
	ReservedAt  *time.Time `json:"reserved_at,omitempty"`
	AvailableAt time.Time  `json:"available_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type FailedJob struct {
	ID          int64     `json:"id"`
	UUID        string    `json:"uuid"`
	Queue       string    `json:"queue"`
	DisplayName string    `json:"display_name"`
	Payload     []byte    `json:"-"`
	Exception   string    `json:"exception"`
	FailedAt    time.Time `json:"failed_at"`
}
