package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository"
)

const (
	jobColumns       = `id, uuid, queue, display_name, payload, attempts, reserved_at, available_at, created_at`
	failedJobColumns = `id, uuid, queue, display_name, payload, exception, failed_at`
)

type jobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) repository.JobRepository {
	return &jobRepository{db: db}
}

func scanJob(row interface{ Scan(...any) error }) (*domain.Job, error) {
	j := &domain.Job{}
	var reserved sql.NullTime
	if err := row.Scan(&j.ID, &j.UUID, &j.Queue, &j.DisplayName, &j.Payload, &j.Attempts, &reserved, &j.AvailableAt, &j.CreatedAt); err != nil {
		return nil, err
	}
	if reserved.Valid {
		t := reserved.Time
		j.ReservedAt = &t
	}
	return j, nil
}

func scanFailedJob(row interface{ Scan(...any) error }) (*domain.FailedJob, error) {
	f := &domain.FailedJob{}
	if err := row.Scan(&f.ID, &f.UUID, &f.Queue, &f.DisplayName, &f.Payload, &f.Exception, &f.FailedAt); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *jobRepository) Enqueue(ctx context.Context, j *domain.Job) error {
	return insertJob(ctx, r.db, j)
}

func insertJob(ctx context.Context, q querier, j *domain.Job) error {
	if j.UUID == "" {
		j.UUID = uuid.NewString()
	}
	now := time.Now().UTC()
	if j.AvailableAt.IsZero() {
		j.AvailableAt = now
	}
	j.CreatedAt = now

	query := `INSERT INTO jobs (uuid, queue, display_name, payload, attempts, available_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	logger.DatabaseCall("INSERT", "jobs", "queue", j.Queue, "display_name", j.DisplayName)
	err := q.QueryRowContext(ctx, query, j.UUID, j.Queue, j.DisplayName, j.Payload, j.Attempts, j.AvailableAt, j.CreatedAt).Scan(&j.ID)
	logger.DatabaseResult("INSERT", 1, err, "job_id", j.ID)
	return err
}

// Reserve claims jobs with SKIP LOCKED so concurrent workers never receive the same row.
// Each reservation counts as an attempt. A reservation older than domain.JobRetryAfter
// belongs to a worker that never finished and is taken again.
func (r *jobRepository) Reserve(ctx context.Context, queue string, limit int, now time.Time) ([]domain.Job, error) {
	query := `UPDATE jobs SET reserved_at = $1, attempts = attempts + 1
	          WHERE id IN (
	              SELECT id FROM jobs
	              WHERE queue = $2 AND available_at <= $1
	                AND (reserved_at IS NULL OR reserved_at <= $4)
	              ORDER BY id LIMIT $3 FOR UPDATE SKIP LOCKED
	          ) RETURNING ` + jobColumns
	rows, err := r.db.QueryContext(ctx, query, now, queue, limit, now.Add(-domain.JobRetryAfter))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	return err
}

func (r *jobRepository) Release(ctx context.Context, id int64, availableAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE jobs SET reserved_at = NULL, available_at = $1 WHERE id = $2`, availableAt, id)
	return err
}

func (r *jobRepository) Fail(ctx context.Context, j *domain.Job, exception string) error {
	query := `WITH moved AS (DELETE FROM jobs WHERE id = $1 RETURNING uuid, queue, display_name, payload)
	          INSERT INTO failed_jobs (uuid, queue, display_name, payload, exception, failed_at)
	          SELECT uuid, queue, display_name, payload, $2, $3 FROM moved`
	logger.DatabaseCall("FAIL", "jobs", "job_id", j.ID)
	res, err := r.db.ExecContext(ctx, query, j.ID, exception, time.Now().UTC())
	if err != nil {
		logger.DatabaseResult("FAIL", 0, err)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("FAIL", n, nil, "job_id", j.ID)
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepository) List(ctx context.Context, limit, offset int32) ([]domain.Job, int32, error) {
	var total int32
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, total, rows.Err()
}

func (r *jobRepository) ListFailed(ctx context.Context, limit, offset int32) ([]domain.FailedJob, int32, error) {
	var total int32
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM failed_jobs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+failedJobColumns+` FROM failed_jobs ORDER BY failed_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var failed []domain.FailedJob
	for rows.Next() {
		f, err := scanFailedJob(rows)
		if err != nil {
			return nil, 0, err
		}
		failed = append(failed, *f)
	}
	return failed, total, rows.Err()
}

func (r *jobRepository) GetFailed(ctx context.Context, id int64) (*domain.FailedJob, error) {
	f, err := scanFailedJob(r.db.QueryRowContext(ctx, `SELECT `+failedJobColumns+` FROM failed_jobs WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (r *jobRepository) DeleteFailed(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM failed_jobs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepository) Redispatch(ctx context.Context, id int64) error {
	query := `WITH moved AS (DELETE FROM failed_jobs WHERE id = $2 RETURNING uuid, queue, display_name, payload)
	          INSERT INTO jobs (uuid, queue, display_name, payload, attempts, available_at, created_at)
	          SELECT uuid, queue, display_name, payload, 0, $1, $1 FROM moved`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepository) RedispatchAll(ctx context.Context) (int64, error) {
	query := `WITH moved AS (DELETE FROM failed_jobs RETURNING uuid, queue, display_name, payload)
	          INSERT INTO jobs (uuid, queue, display_name, payload, attempts, available_at, created_at)
	          SELECT uuid, queue, display_name, payload, 0, $1, $1 FROM moved`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("REDISPATCH", n, err, "table", "failed_jobs")
	return n, err
}
