package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository"
)

const invitationColumns = `invitation_id, key_hash, type, user_id, email, context_id, status, expiry_date, payload, created_at, updated_at`

type invitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) repository.InvitationRepository {
	return &invitationRepository{db: db}
}

func scanInvitation(row interface{ Scan(...any) error }) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var contextID sql.NullInt32
	var status string
	var payload []byte
	err := row.Scan(&inv.ID, &inv.KeyHash, &inv.ClassName, &inv.UserID, &inv.Email, &contextID,
		&status, &inv.ExpiryDate, &payload, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.ContextID = idFromNull(contextID)
	inv.Status = domain.InvitationStatus(status)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &inv.Payload); err != nil {
			return nil, err
		}
	}
	return inv, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	return insertInvitation(ctx, r.db, inv)
}

func insertInvitation(ctx context.Context, q querier, inv *domain.Invitation) error {
	var payload []byte
	if inv.Payload != nil {
		var err error
		if payload, err = json.Marshal(inv.Payload); err != nil {
			return err
		}
	}
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if inv.Status == "" {
		inv.Status = domain.InvitationStatusPending
	}

	query := `INSERT INTO invitations (key_hash, type, user_id, email, context_id, status, expiry_date, payload, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING invitation_id`
	logger.DatabaseCall("INSERT", "invitations", "type", inv.ClassName, "user_id", inv.UserID)
	err := q.QueryRowContext(ctx, query, inv.KeyHash, inv.ClassName, inv.UserID, inv.Email, nullableID(inv.ContextID),
		string(inv.Status), inv.ExpiryDate, payload, inv.CreatedAt, inv.UpdatedAt).Scan(&inv.ID)
	logger.DatabaseResult("INSERT", 1, err, "invitation_id", inv.ID)
	return err
}

func (r *invitationRepository) GetByID(ctx context.Context, id int32) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE invitation_id = $1`
	inv, err := scanInvitation(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return inv, nil
}

func (r *invitationRepository) UpdateStatus(ctx context.Context, id int32, status domain.InvitationStatus) error {
	query := `UPDATE invitations SET status = $1, updated_at = $2 WHERE invitation_id = $3`
	res, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invitationRepository) CancelPending(ctx context.Context, userID int32, className string, contextID *int32) (int64, error) {
	return cancelPending(ctx, r.db, userID, className, contextID)
}

func cancelPending(ctx context.Context, q querier, userID int32, className string, contextID *int32) (int64, error) {
	query := `UPDATE invitations SET status = 'CANCELLED', updated_at = $1
	          WHERE user_id = $2 AND type = $3 AND context_id IS NOT DISTINCT FROM $4 AND status = 'PENDING'`
	res, err := q.ExecContext(ctx, query, time.Now().UTC(), userID, className, nullableID(contextID))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Supersede replaces the pending invitations of inv's triple with inv and queues the job
// built by notify, all in one transaction. Nothing is kept when any step fails.
func (r *invitationRepository) Supersede(ctx context.Context, inv *domain.Invitation, notify func(*domain.Invitation) (*domain.Job, error)) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	cancelled, err := cancelPending(ctx, tx, inv.UserID, inv.ClassName, inv.ContextID)
	if err != nil {
		return 0, fmt.Errorf("cancel pending invitations: %w", err)
	}
	if err := insertInvitation(ctx, tx, inv); err != nil {
		return 0, fmt.Errorf("store invitation: %w", err)
	}
	job, err := notify(inv)
	if err != nil {
		inv.ID = 0
		return 0, err
	}
	if err := insertJob(ctx, tx, job); err != nil {
		inv.ID = 0
		return 0, fmt.Errorf("queue invitation job: %w", err)
	}
	if err := tx.Commit(); err != nil {
		inv.ID = 0
		return 0, err
	}
	return cancelled, nil
}

func (r *invitationRepository) ListPending(ctx context.Context, userID int32, className string, contextID *int32) ([]domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations
	          WHERE user_id = $1 AND type = $2 AND context_id IS NOT DISTINCT FROM $3 AND status = 'PENDING'
	          ORDER BY invitation_id`
	rows, err := r.db.QueryContext(ctx, query, userID, className, nullableID(contextID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (r *invitationRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE invitations SET status = 'EXPIRED', updated_at = $1 WHERE status = 'PENDING' AND expiry_date < $1`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err, "table", "invitations", "status", "EXPIRED")
	return n, err
}
