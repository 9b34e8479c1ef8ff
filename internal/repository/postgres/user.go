package postgres

import (
	"context"
	"database/sql"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository"
)

const userColumns = `user_id, username, email, disabled, COALESCE(disabled_reason, ''), date_registered, date_validated`

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	u := &domain.User{}
	var validated sql.NullTime
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.Disabled, &u.DisabledReason, &u.DateRegistered, &validated)
	if err != nil {
		return nil, notFound(err)
	}
	if validated.Valid {
		t := validated.Time
		u.DateValidated = &t
	}

	settings, err := userSettings.load(ctx, r.db, u.ID)
	if err != nil {
		return nil, err
	}
	u.GivenName = settings["givenName"]
	u.FamilyName = settings["familyName"]
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username)
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET email = $1, disabled = $2, disabled_reason = $3, date_validated = $4 WHERE user_id = $5`
	var reason any
	if u.DisabledReason != "" {
		reason = u.DisabledReason
	}
	var validated any
	if u.DateValidated != nil {
		validated = *u.DateValidated
	}
	logger.DatabaseCall("UPDATE", "users", "user_id", u.ID)
	res, err := r.db.ExecContext(ctx, query, u.Email, u.Disabled, reason, validated, u.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, nil, "user_id", u.ID)
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
