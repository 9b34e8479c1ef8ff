package postgres

import (
	"context"
	"database/sql"

	"journal-backend/internal/domain"
	"journal-backend/internal/repository"
)

type journalRepository struct {
	db *sql.DB
}

func NewJournalRepository(db *sql.DB) repository.JournalRepository {
	return &journalRepository{db: db}
}

func (r *journalRepository) get(ctx context.Context, query string, arg any) (*domain.Journal, error) {
	j := &domain.Journal{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&j.ID, &j.Path, &j.PrimaryLocale, &j.Enabled)
	if err != nil {
		return nil, notFound(err)
	}
	settings, err := journalSettings.load(ctx, r.db, j.ID)
	if err != nil {
		return nil, err
	}
	j.Name = settings["name"]
	return j, nil
}

func (r *journalRepository) GetByID(ctx context.Context, id int32) (*domain.Journal, error) {
	return r.get(ctx, `SELECT journal_id, path, primary_locale, enabled FROM journals WHERE journal_id = $1`, id)
}

func (r *journalRepository) GetByPath(ctx context.Context, path string) (*domain.Journal, error) {
	return r.get(ctx, `SELECT journal_id, path, primary_locale, enabled FROM journals WHERE path = $1`, path)
}
