package postgres

import (
	"context"
	"database/sql"
	"sort"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository"
)

const authorColumns = `author_id, publication_id, email, seq, user_group_id, include_in_browse`

type authorRepository struct {
	db *sql.DB
}

func NewAuthorRepository(db *sql.DB) repository.AuthorRepository {
	return &authorRepository{db: db}
}

func scanAuthor(row interface{ Scan(...any) error }) (*domain.Author, error) {
	a := &domain.Author{}
	var groupID sql.NullInt32
	if err := row.Scan(&a.ID, &a.PublicationID, &a.Email, &a.Seq, &groupID, &a.IncludeInBrowse); err != nil {
		return nil, err
	}
	a.UserGroupID = groupID.Int32
	return a, nil
}

// applySettings splits the loaded settings into the named name fields and the open-ended rest.
func applySettings(a *domain.Author, settings map[string]domain.LocalizedString) {
	for name, values := range settings {
		switch name {
		case "givenName":
			a.GivenName = values
		case "familyName":
			a.FamilyName = values
		case "affiliation":
			a.Affiliation = values
		default:
			if a.Settings == nil {
				a.Settings = make(map[string]domain.LocalizedString)
			}
			a.Settings[name] = values
		}
	}
}

func (r *authorRepository) GetByID(ctx context.Context, id int32) (*domain.Author, error) {
	query := `SELECT ` + authorColumns + ` FROM authors WHERE author_id = $1`
	a, err := scanAuthor(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	settings, err := authorSettings.load(ctx, r.db, a.ID)
	if err != nil {
		return nil, err
	}
	applySettings(a, settings)
	return a, nil
}

func (r *authorRepository) ListByPublication(ctx context.Context, publicationID int32) ([]domain.Author, error) {
	query := `SELECT ` + authorColumns + ` FROM authors WHERE publication_id = $1 ORDER BY seq, author_id`
	rows, err := r.db.QueryContext(ctx, query, publicationID)
	if err != nil {
		return nil, err
	}
	var authors []domain.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		authors = append(authors, *a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range authors {
		settings, err := authorSettings.load(ctx, r.db, authors[i].ID)
		if err != nil {
			return nil, err
		}
		applySettings(&authors[i], settings)
	}
	return authors, nil
}

func (r *authorRepository) Create(ctx context.Context, a *domain.Author) error {
	query := `INSERT INTO authors (publication_id, email, seq, user_group_id, include_in_browse)
	          VALUES ($1, $2, $3, $4, $5) RETURNING author_id`
	logger.DatabaseCall("INSERT", "authors", "publication_id", a.PublicationID)
	err := r.db.QueryRowContext(ctx, query, a.PublicationID, a.Email, a.Seq, groupArg(a.UserGroupID), a.IncludeInBrowse).Scan(&a.ID)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		return err
	}
	logger.DatabaseResult("INSERT", 1, nil, "author_id", a.ID)
	return r.saveSettings(ctx, a)
}

func (r *authorRepository) Update(ctx context.Context, a *domain.Author) error {
	query := `UPDATE authors SET email = $1, seq = $2, user_group_id = $3, include_in_browse = $4 WHERE author_id = $5`
	res, err := r.db.ExecContext(ctx, query, a.Email, a.Seq, groupArg(a.UserGroupID), a.IncludeInBrowse, a.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return r.saveSettings(ctx, a)
}

func (r *authorRepository) saveSettings(ctx context.Context, a *domain.Author) error {
	named := map[string]domain.LocalizedString{
		"givenName":   a.GivenName,
		"familyName":  a.FamilyName,
		"affiliation": a.Affiliation,
	}
	for name, values := range a.Settings {
		named[name] = values
	}
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := authorSettings.save(ctx, r.db, a.ID, name, named[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *authorRepository) Delete(ctx context.Context, id int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM authors WHERE author_id = $1`, id)
	return err
}

func (r *authorRepository) UpdateSeq(ctx context.Context, id, seq int32) error {
	_, err := r.db.ExecContext(ctx, `UPDATE authors SET seq = $1 WHERE author_id = $2`, seq, id)
	return err
}

// MaxSeq returns the highest seq on the publication, or -1 when it has no authors.
func (r *authorRepository) MaxSeq(ctx context.Context, publicationID int32) (int32, error) {
	var seq int32
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), -1) FROM authors WHERE publication_id = $1`, publicationID).Scan(&seq)
	return seq, err
}

func groupArg(id int32) any {
	if id == 0 {
		return nil
	}
	return id
}
