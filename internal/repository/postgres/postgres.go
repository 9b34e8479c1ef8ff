package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Store struct {
	db *sql.DB
	repository.NavigationMenuRepository
	repository.NavigationMenuItemRepository
	repository.NavigationMenuItemAssignmentRepository
	repository.InvitationRepository
	repository.UserRepository
	repository.JournalRepository
	repository.AuthorRepository
	repository.UserGroupRepository
	repository.JobRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                                     db,
		NavigationMenuRepository:               NewNavigationMenuRepository(db),
		NavigationMenuItemRepository:           NewNavigationMenuItemRepository(db),
		NavigationMenuItemAssignmentRepository: NewNavigationMenuItemAssignmentRepository(db),
		InvitationRepository:                   NewInvitationRepository(db),
		UserRepository:                         NewUserRepository(db),
		JournalRepository:                      NewJournalRepository(db),
		AuthorRepository:                       NewAuthorRepository(db),
		UserGroupRepository:                    NewUserGroupRepository(db),
		JobRepository:                          NewJobRepository(db),
	}
}

// Migrate runs the embedded SQL migrations in file name order. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		logger.DatabaseCall("MIGRATE", name)
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			logger.DatabaseResult("MIGRATE", 0, err, "file", name)
			return fmt.Errorf("execute migration %s: %w", name, err)
		}
		logger.DatabaseResult("MIGRATE", 0, nil, "file", name)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// nullableID converts an optional id into a driver value; nil becomes SQL NULL.
func nullableID(id *int32) any {
	if id == nil {
		return nil
	}
	return *id
}

func idFromNull(n sql.NullInt32) *int32 {
	if !n.Valid {
		return nil
	}
	v := n.Int32
	return &v
}

// settingsTable describes one of the *_settings tables that hold locale-keyed values.
type settingsTable struct {
	name     string
	idColumn string
}

var (
	journalSettings        = settingsTable{"journal_settings", "journal_id"}
	userSettings           = settingsTable{"user_settings", "user_id"}
	userGroupSettings      = settingsTable{"user_group_settings", "user_group_id"}
	authorSettings         = settingsTable{"author_settings", "author_id"}
	menuItemSettings       = settingsTable{"navigation_menu_item_settings", "navigation_menu_item_id"}
	menuAssignmentSettings = settingsTable{"navigation_menu_item_assignment_settings", "navigation_menu_item_assignment_id"}
)

// load returns setting_name => locale => value for one row.
func (t settingsTable) load(ctx context.Context, q querier, id int32) (map[string]domain.LocalizedString, error) {
	query := fmt.Sprintf(`SELECT locale, setting_name, COALESCE(setting_value, '') FROM %s WHERE %s = $1`, t.name, t.idColumn)
	rows, err := q.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make(map[string]domain.LocalizedString)
	for rows.Next() {
		var locale, name, value string
		if err := rows.Scan(&locale, &name, &value); err != nil {
			return nil, err
		}
		if settings[name] == nil {
			settings[name] = domain.LocalizedString{}
		}
		settings[name][locale] = value
	}
	return settings, rows.Err()
}

// save upserts every locale of one setting.
func (t settingsTable) save(ctx context.Context, q querier, id int32, name string, values domain.LocalizedString) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, locale, setting_name, setting_value) VALUES ($1, $2, $3, $4)
	          ON CONFLICT (%s, locale, setting_name) DO UPDATE SET setting_value = EXCLUDED.setting_value`,
		t.name, t.idColumn, t.idColumn)
	locales := make([]string, 0, len(values))
	for locale := range values {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	for _, locale := range locales {
		if _, err := q.ExecContext(ctx, query, id, locale, name, values[locale]); err != nil {
			return err
		}
	}
	return nil
}
