package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"journal-backend/internal/domain"
	"journal-backend/internal/logger"
	"journal-backend/internal/repository"
)

const menuColumns = `navigation_menu_id, context_id, title, area_name`

type navigationMenuRepository struct {
	db *sql.DB
}

func NewNavigationMenuRepository(db *sql.DB) repository.NavigationMenuRepository {
	return &navigationMenuRepository{db: db}
}

func scanMenu(row interface{ Scan(...any) error }) (*domain.NavigationMenu, error) {
	m := &domain.NavigationMenu{}
	var contextID sql.NullInt32
	if err := row.Scan(&m.ID, &contextID, &m.Title, &m.AreaName); err != nil {
		return nil, err
	}
	m.ContextID = idFromNull(contextID)
	return m, nil
}

func (r *navigationMenuRepository) GetByID(ctx context.Context, id int32) (*domain.NavigationMenu, error) {
	query := `SELECT ` + menuColumns + ` FROM navigation_menus WHERE navigation_menu_id = $1`
	m, err := scanMenu(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (r *navigationMenuRepository) GetByTitle(ctx context.Context, contextID *int32, title string) (*domain.NavigationMenu, error) {
	query := `SELECT ` + menuColumns + ` FROM navigation_menus WHERE context_id IS NOT DISTINCT FROM $1 AND title = $2`
	m, err := scanMenu(r.db.QueryRowContext(ctx, query, nullableID(contextID), title))
	if err != nil {
		return nil, notFound(err)
	}
	return m, nil
}

func (r *navigationMenuRepository) GetByArea(ctx context.Context, contextID *int32, areaName string) ([]domain.NavigationMenu, error) {
	query := `SELECT ` + menuColumns + ` FROM navigation_menus WHERE context_id IS NOT DISTINCT FROM $1 AND area_name = $2 ORDER BY navigation_menu_id`
	return r.list(ctx, query, nullableID(contextID), areaName)
}

func (r *navigationMenuRepository) ListByContext(ctx context.Context, contextID *int32) ([]domain.NavigationMenu, error) {
	query := `SELECT ` + menuColumns + ` FROM navigation_menus WHERE context_id IS NOT DISTINCT FROM $1 ORDER BY navigation_menu_id`
	return r.list(ctx, query, nullableID(contextID))
}

func (r *navigationMenuRepository) list(ctx context.Context, query string, args ...any) ([]domain.NavigationMenu, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var menus []domain.NavigationMenu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, *m)
	}
	return menus, rows.Err()
}

// Create inserts the menu unless its slot or title is already taken in the scope,
// in which case domain.ErrSlotTaken is returned and nothing is written.
func (r *navigationMenuRepository) Create(ctx context.Context, m *domain.NavigationMenu) error {
	query := `INSERT INTO navigation_menus (context_id, title, area_name) VALUES ($1, $2, $3)
	          ON CONFLICT DO NOTHING RETURNING navigation_menu_id`
	logger.DatabaseCall("INSERT", "navigation_menus", "title", m.Title, "area", m.AreaName)
	err := r.db.QueryRowContext(ctx, query, nullableID(m.ContextID), m.Title, m.AreaName).Scan(&m.ID)
	if errors.Is(err, sql.ErrNoRows) {
		logger.DatabaseResult("INSERT", 0, nil, "conflict", true)
		return domain.ErrSlotTaken
	}
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		return err
	}
	logger.DatabaseResult("INSERT", 1, nil, "navigation_menu_id", m.ID)
	return nil
}

func (r *navigationMenuRepository) Update(ctx context.Context, m *domain.NavigationMenu) error {
	query := `UPDATE navigation_menus SET title = $1, area_name = $2 WHERE navigation_menu_id = $3`
	res, err := r.db.ExecContext(ctx, query, m.Title, m.AreaName, m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSlotTaken
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the menu; its item assignments go with it through ON DELETE CASCADE.
func (r *navigationMenuRepository) Delete(ctx context.Context, id int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM navigation_menus WHERE navigation_menu_id = $1`, id)
	return err
}

const menuItemColumns = `navigation_menu_item_id, context_id, type, path, url, title_locale_key`

type navigationMenuItemRepository struct {
	db *sql.DB
}

func NewNavigationMenuItemRepository(db *sql.DB) repository.NavigationMenuItemRepository {
	return &navigationMenuItemRepository{db: db}
}

func scanMenuItem(row interface{ Scan(...any) error }) (*domain.NavigationMenuItem, error) {
	it := &domain.NavigationMenuItem{}
	var contextID sql.NullInt32
	var itemType string
	if err := row.Scan(&it.ID, &contextID, &itemType, &it.Path, &it.URL, &it.TitleLocaleKey); err != nil {
		return nil, err
	}
	it.ContextID = idFromNull(contextID)
	it.Type = domain.NavigationMenuItemType(itemType)
	return it, nil
}

func (r *navigationMenuItemRepository) get(ctx context.Context, query string, args ...any) (*domain.NavigationMenuItem, error) {
	it, err := scanMenuItem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	settings, err := menuItemSettings.load(ctx, r.db, it.ID)
	if err != nil {
		return nil, err
	}
	it.Title = settings["title"]
	return it, nil
}

func (r *navigationMenuItemRepository) GetByID(ctx context.Context, id int32) (*domain.NavigationMenuItem, error) {
	return r.get(ctx, `SELECT `+menuItemColumns+` FROM navigation_menu_items WHERE navigation_menu_item_id = $1`, id)
}

func (r *navigationMenuItemRepository) GetByTypeAndTitleKey(ctx context.Context, contextID *int32, itemType domain.NavigationMenuItemType, titleLocaleKey string) (*domain.NavigationMenuItem, error) {
	query := `SELECT ` + menuItemColumns + ` FROM navigation_menu_items
	          WHERE context_id IS NOT DISTINCT FROM $1 AND type = $2 AND title_locale_key = $3`
	return r.get(ctx, query, nullableID(contextID), string(itemType), titleLocaleKey)
}

func (r *navigationMenuItemRepository) GetByIDs(ctx context.Context, ids []int32) (map[int32]domain.NavigationMenuItem, error) {
	items := make(map[int32]domain.NavigationMenuItem, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	query := `SELECT ` + menuItemColumns + ` FROM navigation_menu_items WHERE navigation_menu_item_id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		it.Title = domain.LocalizedString{}
		items[it.ID] = *it
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	settingsQuery := `SELECT navigation_menu_item_id, locale, COALESCE(setting_value, '') FROM navigation_menu_item_settings
	                  WHERE navigation_menu_item_id = ANY($1) AND setting_name = 'title'`
	srows, err := r.db.QueryContext(ctx, settingsQuery, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var id int32
		var locale, value string
		if err := srows.Scan(&id, &locale, &value); err != nil {
			return nil, err
		}
		if it, ok := items[id]; ok {
			it.Title[locale] = value
		}
	}
	return items, srows.Err()
}

func (r *navigationMenuItemRepository) Create(ctx context.Context, it *domain.NavigationMenuItem) error {
	query := `INSERT INTO navigation_menu_items (context_id, type, path, url, title_locale_key)
	          VALUES ($1, $2, $3, $4, $5) RETURNING navigation_menu_item_id`
	err := r.db.QueryRowContext(ctx, query, nullableID(it.ContextID), string(it.Type), it.Path, it.URL, it.TitleLocaleKey).Scan(&it.ID)
	if err != nil {
		return err
	}
	return menuItemSettings.save(ctx, r.db, it.ID, "title", it.Title)
}

func (r *navigationMenuItemRepository) Update(ctx context.Context, it *domain.NavigationMenuItem) error {
	query := `UPDATE navigation_menu_items SET path = $1, url = $2 WHERE navigation_menu_item_id = $3`
	if _, err := r.db.ExecContext(ctx, query, it.Path, it.URL, it.ID); err != nil {
		return err
	}
	return menuItemSettings.save(ctx, r.db, it.ID, "title", it.Title)
}

const assignmentColumns = `navigation_menu_item_assignment_id, navigation_menu_id, navigation_menu_item_id, parent_id, seq`

type navigationMenuItemAssignmentRepository struct {
	db *sql.DB
}

func NewNavigationMenuItemAssignmentRepository(db *sql.DB) repository.NavigationMenuItemAssignmentRepository {
	return &navigationMenuItemAssignmentRepository{db: db}
}

func scanAssignment(row interface{ Scan(...any) error }) (*domain.NavigationMenuItemAssignment, error) {
	a := &domain.NavigationMenuItemAssignment{}
	var parentID sql.NullInt32
	if err := row.Scan(&a.ID, &a.MenuID, &a.ItemID, &parentID, &a.Seq); err != nil {
		return nil, err
	}
	a.ParentID = idFromNull(parentID)
	return a, nil
}

func (r *navigationMenuItemAssignmentRepository) ListByMenu(ctx context.Context, menuID int32) ([]domain.NavigationMenuItemAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM navigation_menu_item_assignments
	          WHERE navigation_menu_id = $1 ORDER BY parent_id NULLS FIRST, seq`
	rows, err := r.db.QueryContext(ctx, query, menuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.NavigationMenuItemAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *navigationMenuItemAssignmentRepository) Find(ctx context.Context, menuID, itemID int32, parentID *int32) (*domain.NavigationMenuItemAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM navigation_menu_item_assignments
	          WHERE navigation_menu_id = $1 AND navigation_menu_item_id = $2 AND parent_id IS NOT DISTINCT FROM $3`
	a, err := scanAssignment(r.db.QueryRowContext(ctx, query, menuID, itemID, nullableID(parentID)))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (r *navigationMenuItemAssignmentRepository) Create(ctx context.Context, a *domain.NavigationMenuItemAssignment) error {
	query := `INSERT INTO navigation_menu_item_assignments (navigation_menu_id, navigation_menu_item_id, parent_id, seq)
	          VALUES ($1, $2, $3, $4) RETURNING navigation_menu_item_assignment_id`
	if err := r.db.QueryRowContext(ctx, query, a.MenuID, a.ItemID, nullableID(a.ParentID), a.Seq).Scan(&a.ID); err != nil {
		return err
	}
	return menuAssignmentSettings.save(ctx, r.db, a.ID, "title", a.Title)
}

func (r *navigationMenuItemAssignmentRepository) UpdateSeq(ctx context.Context, id, seq int32) error {
	_, err := r.db.ExecContext(ctx, `UPDATE navigation_menu_item_assignments SET seq = $1 WHERE navigation_menu_item_assignment_id = $2`, seq, id)
	return err
}

func (r *navigationMenuItemAssignmentRepository) ListMenuIDsByItem(ctx context.Context, itemID int32) ([]int32, error) {
	query := `SELECT DISTINCT navigation_menu_id FROM navigation_menu_item_assignments
	          WHERE navigation_menu_item_id = $1 ORDER BY navigation_menu_id`
	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *navigationMenuItemAssignmentRepository) DeleteByMenu(ctx context.Context, menuID int32) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM navigation_menu_item_assignments WHERE navigation_menu_id = $1`, menuID)
	return err
}
