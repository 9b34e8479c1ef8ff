package postgres

import (
	"context"
	"database/sql"

	"journal-backend/internal/domain"
	"journal-backend/internal/repository"
)

type userGroupRepository struct {
	db *sql.DB
}

func NewUserGroupRepository(db *sql.DB) repository.UserGroupRepository {
	return &userGroupRepository{db: db}
}

func (r *userGroupRepository) GetByID(ctx context.Context, id int32) (*domain.UserGroup, error) {
	g := &domain.UserGroup{}
	var contextID sql.NullInt32
	query := `SELECT user_group_id, context_id, role_id, show_title FROM user_groups WHERE user_group_id = $1`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&g.ID, &contextID, &g.RoleID, &g.ShowTitle); err != nil {
		return nil, notFound(err)
	}
	g.ContextID = idFromNull(contextID)

	settings, err := userGroupSettings.load(ctx, r.db, g.ID)
	if err != nil {
		return nil, err
	}
	g.Name = settings["name"]
	g.Abbrev = settings["abbrev"]
	return g, nil
}
