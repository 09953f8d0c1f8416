package access

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles project_user_profiles persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an access grant repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetGrant returns the grant for (project, profile), or pgx.ErrNoRows.
func (r *Repository) GetGrant(ctx context.Context, projectID, profileID uuid.UUID) (*Grant, error) {
	const q = `SELECT id, project_id, user_profile_id, tenant_id, accessibility, created_at
		FROM project_user_profiles WHERE project_id = $1 AND user_profile_id = $2`
	var g Grant
	err := r.pool.QueryRow(ctx, q, projectID, profileID).
		Scan(&g.ID, &g.ProjectID, &g.UserProfileID, &g.TenantID, &g.Level, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// InsertGrant adds a grant outside any surrounding transaction.
func (r *Repository) InsertGrant(ctx context.Context, g *Grant, createdBy uuid.UUID) error {
	return insertGrant(ctx, r.pool, g, createdBy)
}

// InsertGrantTx adds a grant inside a caller-owned transaction. Project
// creation and invite acceptance use this so the grant commits or rolls back
// with the rest of the unit.
func (r *Repository) InsertGrantTx(ctx context.Context, tx pgx.Tx, g *Grant, createdBy uuid.UUID) error {
	return insertGrant(ctx, tx, g, createdBy)
}

type execQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertGrant(ctx context.Context, q execQuerier, g *Grant, createdBy uuid.UUID) error {
	const sql = `INSERT INTO project_user_profiles
		(id, project_id, user_profile_id, tenant_id, accessibility, created_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return q.QueryRow(ctx, sql, g.ProjectID, g.UserProfileID, g.TenantID, string(g.Level), createdBy).
		Scan(&g.ID, &g.CreatedAt)
}
