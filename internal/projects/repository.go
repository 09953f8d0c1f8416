package projects

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fotofolio/backend/internal/access"
	"github.com/fotofolio/backend/internal/models"
)

const projectColumns = `id, title, description, event_date, status, tenant_id, created_by,
	is_active, created_at, updated_at`

// Repository handles project persistence.
type Repository struct {
	pool   *pgxpool.Pool
	grants *access.Repository
}

// NewRepository creates a project repository.
func NewRepository(pool *pgxpool.Pool, grants *access.Repository) *Repository {
	return &Repository{pool: pool, grants: grants}
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.EventDate, &p.Status, &p.TenantID,
		&p.CreatedBy, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts the project and the creator's ADMIN grant in one
// transaction. A project without an admin is unreachable, so the two rows
// commit or roll back together.
func (r *Repository) Create(ctx context.Context, p *models.Project) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const q = `INSERT INTO projects (id, title, description, event_date, status, tenant_id, created_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING id, is_active, created_at, updated_at`
	err = tx.QueryRow(ctx, q, p.Title, p.Description, p.EventDate, string(p.Status), p.TenantID, p.CreatedBy).
		Scan(&p.ID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}

	grant := &access.Grant{
		ProjectID:     p.ID,
		UserProfileID: p.CreatedBy,
		TenantID:      p.TenantID,
		Level:         access.Admin,
	}
	if err := r.grants.InsertGrantTx(ctx, tx, grant, p.CreatedBy); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListFilter narrows a project listing.
type ListFilter struct {
	Search string
	Status models.ProjectStatus
	Page   int
	Limit  int
}

// Collaborator is a profile holding a grant on a project. The creator shows
// up here too, through its automatic ADMIN grant.
type Collaborator struct {
	UserProfileID uuid.UUID    `json:"user_profile_id"`
	Name          string       `json:"name"`
	AccessLevel   access.Level `json:"accessibility"`
}

// ProjectWithLevel is a listing row: the project, the caller's own
// accessibility on it, and everyone holding a grant.
type ProjectWithLevel struct {
	models.Project
	AccessLevel   access.Level   `json:"accessibility"`
	Collaborators []Collaborator `json:"collaborators"`
}

// List returns the projects the profile holds a grant on within the tenant,
// newest first, with the total row count for pagination.
func (r *Repository) List(ctx context.Context, tenantID, profileID uuid.UUID, f ListFilter) ([]ProjectWithLevel, int, error) {
	where := []string{
		"p.tenant_id = $1",
		"p.deleted_at IS NULL",
		"g.user_profile_id = $2",
	}
	args := []any{tenantID, profileID}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where = append(where, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("p.status = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQ := `SELECT COUNT(*) FROM projects p
		JOIN project_user_profiles g ON g.project_id = p.id WHERE ` + cond
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	listQ := fmt.Sprintf(`SELECT p.id, p.title, p.description, p.event_date, p.status, p.tenant_id,
			p.created_by, p.is_active, p.created_at, p.updated_at, g.accessibility
		FROM projects p
		JOIN project_user_profiles g ON g.project_id = p.id
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQ, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []ProjectWithLevel
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var p ProjectWithLevel
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.EventDate, &p.Status, &p.TenantID,
			&p.CreatedBy, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.AccessLevel); err != nil {
			return nil, 0, err
		}
		p.Collaborators = []Collaborator{}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 {
		return out, total, nil
	}

	ids := make([]uuid.UUID, 0, len(out))
	for _, p := range out {
		ids = append(ids, p.ID)
	}
	const collabQ = `SELECT g.project_id, g.user_profile_id, up.name, g.accessibility
		FROM project_user_profiles g
		JOIN user_profiles up ON up.id = g.user_profile_id
		WHERE g.project_id = ANY($1)
		ORDER BY g.created_at`
	crows, err := r.pool.Query(ctx, collabQ, ids)
	if err != nil {
		return nil, 0, err
	}
	defer crows.Close()

	for crows.Next() {
		var projectID uuid.UUID
		var col Collaborator
		if err := crows.Scan(&projectID, &col.UserProfileID, &col.Name, &col.AccessLevel); err != nil {
			return nil, 0, err
		}
		if i, ok := index[projectID]; ok {
			out[i].Collaborators = append(out[i].Collaborators, col)
		}
	}
	return out, total, crows.Err()
}

// Get returns a live project within the tenant, or pgx.ErrNoRows. Tenant
// scoping in the query means cross-tenant ids read as nonexistent.
func (r *Repository) Get(ctx context.Context, tenantID, projectID uuid.UUID) (*models.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`
	return scanProject(r.pool.QueryRow(ctx, q, projectID, tenantID))
}

// AlbumSummary is an album row in the project detail view.
type AlbumSummary struct {
	models.Album
	PhotoCount int            `json:"photo_count"`
	Previews   []models.Photo `json:"previews"`
}

// Detail is the full project view: the project, its albums with photo
// counts and up to five preview photos each, and aggregate totals.
type Detail struct {
	models.Project
	Albums      []AlbumSummary `json:"albums"`
	AlbumCount  int            `json:"album_count"`
	PhotoCount  int            `json:"photo_count"`
}

// GetDetail loads the project together with its album summaries.
func (r *Repository) GetDetail(ctx context.Context, tenantID, projectID uuid.UUID) (*Detail, error) {
	project, err := r.Get(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}
	detail := &Detail{Project: *project, Albums: []AlbumSummary{}}

	const albumsQ = `SELECT a.id, a.project_id, a.tenant_id, a.title, a.description, a.cover_image,
			a.created_by, a.created_at, a.updated_at,
			(SELECT COUNT(*) FROM photos ph WHERE ph.album_id = a.id AND ph.deleted_at IS NULL)
		FROM albums a
		WHERE a.project_id = $1 AND a.deleted_at IS NULL
		ORDER BY a.created_at DESC`
	rows, err := r.pool.Query(ctx, albumsQ, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := map[uuid.UUID]int{}
	for rows.Next() {
		var a AlbumSummary
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.TenantID, &a.Title, &a.Description, &a.CoverImage,
			&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt, &a.PhotoCount); err != nil {
			return nil, err
		}
		a.Previews = []models.Photo{}
		index[a.ID] = len(detail.Albums)
		detail.Albums = append(detail.Albums, a)
		detail.PhotoCount += a.PhotoCount
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	detail.AlbumCount = len(detail.Albums)
	if detail.AlbumCount == 0 {
		return detail, nil
	}

	// Up to five newest photos per album, one query via a window function.
	const previewsQ = `SELECT id, album_id, tenant_id, s3_key, s3_url, filename, file_size,
			mime_type, width, height, created_by, created_at, updated_at
		FROM (
			SELECT ph.*, ROW_NUMBER() OVER (PARTITION BY ph.album_id ORDER BY ph.created_at DESC) AS rn
			FROM photos ph
			JOIN albums a ON a.id = ph.album_id
			WHERE a.project_id = $1 AND ph.deleted_at IS NULL AND a.deleted_at IS NULL
		) ranked
		WHERE rn <= 5`
	prows, err := r.pool.Query(ctx, previewsQ, projectID)
	if err != nil {
		return nil, err
	}
	defer prows.Close()

	for prows.Next() {
		var ph models.Photo
		if err := prows.Scan(&ph.ID, &ph.AlbumID, &ph.TenantID, &ph.S3Key, &ph.S3URL, &ph.Filename,
			&ph.FileSize, &ph.MimeType, &ph.Width, &ph.Height, &ph.CreatedBy, &ph.CreatedAt, &ph.UpdatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[ph.AlbumID]; ok {
			detail.Albums[i].Previews = append(detail.Albums[i].Previews, ph)
		}
	}
	return detail, prows.Err()
}

// UpdateFields carries the optional fields of a project update. Nil means
// leave unchanged.
type UpdateFields struct {
	Title       *string
	Description *string
	EventDate   *time.Time
	Status      *models.ProjectStatus
	IsActive    *bool
}

// Update applies the set fields and returns the updated row, or
// pgx.ErrNoRows when the project is missing, deleted or in another tenant.
func (r *Repository) Update(ctx context.Context, tenantID, projectID uuid.UUID, f UpdateFields) (*models.Project, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{projectID, tenantID}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.Title != nil {
		add("title", *f.Title)
	}
	if f.Description != nil {
		add("description", *f.Description)
	}
	if f.EventDate != nil {
		add("event_date", *f.EventDate)
	}
	if f.Status != nil {
		add("status", string(*f.Status))
	}
	if f.IsActive != nil {
		add("is_active", *f.IsActive)
	}

	q := fmt.Sprintf(`UPDATE projects SET %s
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		RETURNING `+projectColumns, strings.Join(set, ", "))
	return scanProject(r.pool.QueryRow(ctx, q, args...))
}

// SoftDelete marks the project deleted. Albums and photos stay untouched;
// they become unreachable because every read path starts from the project.
func (r *Repository) SoftDelete(ctx context.Context, tenantID, projectID, deletedBy uuid.UUID) error {
	const q = `UPDATE projects SET deleted_at = NOW(), deleted_by = $3, is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`
	tag, err := r.pool.Exec(ctx, q, projectID, tenantID, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetProfileTenant returns the tenant a profile belongs to, or pgx.ErrNoRows.
func (r *Repository) GetProfileTenant(ctx context.Context, profileID uuid.UUID) (*uuid.UUID, error) {
	const q = `SELECT tenant_id FROM user_profiles WHERE id = $1`
	var tenantID *uuid.UUID
	if err := r.pool.QueryRow(ctx, q, profileID).Scan(&tenantID); err != nil {
		return nil, err
	}
	return tenantID, nil
}
