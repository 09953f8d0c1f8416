package albums

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fotofolio/backend/internal/models"
)

const albumColumns = `id, project_id, tenant_id, title, description, cover_image,
	created_by, created_at, updated_at`

// Repository handles album persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an album repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAlbum(row pgx.Row) (*models.Album, error) {
	var a models.Album
	err := row.Scan(&a.ID, &a.ProjectID, &a.TenantID, &a.Title, &a.Description, &a.CoverImage,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetProject returns the live project row the album operations hang off, or
// pgx.ErrNoRows. Tenant scoping makes cross-tenant ids read as nonexistent.
func (r *Repository) GetProject(ctx context.Context, tenantID, projectID uuid.UUID) (*models.Project, error) {
	const q = `SELECT id, title, description, event_date, status, tenant_id, created_by,
			is_active, created_at, updated_at
		FROM projects WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`
	var p models.Project
	err := r.pool.QueryRow(ctx, q, projectID, tenantID).
		Scan(&p.ID, &p.Title, &p.Description, &p.EventDate, &p.Status, &p.TenantID,
			&p.CreatedBy, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts an album under the project. The tenant is always the
// project's tenant, never caller input.
func (r *Repository) Create(ctx context.Context, a *models.Album) error {
	const q = `INSERT INTO albums (id, project_id, tenant_id, title, description, cover_image, created_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, a.ProjectID, a.TenantID, a.Title, a.Description, a.CoverImage, a.CreatedBy).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// BatchItem is one entry of a batch upsert. A nil ID inserts; a set ID
// updates that album.
type BatchItem struct {
	ID          *uuid.UUID
	Title       string
	Description string
	CoverImage  string
}

// BatchUpsert applies all items in one transaction so a partial failure
// leaves the project's albums untouched. Updating an album from another
// project or tenant fails the whole batch with pgx.ErrNoRows.
func (r *Repository) BatchUpsert(ctx context.Context, tenantID, projectID, profileID uuid.UUID, items []BatchItem) ([]models.Album, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	out := make([]models.Album, 0, len(items))
	for _, item := range items {
		a := models.Album{
			ProjectID:   projectID,
			TenantID:    tenantID,
			Title:       item.Title,
			Description: item.Description,
			CoverImage:  item.CoverImage,
			CreatedBy:   profileID,
		}
		if item.ID == nil {
			const ins = `INSERT INTO albums (id, project_id, tenant_id, title, description, cover_image, created_by)
				VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
				RETURNING id, created_at, updated_at`
			err = tx.QueryRow(ctx, ins, projectID, tenantID, item.Title, item.Description, item.CoverImage, profileID).
				Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		} else {
			const upd = `UPDATE albums SET title = $4, description = $5, cover_image = $6, updated_at = NOW()
				WHERE id = $1 AND project_id = $2 AND tenant_id = $3 AND deleted_at IS NULL
				RETURNING id, created_by, created_at, updated_at`
			err = tx.QueryRow(ctx, upd, *item.ID, projectID, tenantID, item.Title, item.Description, item.CoverImage).
				Scan(&a.ID, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary is an album listing row with its photo count and up to three
// preview photos.
type Summary struct {
	models.Album
	PhotoCount int            `json:"photo_count"`
	Previews   []models.Photo `json:"previews"`
}

// ListFilter narrows and pages an album listing.
type ListFilter struct {
	Search string
	Page   int
	Limit  int
}

// ListByProject returns a page of the project's live albums newest first,
// each with a photo count and three newest preview photos, plus the total
// match count.
func (r *Repository) ListByProject(ctx context.Context, tenantID, projectID uuid.UUID, f ListFilter) ([]Summary, int, error) {
	where := `a.project_id = $1 AND a.tenant_id = $2 AND a.deleted_at IS NULL`
	args := []any{projectID, tenantID}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(` AND (a.title ILIKE $%d OR a.description ILIKE $%d)`, len(args), len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM albums a WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	q := fmt.Sprintf(`SELECT a.id, a.project_id, a.tenant_id, a.title, a.description, a.cover_image,
			a.created_by, a.created_at, a.updated_at,
			(SELECT COUNT(*) FROM photos ph WHERE ph.album_id = a.id AND ph.deleted_at IS NULL)
		FROM albums a
		WHERE %s
		ORDER BY a.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Summary{}
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.TenantID, &s.Title, &s.Description, &s.CoverImage,
			&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt, &s.PhotoCount); err != nil {
			return nil, 0, err
		}
		s.Previews = []models.Photo{}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 {
		return out, total, nil
	}

	const previewsQ = `SELECT id, album_id, tenant_id, s3_key, s3_url, filename, file_size,
			mime_type, width, height, created_by, created_at, updated_at
		FROM (
			SELECT ph.*, ROW_NUMBER() OVER (PARTITION BY ph.album_id ORDER BY ph.created_at DESC) AS rn
			FROM photos ph
			JOIN albums a ON a.id = ph.album_id
			WHERE a.project_id = $1 AND a.tenant_id = $2
				AND ph.deleted_at IS NULL AND a.deleted_at IS NULL
		) ranked
		WHERE rn <= 3`
	prows, err := r.pool.Query(ctx, previewsQ, projectID, tenantID)
	if err != nil {
		return nil, 0, err
	}
	defer prows.Close()

	for prows.Next() {
		var ph models.Photo
		if err := prows.Scan(&ph.ID, &ph.AlbumID, &ph.TenantID, &ph.S3Key, &ph.S3URL, &ph.Filename,
			&ph.FileSize, &ph.MimeType, &ph.Width, &ph.Height, &ph.CreatedBy, &ph.CreatedAt, &ph.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if i, ok := index[ph.AlbumID]; ok {
			out[i].Previews = append(out[i].Previews, ph)
		}
	}
	return out, total, prows.Err()
}

// Get returns a live album within the tenant, or pgx.ErrNoRows.
func (r *Repository) Get(ctx context.Context, tenantID, albumID uuid.UUID) (*models.Album, error) {
	q := `SELECT ` + albumColumns + ` FROM albums
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`
	return scanAlbum(r.pool.QueryRow(ctx, q, albumID, tenantID))
}

// GetPhotos returns the album's live photos newest first.
func (r *Repository) GetPhotos(ctx context.Context, albumID uuid.UUID) ([]models.Photo, error) {
	const q = `SELECT id, album_id, tenant_id, s3_key, s3_url, filename, file_size,
			mime_type, width, height, created_by, created_at, updated_at
		FROM photos
		WHERE album_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, albumID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Photo{}
	for rows.Next() {
		var ph models.Photo
		if err := rows.Scan(&ph.ID, &ph.AlbumID, &ph.TenantID, &ph.S3Key, &ph.S3URL, &ph.Filename,
			&ph.FileSize, &ph.MimeType, &ph.Width, &ph.Height, &ph.CreatedBy, &ph.CreatedAt, &ph.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ph)
	}
	return out, rows.Err()
}

// UpdateFields carries the optional fields of an album update.
type UpdateFields struct {
	Title       *string
	Description *string
	CoverImage  *string
}

// Update applies the set fields and returns the updated row, or
// pgx.ErrNoRows.
func (r *Repository) Update(ctx context.Context, tenantID, albumID uuid.UUID, f UpdateFields) (*models.Album, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{albumID, tenantID}
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
	if f.CoverImage != nil {
		add("cover_image", *f.CoverImage)
	}

	q := fmt.Sprintf(`UPDATE albums SET %s
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		RETURNING `+albumColumns, strings.Join(set, ", "))
	return scanAlbum(r.pool.QueryRow(ctx, q, args...))
}

// SoftDelete marks the album deleted.
func (r *Repository) SoftDelete(ctx context.Context, tenantID, albumID, deletedBy uuid.UUID) error {
	const q = `UPDATE albums SET deleted_at = NOW(), deleted_by = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`
	tag, err := r.pool.Exec(ctx, q, albumID, tenantID, deletedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
