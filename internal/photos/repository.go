package photos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fotofolio/backend/internal/models"
)

const photoColumns = `id, album_id, tenant_id, s3_key, s3_url, filename, file_size,
	mime_type, width, height, created_by, created_at, updated_at`

// Repository handles photo persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a photo repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanPhoto(row pgx.Row) (*models.Photo, error) {
	var ph models.Photo
	err := row.Scan(&ph.ID, &ph.AlbumID, &ph.TenantID, &ph.S3Key, &ph.S3URL, &ph.Filename,
		&ph.FileSize, &ph.MimeType, &ph.Width, &ph.Height, &ph.CreatedBy, &ph.CreatedAt, &ph.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ph, nil
}

// GetAlbum returns the live album uploads target, or pgx.ErrNoRows.
func (r *Repository) GetAlbum(ctx context.Context, tenantID, albumID uuid.UUID) (*models.Album, error) {
	const q = `SELECT id, project_id, tenant_id, title, description, cover_image,
			created_by, created_at, updated_at
		FROM albums WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`
	var a models.Album
	err := r.pool.QueryRow(ctx, q, albumID, tenantID).
		Scan(&a.ID, &a.ProjectID, &a.TenantID, &a.Title, &a.Description, &a.CoverImage,
			&a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Insert writes an already-uploaded photo's row. The id is chosen by the
// caller because it is part of the S3 object key.
func (r *Repository) Insert(ctx context.Context, ph *models.Photo) error {
	const q = `INSERT INTO photos
			(id, album_id, tenant_id, s3_key, s3_url, filename, file_size, mime_type, width, height, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, q, ph.ID, ph.AlbumID, ph.TenantID, ph.S3Key, ph.S3URL,
		ph.Filename, ph.FileSize, ph.MimeType, ph.Width, ph.Height, ph.CreatedBy).
		Scan(&ph.CreatedAt, &ph.UpdatedAt)
}

// Get returns a live photo within the tenant, or pgx.ErrNoRows.
func (r *Repository) Get(ctx context.Context, tenantID, photoID uuid.UUID) (*models.Photo, error) {
	q := `SELECT ` + photoColumns + ` FROM photos
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`
	return scanPhoto(r.pool.QueryRow(ctx, q, photoID, tenantID))
}

// GetProjectID returns the project a photo belongs to through its album.
func (r *Repository) GetProjectID(ctx context.Context, albumID uuid.UUID) (uuid.UUID, error) {
	const q = `SELECT project_id FROM albums WHERE id = $1`
	var projectID uuid.UUID
	if err := r.pool.QueryRow(ctx, q, albumID).Scan(&projectID); err != nil {
		return uuid.Nil, err
	}
	return projectID, nil
}

// ListFilter narrows and pages a photo listing.
type ListFilter struct {
	Search string
	Page   int
	Limit  int
}

// ListByAlbum returns a page of the album's live photos newest first, with
// an optional filename search, plus the total match count.
func (r *Repository) ListByAlbum(ctx context.Context, tenantID, albumID uuid.UUID, f ListFilter) ([]models.Photo, int, error) {
	where := `album_id = $1 AND tenant_id = $2 AND deleted_at IS NULL`
	args := []any{albumID, tenantID}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(` AND filename ILIKE $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM photos WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	q := fmt.Sprintf(`SELECT %s FROM photos
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, photoColumns, where, len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.Photo{}
	for rows.Next() {
		var ph models.Photo
		if err := rows.Scan(&ph.ID, &ph.AlbumID, &ph.TenantID, &ph.S3Key, &ph.S3URL, &ph.Filename,
			&ph.FileSize, &ph.MimeType, &ph.Width, &ph.Height, &ph.CreatedBy, &ph.CreatedAt, &ph.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, ph)
	}
	return out, total, rows.Err()
}

// SoftDelete marks the photo deleted and returns its S3 key so the caller
// can attempt object cleanup after the row is committed.
func (r *Repository) SoftDelete(ctx context.Context, tenantID, photoID, deletedBy uuid.UUID) (string, error) {
	const q = `UPDATE photos SET deleted_at = NOW(), deleted_by = $3, updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		RETURNING s3_key`
	var key string
	if err := r.pool.QueryRow(ctx, q, photoID, tenantID, deletedBy).Scan(&key); err != nil {
		return "", err
	}
	return key, nil
}
