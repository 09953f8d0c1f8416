package models

import (
	"time"

	"github.com/google/uuid"
)

// Album groups photos within a project. Its tenant always equals the parent
// project's tenant; write paths derive it from the project, never from input.
type Album struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CoverImage  string     `json:"cover_image,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`
	DeletedBy   *uuid.UUID `json:"-"`
}

// Photo is a stored image belonging to an album.
type Photo struct {
	ID        uuid.UUID  `json:"id"`
	AlbumID   uuid.UUID  `json:"album_id"`
	TenantID  uuid.UUID  `json:"tenant_id"`
	S3Key     string     `json:"s3_key"`
	S3URL     string     `json:"s3_url"`
	Filename  string     `json:"filename"`
	FileSize  int64      `json:"file_size"`
	MimeType  string     `json:"mime_type"`
	Width     *int       `json:"width,omitempty"`
	Height    *int       `json:"height,omitempty"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
	DeletedBy *uuid.UUID `json:"-"`
}
