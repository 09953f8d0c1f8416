package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle status of a project.
type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "DRAFT"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectArchived  ProjectStatus = "ARCHIVED"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectDraft, ProjectActive, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

// Project represents a photography project within a tenant.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	EventDate   *time.Time    `json:"event_date,omitempty"`
	Status      ProjectStatus `json:"status"`
	TenantID    uuid.UUID     `json:"tenant_id"`
	CreatedBy   uuid.UUID     `json:"created_by"` // creator profile id
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	DeletedAt   *time.Time    `json:"-"`
	DeletedBy   *uuid.UUID    `json:"-"`
}
