package projects

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fotofolio/backend/internal/access"
	"github.com/fotofolio/backend/internal/middleware"
	"github.com/fotofolio/backend/internal/models"
	"github.com/fotofolio/backend/pkg/apperr"
	"github.com/fotofolio/backend/pkg/response"
)

// Handler handles project HTTP endpoints.
type Handler struct {
	repo      *Repository
	evaluator *access.Evaluator
	logger    *zap.Logger
}

// NewHandler creates a project handler.
func NewHandler(repo *Repository, evaluator *access.Evaluator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, evaluator: evaluator, logger: logger}
}

// CreateRequest is the body for POST /projects.
type CreateRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	EventDate   *string `json:"eventDate"`
	Status      string  `json:"status"`
}

// Create handles POST /projects. The creator receives an ADMIN grant in the
// same transaction as the project row.
func (h *Handler) Create(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	tenantID, err := access.RequireTenant(principal)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "title is required")
		return
	}

	status := models.ProjectDraft
	if req.Status != "" {
		status = models.ProjectStatus(req.Status)
		if !status.Valid() {
			response.BadRequest(c, "status must be one of DRAFT, ACTIVE, COMPLETED, ARCHIVED")
			return
		}
	}
	var eventDate *time.Time
	if req.EventDate != nil && *req.EventDate != "" {
		t, err := time.Parse(time.RFC3339, *req.EventDate)
		if err != nil {
			if t, err = time.Parse("2006-01-02", *req.EventDate); err != nil {
				response.BadRequest(c, "eventDate must be an RFC 3339 timestamp or YYYY-MM-DD date")
				return
			}
		}
		eventDate = &t
	}

	project := &models.Project{
		Title:       req.Title,
		Description: req.Description,
		EventDate:   eventDate,
		Status:      status,
		TenantID:    tenantID,
		CreatedBy:   principal.UserProfileID,
	}
	if err := h.repo.Create(c.Request.Context(), project); err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}
	response.Created(c, project, "Project created successfully")
}

// List handles GET /projects with page, limit, search and status query
// parameters. Only projects the caller holds a grant on are returned.
func (h *Handler) List(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	tenantID, err := access.RequireTenant(principal)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	filter := ListFilter{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}
	if s := c.Query("status"); s != "" {
		status := models.ProjectStatus(s)
		if !status.Valid() {
			response.BadRequest(c, "status must be one of DRAFT, ACTIVE, COMPLETED, ARCHIVED")
			return
		}
		filter.Status = status
	}

	list, total, err := h.repo.List(c.Request.Context(), tenantID, principal.UserProfileID, filter)
	if err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}
	if list == nil {
		list = []ProjectWithLevel{}
	}
	response.Paginated(c, list, response.NewPagination(page, limit, total))
}

// Get handles GET /projects/:id. Any grant level may view.
func (h *Handler) Get(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	tenantID, err := access.RequireTenant(principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	detail, err := h.repo.GetDetail(c.Request.Context(), tenantID, projectID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "project not found"))
		return
	}
	if _, err := h.evaluator.RequireProjectAccess(c.Request.Context(), principal, projectID, access.ViewOnly); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

// UpdateRequest is the body for PUT /projects/:id. Absent fields stay
// unchanged.
type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	EventDate   *string `json:"eventDate"`
	Status      *string `json:"status"`
	IsActive    *bool   `json:"isActive"`
}

// Update handles PUT /projects/:id. Requires EDIT or above.
func (h *Handler) Update(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	tenantID, err := access.RequireTenant(principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if _, err := h.repo.Get(c.Request.Context(), tenantID, projectID); err != nil {
		response.Error(c, apperr.FromPG(err, "project not found"))
		return
	}
	if _, err := h.evaluator.RequireProjectAccess(c.Request.Context(), principal, projectID, access.Edit); err != nil {
		response.Error(c, err)
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	fields := UpdateFields{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if req.Status != nil {
		status := models.ProjectStatus(*req.Status)
		if !status.Valid() {
			response.BadRequest(c, "status must be one of DRAFT, ACTIVE, COMPLETED, ARCHIVED")
			return
		}
		fields.Status = &status
	}
	if req.EventDate != nil && *req.EventDate != "" {
		t, err := time.Parse(time.RFC3339, *req.EventDate)
		if err != nil {
			if t, err = time.Parse("2006-01-02", *req.EventDate); err != nil {
				response.BadRequest(c, "eventDate must be an RFC 3339 timestamp or YYYY-MM-DD date")
				return
			}
		}
		fields.EventDate = &t
	}

	project, err := h.repo.Update(c.Request.Context(), tenantID, projectID, fields)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "project not found"))
		return
	}
	response.OKMessage(c, project, "Project updated successfully")
}

// Delete handles DELETE /projects/:id. Requires ADMIN; the project is
// soft-deleted and disappears from all reads.
func (h *Handler) Delete(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	tenantID, err := access.RequireTenant(principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if _, err := h.repo.Get(c.Request.Context(), tenantID, projectID); err != nil {
		response.Error(c, apperr.FromPG(err, "project not found"))
		return
	}
	if _, err := h.evaluator.RequireProjectAccess(c.Request.Context(), principal, projectID, access.Admin); err != nil {
		response.Error(c, err)
		return
	}

	if err := h.repo.SoftDelete(c.Request.Context(), tenantID, projectID, principal.UserProfileID); err != nil {
		response.Error(c, apperr.FromPG(err, "project not found"))
		return
	}
	response.OKMessage(c, nil, "Project deleted successfully")
}

// CollaboratorRequest is the body for POST /projects/:id/collaborators.
type CollaboratorRequest struct {
	UserProfileID string `json:"userProfileId" binding:"required"`
	AccessLevel   string `json:"accessLevel" binding:"required"`
}

// AddCollaborator handles POST /projects/:id/collaborators. Requires ADMIN.
// The target profile must belong to the same tenant; anything else reads as
// not found so profile ids cannot be probed across tenants.
func (h *Handler) AddCollaborator(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	tenantID, err := access.RequireTenant(principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req CollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "userProfileId and accessLevel are required")
		return
	}
	profileID, err := uuid.Parse(req.UserProfileID)
	if err != nil {
		response.BadRequest(c, "invalid userProfileId")
		return
	}
	level := access.Level(req.AccessLevel)
	if !level.Valid() {
		response.BadRequest(c, "accessLevel must be one of VIEW_ONLY, EDIT, ADMIN")
		return
	}

	if _, err := h.repo.Get(c.Request.Context(), tenantID, projectID); err != nil {
		response.Error(c, apperr.FromPG(err, "project not found"))
		return
	}
	if _, err := h.evaluator.RequireProjectAccess(c.Request.Context(), principal, projectID, access.Admin); err != nil {
		response.Error(c, err)
		return
	}

	targetTenant, err := h.repo.GetProfileTenant(c.Request.Context(), profileID)
	if err != nil {
		response.Error(c, apperr.NotFound("user profile not found"))
		return
	}
	if targetTenant == nil || *targetTenant != tenantID {
		response.Error(c, apperr.NotFound("user profile not found"))
		return
	}

	grant := &access.Grant{
		ProjectID:     projectID,
		UserProfileID: profileID,
		TenantID:      tenantID,
		Level:         level,
	}
	if err := h.repo.grants.InsertGrant(c.Request.Context(), grant, principal.UserProfileID); err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}
	response.Created(c, grant, "Collaborator added successfully")
}
