package albums

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fotofolio/backend/internal/access"
	"github.com/fotofolio/backend/internal/middleware"
	"github.com/fotofolio/backend/internal/models"
	"github.com/fotofolio/backend/pkg/apperr"
	"github.com/fotofolio/backend/pkg/response"
)

// Handler handles album HTTP endpoints.
type Handler struct {
	repo      *Repository
	evaluator *access.Evaluator
	logger    *zap.Logger
}

// NewHandler creates an album handler.
func NewHandler(repo *Repository, evaluator *access.Evaluator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, evaluator: evaluator, logger: logger}
}

// resolveProject loads the project inside the caller's tenant and enforces
// the minimum access level on it. Shared prologue for project-scoped routes;
// the project id comes from the request body or path depending on the route.
func (h *Handler) resolveProject(c *gin.Context, rawProjectID string, min access.Level) (uuid.UUID, uuid.UUID, bool) {
	principal := middleware.PrincipalFrom(c)
	tenantID, err := access.RequireTenant(principal)
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	projectID, err := uuid.Parse(rawProjectID)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return uuid.Nil, uuid.Nil, false
	}
	if _, err := h.repo.GetProject(c.Request.Context(), tenantID, projectID); err != nil {
		response.Error(c, apperr.FromPG(err, "project not found"))
		return uuid.Nil, uuid.Nil, false
	}
	if _, err := h.evaluator.RequireProjectAccess(c.Request.Context(), principal, projectID, min); err != nil {
		response.Error(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, projectID, true
}

// resolveAlbum loads the album inside the caller's tenant and enforces the
// minimum access level on its parent project.
func (h *Handler) resolveAlbum(c *gin.Context, min access.Level) (uuid.UUID, *models.Album, bool) {
	principal := middleware.PrincipalFrom(c)
	tenantID, err := access.RequireTenant(principal)
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, nil, false
	}
	albumID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid album id")
		return uuid.Nil, nil, false
	}
	album, err := h.repo.Get(c.Request.Context(), tenantID, albumID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "album not found"))
		return uuid.Nil, nil, false
	}
	if _, err := h.evaluator.RequireProjectAccess(c.Request.Context(), principal, album.ProjectID, min); err != nil {
		response.Error(c, err)
		return uuid.Nil, nil, false
	}
	return tenantID, album, true
}

// CreateRequest is the body for POST /albums.
type CreateRequest struct {
	ProjectID   string `json:"projectId" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	CoverImage  string `json:"coverImage"`
}

// Create handles POST /albums. Any grant on the project may create albums;
// the album's tenant is derived from the project.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "projectId and title are required")
		return
	}
	tenantID, projectID, ok := h.resolveProject(c, req.ProjectID, access.ViewOnly)
	if !ok {
		return
	}

	album := &models.Album{
		ProjectID:   projectID,
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		CreatedBy:   middleware.PrincipalFrom(c).UserProfileID,
	}
	if err := h.repo.Create(c.Request.Context(), album); err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}
	response.Created(c, album, "Album created successfully")
}

// BatchRequest is the body for PUT /albums/batch.
type BatchRequest struct {
	ProjectID string              `json:"projectId" binding:"required"`
	Albums    []BatchAlbumRequest `json:"albums" binding:"required,min=1,dive"`
}

// BatchAlbumRequest is one entry of a batch upsert.
type BatchAlbumRequest struct {
	ID          *string `json:"id"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	CoverImage  string  `json:"coverImage"`
}

// Batch handles PUT /albums/batch. Entries with an id update, entries
// without insert; the whole batch commits or rolls back together. Any grant
// on the project suffices.
func (h *Handler) Batch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "projectId and albums are required and each entry needs a title")
		return
	}
	tenantID, projectID, ok := h.resolveProject(c, req.ProjectID, access.ViewOnly)
	if !ok {
		return
	}

	items := make([]BatchItem, 0, len(req.Albums))
	for _, a := range req.Albums {
		item := BatchItem{Title: a.Title, Description: a.Description, CoverImage: a.CoverImage}
		if a.ID != nil && *a.ID != "" {
			id, err := uuid.Parse(*a.ID)
			if err != nil {
				response.BadRequest(c, "invalid album id in batch")
				return
			}
			item.ID = &id
		}
		items = append(items, item)
	}

	out, err := h.repo.BatchUpsert(c.Request.Context(), tenantID, projectID,
		middleware.PrincipalFrom(c).UserProfileID, items)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "album not found in this project"))
		return
	}
	response.OKMessage(c, out, "Albums saved successfully")
}

// List handles GET /albums/project/:projectId.
func (h *Handler) List(c *gin.Context) {
	tenantID, projectID, ok := h.resolveProject(c, c.Param("projectId"), access.ViewOnly)
	if !ok {
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

	albums, total, err := h.repo.ListByProject(c.Request.Context(), tenantID, projectID, ListFilter{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}
	response.Paginated(c, albums, response.NewPagination(page, limit, total))
}

// Get handles GET /albums/:id, returning the album with its photos newest
// first.
func (h *Handler) Get(c *gin.Context) {
	_, album, ok := h.resolveAlbum(c, access.ViewOnly)
	if !ok {
		return
	}
	photos, err := h.repo.GetPhotos(c.Request.Context(), album.ID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}
	response.OK(c, gin.H{"album": album, "photos": photos})
}

// UpdateRequest is the body for PUT /albums/:id.
type UpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CoverImage  *string `json:"coverImage"`
}

// Update handles PUT /albums/:id. Requires EDIT or above.
func (h *Handler) Update(c *gin.Context) {
	tenantID, album, ok := h.resolveAlbum(c, access.Edit)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	updated, err := h.repo.Update(c.Request.Context(), tenantID, album.ID, UpdateFields{
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  req.CoverImage,
	})
	if err != nil {
		response.Error(c, apperr.FromPG(err, "album not found"))
		return
	}
	response.OKMessage(c, updated, "Album updated successfully")
}

// Delete handles DELETE /albums/:id. Requires ADMIN.
func (h *Handler) Delete(c *gin.Context) {
	tenantID, album, ok := h.resolveAlbum(c, access.Admin)
	if !ok {
		return
	}
	if err := h.repo.SoftDelete(c.Request.Context(), tenantID, album.ID,
		middleware.PrincipalFrom(c).UserProfileID); err != nil {
		response.Error(c, apperr.FromPG(err, "album not found"))
		return
	}
	response.OKMessage(c, nil, "Album deleted successfully")
}
