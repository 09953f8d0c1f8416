package photos

import (
	"mime/multipart"
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
	"github.com/fotofolio/backend/pkg/storage"
)

// MaxBulkUpload is the maximum number of files per upload request.
const MaxBulkUpload = 10

// Handler handles photo HTTP endpoints.
type Handler struct {
	repo      *Repository
	evaluator *access.Evaluator
	store     *storage.S3
	logger    *zap.Logger
}

// NewHandler creates a photo handler.
func NewHandler(repo *Repository, evaluator *access.Evaluator, store *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, evaluator: evaluator, store: store, logger: logger}
}

// resolvePhoto loads the photo inside the caller's tenant and enforces the
// minimum access level on the project it belongs to.
func (h *Handler) resolvePhoto(c *gin.Context, min access.Level) (uuid.UUID, *models.Photo, bool) {
	principal := middleware.PrincipalFrom(c)
	tenantID, err := access.RequireTenant(principal)
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, nil, false
	}
	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid photo id")
		return uuid.Nil, nil, false
	}
	photo, err := h.repo.Get(c.Request.Context(), tenantID, photoID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "photo not found"))
		return uuid.Nil, nil, false
	}
	projectID, err := h.repo.GetProjectID(c.Request.Context(), photo.AlbumID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "photo not found"))
		return uuid.Nil, nil, false
	}
	if _, err := h.evaluator.RequireProjectAccess(c.Request.Context(), principal, projectID, min); err != nil {
		response.Error(c, err)
		return uuid.Nil, nil, false
	}
	return tenantID, photo, true
}

// resolveAlbum loads the album from the :albumId path param. Any grant on
// the album's project is enough for uploads and listing.
func (h *Handler) resolveAlbum(c *gin.Context) (uuid.UUID, *models.Album, bool) {
	principal := middleware.PrincipalFrom(c)
	tenantID, err := access.RequireTenant(principal)
	if err != nil {
		response.Error(c, err)
		return uuid.Nil, nil, false
	}
	albumID, err := uuid.Parse(c.Param("albumId"))
	if err != nil {
		response.BadRequest(c, "invalid album id")
		return uuid.Nil, nil, false
	}
	album, err := h.repo.GetAlbum(c.Request.Context(), tenantID, albumID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "album not found"))
		return uuid.Nil, nil, false
	}
	if _, err := h.evaluator.RequireProjectAccess(c.Request.Context(), principal, album.ProjectID, access.ViewOnly); err != nil {
		response.Error(c, err)
		return uuid.Nil, nil, false
	}
	return tenantID, album, true
}

func (h *Handler) validateFiles(c *gin.Context, files []*multipart.FileHeader) bool {
	for _, fh := range files {
		if fh.Size > storage.MaxPhotoFileSize {
			response.Error(c, apperr.Validation("file "+fh.Filename+" exceeds the 25MB limit"))
			return false
		}
		if !storage.ValidatePhotoFileType(fh.Header.Get("Content-Type"), fh.Filename) {
			response.Error(c, apperr.Validation("file "+fh.Filename+" is not a supported image type"))
			return false
		}
	}
	return true
}

// Upload handles POST /photos/upload/:albumId. One file in the "photo"
// multipart field, streamed to S3 and then recorded.
func (h *Handler) Upload(c *gin.Context) {
	tenantID, album, ok := h.resolveAlbum(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		response.BadRequest(c, "a photo file is required")
		return
	}
	if !h.validateFiles(c, []*multipart.FileHeader{fh}) {
		return
	}

	photo, err := h.uploadOne(c, tenantID, album, fh, middleware.PrincipalFrom(c).UserProfileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, photo, "Photo uploaded successfully")
}

// BulkUpload handles POST /photos/bulk-upload/:albumId. Accepts up to ten
// files in the "photos" multipart field; every file is validated before the
// first byte goes to S3.
func (h *Handler) BulkUpload(c *gin.Context) {
	tenantID, album, ok := h.resolveAlbum(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "multipart form with a photos field is required")
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		response.BadRequest(c, "at least one file is required in the photos field")
		return
	}
	if len(files) > MaxBulkUpload {
		response.Error(c, apperr.Validation("at most 10 photos per upload"))
		return
	}
	if !h.validateFiles(c, files) {
		return
	}

	profileID := middleware.PrincipalFrom(c).UserProfileID
	uploaded := make([]models.Photo, 0, len(files))
	for _, fh := range files {
		photo, err := h.uploadOne(c, tenantID, album, fh, profileID)
		if err != nil {
			response.Error(c, err)
			return
		}
		uploaded = append(uploaded, *photo)
	}
	response.Created(c, uploaded, strconv.Itoa(len(uploaded))+" photos uploaded successfully")
}

func (h *Handler) uploadOne(c *gin.Context, tenantID uuid.UUID, album *models.Album, fh *multipart.FileHeader, profileID uuid.UUID) (*models.Photo, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, apperr.Internal("failed to read uploaded file")
	}
	defer file.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.ContentTypeForFilename(fh.Filename)
	}

	photoID := uuid.New()
	key := storage.PhotoKey(tenantID.String(), album.ID.String(), photoID.String(), fh.Filename)
	url, err := h.store.Upload(c.Request.Context(), key, contentType, file, fh.Size)
	if err != nil {
		h.logger.Error("photo upload failed", zap.Error(err), zap.String("key", key))
		return nil, apperr.Internal("failed to store photo")
	}

	photo := &models.Photo{
		ID:        photoID,
		AlbumID:   album.ID,
		TenantID:  tenantID,
		S3Key:     key,
		S3URL:     url,
		Filename:  fh.Filename,
		FileSize:  fh.Size,
		MimeType:  contentType,
		CreatedBy: profileID,
	}
	if err := h.repo.Insert(c.Request.Context(), photo); err != nil {
		// Row insert failed after the object landed; remove the orphan.
		if derr := h.store.Delete(c.Request.Context(), key); derr != nil {
			h.logger.Warn("orphaned photo object left in bucket", zap.Error(derr), zap.String("key", key))
		}
		return nil, apperr.FromPG(err, "")
	}
	return photo, nil
}

// List handles GET /photos/album/:albumId. Pages newest first with an
// optional filename search.
func (h *Handler) List(c *gin.Context) {
	tenantID, album, ok := h.resolveAlbum(c)
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

	photos, total, err := h.repo.ListByAlbum(c.Request.Context(), tenantID, album.ID, ListFilter{
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}
	response.Paginated(c, photos, response.NewPagination(page, limit, total))
}

// Get handles GET /photos/:id.
func (h *Handler) Get(c *gin.Context) {
	_, photo, ok := h.resolvePhoto(c, access.ViewOnly)
	if !ok {
		return
	}
	response.OK(c, photo)
}

// SignedURL handles GET /photos/:id/signed-url. An optional expiresIn query
// parameter gives the URL lifetime in seconds, capped at 24 hours.
func (h *Handler) SignedURL(c *gin.Context) {
	_, photo, ok := h.resolvePhoto(c, access.ViewOnly)
	if !ok {
		return
	}

	expires := h.store.PresignExpire()
	if raw := c.Query("expiresIn"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 || secs > 86400 {
			response.BadRequest(c, "expiresIn must be between 1 and 86400 seconds")
			return
		}
		expires = time.Duration(secs) * time.Second
	}

	url, err := h.store.PresignDownload(c.Request.Context(), photo.S3Key, expires)
	if err != nil {
		h.logger.Error("presign failed", zap.Error(err), zap.String("key", photo.S3Key))
		response.Error(c, apperr.Internal("failed to generate signed url"))
		return
	}
	response.OK(c, gin.H{
		"url":       url,
		"expiresIn": int(expires.Seconds()),
	})
}

// Delete handles DELETE /photos/:id. Requires EDIT or above. The row is
// soft-deleted first; object removal is best effort and a failure only logs,
// the photo is already unreachable through the API.
func (h *Handler) Delete(c *gin.Context) {
	tenantID, photo, ok := h.resolvePhoto(c, access.Edit)
	if !ok {
		return
	}

	key, err := h.repo.SoftDelete(c.Request.Context(), tenantID, photo.ID,
		middleware.PrincipalFrom(c).UserProfileID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "photo not found"))
		return
	}
	if err := h.store.Delete(c.Request.Context(), key); err != nil {
		h.logger.Warn("photo object delete failed", zap.Error(err), zap.String("key", key))
	}
	response.OKMessage(c, nil, "Photo deleted successfully")
}
