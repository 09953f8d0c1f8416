package invites

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fotofolio/backend/internal/access"
	"github.com/fotofolio/backend/internal/auth"
	"github.com/fotofolio/backend/internal/middleware"
	"github.com/fotofolio/backend/internal/models"
	"github.com/fotofolio/backend/pkg/apperr"
	"github.com/fotofolio/backend/pkg/queue"
	"github.com/fotofolio/backend/pkg/response"
	"github.com/fotofolio/backend/pkg/utils"
)

// InviteTTL is how long an issued invite stays redeemable.
const InviteTTL = 7 * 24 * time.Hour

// Handler handles invite HTTP endpoints.
type Handler struct {
	repo        *Repository
	evaluator   *access.Evaluator
	authRepo    *auth.Repository
	jwt         *auth.JWTService
	emails      *queue.Queue
	frontendURL string
	logger      *zap.Logger
}

// NewHandler creates an invite handler.
func NewHandler(repo *Repository, evaluator *access.Evaluator, authRepo *auth.Repository,
	jwtSvc *auth.JWTService, emails *queue.Queue, frontendURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repo:        repo,
		evaluator:   evaluator,
		authRepo:    authRepo,
		jwt:         jwtSvc,
		emails:      emails,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// duplicateInviteError rejects a re-issue for an email that already has a
// live invite on the project, as a validation error.
func duplicateInviteError(status models.InviteStatus) error {
	if status == models.InviteAccepted {
		return apperr.Validation("User has already accepted this invite")
	}
	return apperr.Validation("Invite already pending for this email")
}

// IssueRequest is the body for POST /invites/add-project-customer.
type IssueRequest struct {
	ProjectID   string `json:"projectId" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	AccessLevel string `json:"accessLevel" binding:"required"`
}

// Issue handles POST /invites/add-project-customer. Only a project ADMIN or
// the project's creator may invite. The invite row is persisted first; email
// delivery is queued and never blocks or fails the request.
func (h *Handler) Issue(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	tenantID, err := access.RequireTenant(principal)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "projectId, email and accessLevel are required")
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		response.BadRequest(c, "invalid projectId")
		return
	}
	level := access.Level(req.AccessLevel)
	if !level.Valid() {
		response.BadRequest(c, "accessLevel must be one of VIEW_ONLY, EDIT, ADMIN")
		return
	}

	project, err := h.repo.GetProject(c.Request.Context(), tenantID, projectID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "project not found"))
		return
	}
	if project.CreatedBy != principal.UserProfileID {
		if _, err := h.evaluator.RequireProjectAccess(c.Request.Context(), principal, projectID, access.Admin); err != nil {
			response.Error(c, err)
			return
		}
	}

	if existing, err := h.repo.FindActive(c.Request.Context(), projectID, req.Email); err == nil {
		response.Error(c, duplicateInviteError(existing.Status))
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}

	invite := &models.EmailInvite{
		Email:     req.Email,
		ProjectID: projectID,
		Token:     uuid.New().String(),
		Status:    models.InvitePending,
		Details:   models.InviteDetails{AccessLevel: string(level)},
		ExpiresAt: time.Now().Add(InviteTTL),
		CreatedBy: principal.UserProfileID,
	}

	kind := queue.EmailInviteRegister
	invite.Type = models.InviteProjectAndRegister
	invite.InviteLink = h.frontendURL + "/register?token=" + invite.Token
	if existingUser, err := h.authRepo.GetUserByEmail(c.Request.Context(), req.Email); err == nil {
		kind = queue.EmailInviteExisting
		invite.Type = models.InviteProject
		invite.InviteLink = h.frontendURL + "/invite/accept?token=" + invite.Token
		invite.Details.ExistingUserID = &existingUser.ID
	} else if !errors.Is(err, pgx.ErrNoRows) {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}

	if err := h.repo.Create(c.Request.Context(), invite); err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}

	senderName := principal.Email
	if sender, err := h.authRepo.GetUserByID(c.Request.Context(), principal.UserID); err == nil {
		senderName = sender.Name
	}
	if err := h.emails.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		Kind:        kind,
		Recipient:   req.Email,
		Token:       invite.Token,
		Link:        invite.InviteLink,
		ProjectName: project.Title,
		SenderName:  senderName,
	}); err != nil {
		h.logger.Error("enqueue invite email", zap.Error(err), zap.String("invite_id", invite.ID.String()))
	}

	response.Created(c, invite, "Invite sent successfully")
}

// Validate handles GET /invites/validate/:token. Public: the frontend calls
// it before showing the accept or register form.
func (h *Handler) Validate(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.BadRequest(c, "token is required")
		return
	}
	invite, err := h.repo.GetByToken(c.Request.Context(), token)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "invite not found"))
		return
	}

	now := time.Now()
	response.OK(c, gin.H{
		"email":             invite.Email,
		"projectId":         invite.ProjectID,
		"type":              invite.Type,
		"status":            invite.Status,
		"accessLevel":       invite.Details.AccessLevel,
		"expired":           invite.Expired(now),
		"usable":            invite.Usable(now),
		"needsRegistration": invite.Type == models.InviteProjectAndRegister,
	})
}

// List handles GET /invites?projectId=. Only a project ADMIN or creator may
// review its invites.
func (h *Handler) List(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	tenantID, err := access.RequireTenant(principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	projectID, err := uuid.Parse(c.Query("projectId"))
	if err != nil {
		response.BadRequest(c, "projectId query parameter is required")
		return
	}
	project, err := h.repo.GetProject(c.Request.Context(), tenantID, projectID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "project not found"))
		return
	}
	if project.CreatedBy != principal.UserProfileID {
		if _, err := h.evaluator.RequireProjectAccess(c.Request.Context(), principal, projectID, access.Admin); err != nil {
			response.Error(c, err)
			return
		}
	}

	invites, err := h.repo.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}
	response.OK(c, invites)
}

// AcceptRequest is the body for POST /invites/accept-project-invite.
type AcceptRequest struct {
	Token string `json:"token" binding:"required"`
}

// Accept handles POST /invites/accept-project-invite for logged-in users.
// The invite must target the caller's own email; redemption and the
// resulting grant commit atomically.
func (h *Handler) Accept(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if principal == nil {
		response.Error(c, apperr.Unauthorized("authentication required"))
		return
	}
	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "token is required")
		return
	}

	invite, err := h.repo.GetByToken(c.Request.Context(), req.Token)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "invite not found"))
		return
	}
	if invite.Email != principal.Email {
		response.Error(c, apperr.Forbidden("this invite was issued for a different email address"))
		return
	}
	if !invite.Usable(time.Now()) {
		response.Error(c, apperr.Validation("invite is expired or already accepted"))
		return
	}

	accepted, err := h.repo.Accept(c.Request.Context(), req.Token, principal.UserProfileID)
	if err != nil {
		if errors.Is(err, ErrNotPending) {
			response.Error(c, apperr.Validation("invite is expired or already accepted"))
			return
		}
		response.Error(c, apperr.FromPG(err, ""))
		return
	}
	response.OKMessage(c, accepted, "Invite accepted successfully")
}

// RegisterRequest is the body for POST /invites/add-project-customer-and-register.
type RegisterRequest struct {
	Token    string `json:"token" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// AcceptAndRegister handles POST /invites/add-project-customer-and-register.
// Creates a CLIENT account for the invited email, redeems the invite, and
// returns a logged-in session. Account creation and redemption are one
// transaction.
func (h *Handler) AcceptAndRegister(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "token, name and a password of at least 8 characters are required")
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Error(c, apperr.Internal("failed to hash password"))
		return
	}

	reg, err := h.repo.AcceptAndRegister(c.Request.Context(), req.Token, req.Name, passwordHash)
	if err != nil {
		if errors.Is(err, ErrNotPending) {
			response.Error(c, apperr.Validation("invite is expired or already accepted"))
			return
		}
		response.Error(c, apperr.FromPG(err, "invite not found"))
		return
	}

	session, err := auth.NewSession(c.Request.Context(), h.authRepo, h.jwt, reg.User, reg.Profile)
	if err != nil {
		h.logger.Error("create session", zap.Error(err), zap.String("user_id", reg.User.ID.String()))
		response.Error(c, apperr.Internal("failed to create session"))
		return
	}
	response.Created(c, gin.H{
		"session": session,
		"invite":  reg.Invite,
	}, "Account created and invite accepted")
}
