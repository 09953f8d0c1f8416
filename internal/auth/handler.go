package auth

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fotofolio/backend/internal/models"
	"github.com/fotofolio/backend/pkg/apperr"
	"github.com/fotofolio/backend/pkg/queue"
	"github.com/fotofolio/backend/pkg/response"
	"github.com/fotofolio/backend/pkg/utils"
)

const verificationTTL = 24 * time.Hour

// Handler handles authentication HTTP endpoints.
type Handler struct {
	repo        *Repository
	jwt         *JWTService
	emails      *queue.Queue
	frontendURL string
	logger      *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwtSvc *JWTService, emails *queue.Queue, frontendURL string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwtSvc, emails: emails, frontendURL: frontendURL, logger: logger}
}

// CheckEmailRequest is the body for POST /auth/check-email.
type CheckEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// CheckEmail handles POST /auth/check-email, the first step of the login
// flow. Known emails prompt for a password; unknown ones get a verification
// email to start signup.
func (h *Handler) CheckEmail(c *gin.Context) {
	var req CheckEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "valid email is required")
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err == nil {
		response.OKMessage(c, gin.H{
			"userExists":       true,
			"requiresPassword": true,
			"user":             user.ToPublic(),
		}, "User found. Password required for login.")
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		response.Error(c, apperr.FromPG(err, "user not found"))
		return
	}

	token := uuid.New().String()
	if err := h.repo.CreateVerification(c.Request.Context(), req.Email, token, models.RoleClient, time.Now().Add(verificationTTL)); err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}
	if err := h.emails.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		Kind:      queue.EmailVerification,
		Recipient: req.Email,
		Token:     token,
		Link:      h.frontendURL + "/verify-email?token=" + token,
		Role:      string(models.RoleClient),
	}); err != nil {
		h.logger.Error("enqueue verification email", zap.Error(err), zap.String("email", req.Email))
	}

	response.OKMessage(c, gin.H{
		"userExists":           false,
		"requiresVerification": true,
		"verificationToken":    token,
	}, "Verification email sent. Please check your inbox.")
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "valid email is required")
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "user with email "+req.Email+" does not exist"))
		return
	}
	if !user.IsVerified {
		response.Error(c, apperr.Validation("user with email "+req.Email+" is not verified"))
		return
	}
	if req.Password == "" {
		response.Error(c, apperr.Validation("password required"))
		return
	}
	if user.Password == "" || !utils.CheckPassword(req.Password, user.Password) {
		response.Error(c, apperr.Validation("invalid email or password"))
		return
	}

	profile, err := h.repo.GetFirstProfile(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "user profile not found"))
		return
	}

	session, err := NewSession(c.Request.Context(), h.repo, h.jwt, user, profile)
	if err != nil {
		h.logger.Error("create session", zap.Error(err), zap.String("user_id", user.ID.String()))
		response.Error(c, apperr.Internal("failed to create session"))
		return
	}
	response.OKMessage(c, session, "Login successful")
}

// VerifyEmailRequest is the body for POST /auth/verify-email.
type VerifyEmailRequest struct {
	Email             string `json:"email" binding:"required,email"`
	Name              string `json:"name" binding:"required"`
	Role              string `json:"role" binding:"required"`
	VerificationToken string `json:"verificationToken" binding:"required"`
	Password          string `json:"password"`
}

// VerifyEmail handles POST /auth/verify-email. Consumes the stored
// verification token and creates the account: user, tenant (ENTERPRISE
// only) and profile in one transaction.
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email, name, role and verificationToken are required")
		return
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		response.BadRequest(c, "role must be ENTERPRISE or CLIENT")
		return
	}

	verification, err := h.repo.ConsumeVerification(c.Request.Context(), req.VerificationToken)
	if err != nil {
		response.Error(c, apperr.Validation("invalid or expired verification token"))
		return
	}
	if verification.Email != req.Email {
		response.Error(c, apperr.Validation("verification token was issued for a different email"))
		return
	}

	passwordHash := ""
	if req.Password != "" {
		passwordHash, err = utils.HashPassword(req.Password)
		if err != nil {
			response.Error(c, apperr.Internal("failed to hash password"))
			return
		}
	}

	signup, err := h.repo.CreateSignup(c.Request.Context(), req.Email, req.Name, passwordHash, role, true)
	if err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}

	if err := h.emails.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
		Kind:          queue.EmailWelcome,
		Recipient:     req.Email,
		RecipientName: req.Name,
		Role:          string(role),
	}); err != nil {
		// Welcome email is best-effort; signup already committed.
		h.logger.Warn("enqueue welcome email", zap.Error(err), zap.String("email", req.Email))
	}

	session, err := NewSession(c.Request.Context(), h.repo, h.jwt, signup.User, signup.Profile)
	if err != nil {
		h.logger.Error("create session", zap.Error(err), zap.String("user_id", signup.User.ID.String()))
		response.Error(c, apperr.Internal("failed to create session"))
		return
	}
	response.OKMessage(c, session, "Email verified and account created")
}

// RefreshRequest is the body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh handles POST /auth/refresh. Validates the stored refresh token and
// issues a new access token for the same principal.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "refresh token required")
		return
	}

	stored, err := h.repo.GetRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil || time.Now().After(stored.ExpiresAt) {
		response.Error(c, apperr.Unauthorized("invalid or expired refresh token"))
		return
	}

	user, err := h.repo.GetUserByID(c.Request.Context(), stored.UserID)
	if err != nil {
		response.Error(c, apperr.Unauthorized("invalid or expired refresh token"))
		return
	}
	profile, err := h.repo.GetFirstProfile(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "user profile not found"))
		return
	}

	access, err := h.jwt.GenerateAccess(&Principal{
		UserID:        user.ID,
		UserProfileID: profile.ID,
		Email:         user.Email,
		Role:          profile.Role,
		TenantID:      profile.TenantID,
	})
	if err != nil {
		response.Error(c, apperr.Internal("failed to generate token"))
		return
	}
	response.OKMessage(c, gin.H{"accessToken": access}, "Token refreshed")
}

// LogoutRequest is the body for POST /auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout handles POST /auth/logout. Deletes the refresh token row; already
// issued access tokens stay valid until natural expiry.
func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		if err := h.repo.DeleteRefreshToken(c.Request.Context(), req.RefreshToken); err != nil {
			h.logger.Warn("delete refresh token", zap.Error(err))
		}
	}
	response.OKMessage(c, nil, "Logged out successfully")
}

// Profile handles GET /auth/profile. Requires bearer auth; the principal in
// context has already been re-resolved from storage by the middleware.
func (h *Handler) Profile(c *gin.Context) {
	principal := c.MustGet("principal").(*Principal)

	user, err := h.repo.GetUserByID(c.Request.Context(), principal.UserID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "user not found"))
		return
	}
	profile, err := h.repo.GetProfileByID(c.Request.Context(), principal.UserProfileID)
	if err != nil {
		response.Error(c, apperr.FromPG(err, "user profile not found"))
		return
	}
	var tenant *models.Tenant
	if profile.TenantID != nil {
		if tenant, err = h.repo.GetTenant(c.Request.Context(), *profile.TenantID); err != nil {
			response.Error(c, apperr.FromPG(err, "tenant not found"))
			return
		}
	}

	response.OK(c, gin.H{
		"user":        user.ToPublic(),
		"userProfile": profile,
		"tenant":      tenant,
	})
}
