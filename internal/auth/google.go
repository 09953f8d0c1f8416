package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/fotofolio/backend/internal/models"
	"github.com/fotofolio/backend/pkg/apperr"
	"github.com/fotofolio/backend/pkg/response"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleHandler implements Google sign-in. New users finish signup with a
// role selection step before an account is created.
type GoogleHandler struct {
	repo        *Repository
	jwt         *JWTService
	oauth       *oauth2.Config
	frontendURL string
	logger      *zap.Logger
}

// NewGoogleHandler creates a Google sign-in handler.
func NewGoogleHandler(repo *Repository, jwtSvc *JWTService, clientID, clientSecret, redirectURL, frontendURL string, logger *zap.Logger) *GoogleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleHandler{
		repo: repo,
		jwt:  jwtSvc,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// loginRedirectURL is where the browser lands after a successful Google
// login: the frontend's callback page carrying the token pair.
func loginRedirectURL(frontend string, s *Session) string {
	v := url.Values{}
	v.Set("token", s.AccessToken)
	v.Set("refresh", s.RefreshToken)
	return strings.TrimRight(frontend, "/") + "/auth/callback?" + v.Encode()
}

// roleSelectionURL sends a first-time Google user to the frontend's role
// selection page with the signup token that finishes the account.
func roleSelectionURL(frontend, signupToken, email, name string) string {
	v := url.Values{}
	v.Set("signupToken", signupToken)
	v.Set("email", email)
	v.Set("name", name)
	return strings.TrimRight(frontend, "/") + "/select-role?" + v.Encode()
}

type googleUserInfo struct {
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// Redirect handles GET /auth/google. Sends the browser to Google's consent
// screen with a random state cookie.
func (h *GoogleHandler) Redirect(c *gin.Context) {
	state := uuid.New().String()
	c.SetCookie("oauth_state", state, 600, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

// Callback handles GET /auth/google/callback. Exchanges the code, resolves
// the Google profile and redirects the browser back to the frontend: logged
// in with a token pair, or to role selection with a signup token.
func (h *GoogleHandler) Callback(c *gin.Context) {
	state, err := c.Cookie("oauth_state")
	if err != nil || state == "" || c.Query("state") != state {
		response.Error(c, apperr.Unauthorized("invalid oauth state"))
		return
	}
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "missing authorization code")
		return
	}

	token, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("google code exchange failed", zap.Error(err))
		response.Error(c, apperr.Unauthorized("google authentication failed"))
		return
	}

	info, err := h.fetchUserInfo(c, token)
	if err != nil {
		h.logger.Warn("google userinfo fetch failed", zap.Error(err))
		response.Error(c, apperr.Unauthorized("google authentication failed"))
		return
	}
	if info.Email == "" || !info.VerifiedEmail {
		response.Error(c, apperr.Unauthorized("google account email is not verified"))
		return
	}

	user, err := h.repo.GetUserByEmail(c.Request.Context(), info.Email)
	if err == nil {
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
		c.Redirect(http.StatusFound, loginRedirectURL(h.frontendURL, session))
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}

	// First sign-in: stash the verified identity and ask the frontend to
	// collect a role before creating the account.
	signupToken := uuid.New().String()
	if err := h.repo.CreateVerification(c.Request.Context(), info.Email, signupToken, models.RoleClient, time.Now().Add(verificationTTL)); err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}
	c.Redirect(http.StatusFound, roleSelectionURL(h.frontendURL, signupToken, info.Email, info.Name))
}

func (h *GoogleHandler) fetchUserInfo(c *gin.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := h.oauth.Client(c.Request.Context(), token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RoleSelectionRequest is the body for POST /auth/google/role-selection.
type RoleSelectionRequest struct {
	SignupToken string `json:"signupToken" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Role        string `json:"role" binding:"required"`
}

// RoleSelection handles POST /auth/google/role-selection, finishing a Google signup.
// Google verified the email already so no password is stored.
func (h *GoogleHandler) RoleSelection(c *gin.Context) {
	var req RoleSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "signupToken, name and role are required")
		return
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		response.BadRequest(c, "role must be ENTERPRISE or CLIENT")
		return
	}

	verification, err := h.repo.ConsumeVerification(c.Request.Context(), req.SignupToken)
	if err != nil {
		response.Error(c, apperr.Validation("invalid or expired signup token"))
		return
	}

	signup, err := h.repo.CreateSignup(c.Request.Context(), verification.Email, req.Name, "", role, true)
	if err != nil {
		response.Error(c, apperr.FromPG(err, ""))
		return
	}

	session, err := NewSession(c.Request.Context(), h.repo, h.jwt, signup.User, signup.Profile)
	if err != nil {
		h.logger.Error("create session", zap.Error(err), zap.String("user_id", signup.User.ID.String()))
		response.Error(c, apperr.Internal("failed to create session"))
		return
	}
	response.OKMessage(c, session, "Account created")
}
