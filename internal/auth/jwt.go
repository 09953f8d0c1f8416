package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/fotofolio/backend/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

// Claims holds access-token claims. The profile id pins which of the user's
// profiles the session acts under.
type Claims struct {
	UserID        uuid.UUID  `json:"user_id"`
	UserProfileID uuid.UUID  `json:"user_profile_id"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	TenantID      *uuid.UUID `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts verified claims into a principal.
func (c *Claims) Principal() *Principal {
	return &Principal{
		UserID:        c.UserID,
		UserProfileID: c.UserProfileID,
		Email:         c.Email,
		Role:          models.Role(c.Role),
		TenantID:      c.TenantID,
	}
}

// JWTService issues and validates access tokens and generates opaque refresh
// tokens. Access tokens are stateless signed claims; refresh tokens are
// persisted server-side and revocable.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService creates a JWT service.
func NewJWTService(secret string, accessExpireMin, refreshExpireHours int) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessExpireMin) * time.Minute,
		refreshTTL: time.Duration(refreshExpireHours) * time.Hour,
	}
}

// GenerateAccess creates a signed access token for the principal.
func (s *JWTService) GenerateAccess(p *Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:        p.UserID,
		UserProfileID: p.UserProfileID,
		Email:         p.Email,
		Role:          string(p.Role),
		TenantID:      p.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// GenerateRefresh returns a new opaque refresh token string.
func (s *JWTService) GenerateRefresh() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// RefreshTTL returns the refresh-token lifetime.
func (s *JWTService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// Validate parses and validates an access token, returning claims or error.
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
