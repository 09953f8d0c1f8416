package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fotofolio/backend/internal/auth"
	"github.com/fotofolio/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubLoader struct {
	principals map[uuid.UUID]*auth.Principal
}

func (s *stubLoader) LoadPrincipal(_ context.Context, userID, profileID uuid.UUID) (*auth.Principal, error) {
	p, ok := s.principals[userID]
	if !ok || p.UserProfileID != profileID {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func newAuthRouter(jwtSvc *auth.JWTService, loader PrincipalLoader) *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTAuth(jwtSvc, loader), func(c *gin.Context) {
		p := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"email": p.Email})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 15, 168)
	principal := &auth.Principal{
		UserID:        uuid.New(),
		UserProfileID: uuid.New(),
		Email:         "a@b.test",
		Role:          models.RoleEnterprise,
	}
	loader := &stubLoader{principals: map[uuid.UUID]*auth.Principal{principal.UserID: principal}}
	router := newAuthRouter(jwtSvc, loader)

	token, err := jwtSvc.GenerateAccess(principal)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"malformed token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
		{"lowercase scheme accepted", "bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestJWTAuthRejectsDeletedAccount(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 15, 168)
	principal := &auth.Principal{UserID: uuid.New(), UserProfileID: uuid.New(), Email: "gone@b.test"}
	token, err := jwtSvc.GenerateAccess(principal)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// Loader knows nothing about the user: account deleted after issue.
	router := newAuthRouter(jwtSvc, &stubLoader{principals: map[uuid.UUID]*auth.Principal{}})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestPrincipalFromWithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if PrincipalFrom(c) != nil {
		t.Fatal("expected nil principal on unauthenticated context")
	}
}
