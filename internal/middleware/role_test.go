package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fotofolio/backend/internal/auth"
	"github.com/fotofolio/backend/internal/models"
)

func newRoleRouter(principal *auth.Principal, roles ...models.Role) *gin.Engine {
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if principal != nil {
			c.Set(PrincipalKey, principal)
		}
		c.Next()
	}, RequireRole(roles...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireRole(t *testing.T) {
	enterprise := &auth.Principal{UserID: uuid.New(), Role: models.RoleEnterprise}
	client := &auth.Principal{UserID: uuid.New(), Role: models.RoleClient}

	tests := []struct {
		name      string
		principal *auth.Principal
		roles     []models.Role
		want      int
	}{
		{"no principal", nil, []models.Role{models.RoleEnterprise}, http.StatusUnauthorized},
		{"matching role", enterprise, []models.Role{models.RoleEnterprise}, http.StatusOK},
		{"wrong role", client, []models.Role{models.RoleEnterprise}, http.StatusForbidden},
		{"any of several", client, []models.Role{models.RoleEnterprise, models.RoleClient}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRoleRouter(tt.principal, tt.roles...)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Fatalf("allow-origin = %q", got)
		}
	})

	t.Run("other origin omitted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("allow-origin = %q, want empty", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("preflight status = %d, want 204", w.Code)
		}
	})
}

func TestCORSWildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q, want *", got)
	}
}
