package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/fotofolio/backend/pkg/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/t", handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
	return w
}

func TestOKEnvelope(t *testing.T) {
	w := perform(func(c *gin.Context) { OK(c, gin.H{"k": "v"}) })
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success {
		t.Fatal("success must be true")
	}
	if body.Pagination != nil {
		t.Fatal("pagination must be omitted")
	}
}

func TestPaginatedEnvelope(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Paginated(c, []string{"a"}, NewPagination(2, 10, 35))
	})
	var body Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	p := body.Pagination
	if p == nil || p.Page != 2 || p.Limit != 10 || p.Total != 35 || p.TotalPages != 4 {
		t.Fatalf("pagination = %+v", p)
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total, limit, wantPages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{35, 10, 4},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := NewPagination(1, tt.limit, tt.total).TotalPages; got != tt.wantPages {
			t.Errorf("total=%d limit=%d: pages = %d, want %d", tt.total, tt.limit, got, tt.wantPages)
		}
	}
}

func TestErrorEnvelope(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Error(c, apperr.NotFound("project not found"))
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success {
		t.Fatal("success must be false")
	}
	if body.Error.Message != "project not found" || body.Error.Status != 404 {
		t.Fatalf("error = %+v", body.Error)
	}
	if body.Error.Path != "/t" || body.Error.Method != http.MethodGet {
		t.Fatalf("request info missing: %+v", body.Error)
	}
	if body.Error.Timestamp == "" {
		t.Fatal("timestamp missing")
	}
}

func TestErrorEnvelopeCarriesContext(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Error(c, apperr.Validation("dup").WithContext(apperr.Context{
			Field: "email", Constraint: "unique",
		}))
	})
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Context == nil || body.Error.Context.Field != "email" {
		t.Fatalf("context = %+v", body.Error.Context)
	}
}

func TestErrorHidesUntypedErrors(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Error(c, errors.New("pgx: connection refused to 10.0.0.5"))
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != "internal server error" {
		t.Fatalf("raw error leaked: %q", body.Error.Message)
	}
}

func TestAbortErrorStopsChain(t *testing.T) {
	r := gin.New()
	reached := false
	r.GET("/t", func(c *gin.Context) {
		AbortError(c, apperr.Unauthorized("nope"))
	}, func(c *gin.Context) {
		reached = true
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/t", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if reached {
		t.Fatal("downstream handler ran after abort")
	}
}
