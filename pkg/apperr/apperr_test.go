package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestConstructorStatuses(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("v"), http.StatusBadRequest},
		{Unauthorized("u"), http.StatusUnauthorized},
		{Forbidden("f"), http.StatusForbidden},
		{NotFound("n"), http.StatusNotFound},
		{Conflict("c"), http.StatusConflict},
		{RateLimit("r"), http.StatusTooManyRequests},
		{Database("d"), http.StatusInternalServerError},
		{Internal("i"), http.StatusInternalServerError},
		{Unavailable("s"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		if tt.err.Status != tt.want {
			t.Errorf("%q: status = %d, want %d", tt.err.Message, tt.err.Status, tt.want)
		}
	}
}

func TestFromPassesTypedErrorsThrough(t *testing.T) {
	orig := NotFound("missing thing")
	got := From(fmt.Errorf("wrapped: %w", orig))
	if got != orig {
		t.Fatalf("expected the original typed error, got %+v", got)
	}
}

func TestFromHidesUntypedErrors(t *testing.T) {
	got := From(errors.New("pq: secret internal detail"))
	if got.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", got.Status)
	}
	if got.Message != "internal server error" {
		t.Fatalf("raw error leaked: %q", got.Message)
	}
}

func TestWithContextDoesNotMutate(t *testing.T) {
	base := Validation("bad input")
	withCtx := base.WithContext(Context{Field: "email", Constraint: "unique"})
	if base.Context != nil {
		t.Fatal("WithContext mutated the receiver")
	}
	if withCtx.Context == nil || withCtx.Context.Field != "email" {
		t.Fatal("context not attached")
	}
}

func TestFromPG(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCtx    string // expected constraint kind, empty for none
	}{
		{"no rows", pgx.ErrNoRows, http.StatusNotFound, ""},
		{"wrapped no rows", fmt.Errorf("get user: %w", pgx.ErrNoRows), http.StatusNotFound, ""},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, http.StatusBadRequest, "unique"},
		{"fk violation", &pgconn.PgError{Code: "23503", ConstraintName: "photos_album_id_fkey"}, http.StatusBadRequest, "foreign_key"},
		{"check violation", &pgconn.PgError{Code: "23514", ConstraintName: "valid_status"}, http.StatusBadRequest, "check"},
		{"connection failure", &pgconn.PgError{Code: "08006"}, http.StatusServiceUnavailable, ""},
		{"other pg error", &pgconn.PgError{Code: "42P01"}, http.StatusInternalServerError, ""},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromPG(tt.err, "not found")
			if got.Status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", got.Status, tt.wantStatus)
			}
			if tt.wantCtx != "" {
				if got.Context == nil || got.Context.Constraint != tt.wantCtx {
					t.Fatalf("context = %+v, want constraint %q", got.Context, tt.wantCtx)
				}
			}
		})
	}
}

func TestFromPGNilAndTyped(t *testing.T) {
	if FromPG(nil, "x") != nil {
		t.Fatal("nil error must translate to nil")
	}
	orig := Forbidden("no access")
	if got := FromPG(orig, "x"); got != orig {
		t.Fatal("typed error must pass through untouched")
	}
}

func TestFromPGNotFoundMessage(t *testing.T) {
	got := FromPG(pgx.ErrNoRows, "project not found")
	if got.Message != "project not found" {
		t.Fatalf("message = %q", got.Message)
	}
}
