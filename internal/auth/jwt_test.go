package auth

import (
	"testing"

	"github.com/google/uuid"

	"github.com/fotofolio/backend/internal/models"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 15, 168)
	tenantID := uuid.New()
	principal := &Principal{
		UserID:        uuid.New(),
		UserProfileID: uuid.New(),
		Email:         "photographer@studio.test",
		Role:          models.RoleEnterprise,
		TenantID:      &tenantID,
	}

	token, err := svc.GenerateAccess(principal)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != principal.UserID {
		t.Fatalf("user id mismatch: %s != %s", claims.UserID, principal.UserID)
	}
	if claims.UserProfileID != principal.UserProfileID {
		t.Fatalf("profile id mismatch: %s != %s", claims.UserProfileID, principal.UserProfileID)
	}
	if claims.Email != principal.Email {
		t.Fatalf("email mismatch: %q != %q", claims.Email, principal.Email)
	}
	if claims.Role != string(models.RoleEnterprise) {
		t.Fatalf("role mismatch: %q", claims.Role)
	}
	if claims.TenantID == nil || *claims.TenantID != tenantID {
		t.Fatal("tenant id missing from claims")
	}

	got := claims.Principal()
	if got.UserID != principal.UserID || got.Role != principal.Role {
		t.Fatal("claims to principal conversion lost fields")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	// Zero-minute lifetime expires the token at issue.
	svc := NewJWTService("test-secret", 0, 168)
	token, err := svc.GenerateAccess(&Principal{UserID: uuid.New(), UserProfileID: uuid.New()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.Validate(token); err == nil {
		t.Fatal("expired token must fail validation")
	}
}

func TestWrongKeyRejected(t *testing.T) {
	issuer := NewJWTService("secret-a", 15, 168)
	verifier := NewJWTService("secret-b", 15, 168)

	token, err := issuer.GenerateAccess(&Principal{UserID: uuid.New(), UserProfileID: uuid.New()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.Validate(token); err == nil {
		t.Fatal("token signed with another key must fail validation")
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := NewJWTService("test-secret", 15, 168)
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Validate(tok); err == nil {
			t.Fatalf("token %q must fail validation", tok)
		}
	}
}

func TestRefreshTokensAreOpaqueAndUnique(t *testing.T) {
	svc := NewJWTService("test-secret", 15, 168)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := svc.GenerateRefresh()
		if err != nil {
			t.Fatalf("generate refresh: %v", err)
		}
		if len(tok) < 40 {
			t.Fatalf("refresh token too short: %d chars", len(tok))
		}
		if seen[tok] {
			t.Fatal("duplicate refresh token generated")
		}
		seen[tok] = true
		if _, err := svc.Validate(tok); err == nil {
			t.Fatal("refresh token must not validate as an access token")
		}
	}
}
