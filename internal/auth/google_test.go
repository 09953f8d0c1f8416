package auth

import (
	"net/url"
	"strings"
	"testing"
)

func TestLoginRedirectURL(t *testing.T) {
	s := &Session{AccessToken: "acc.token/+x", RefreshToken: "ref=token"}
	got := loginRedirectURL("https://app.example.com/", s)

	if !strings.HasPrefix(got, "https://app.example.com/auth/callback?") {
		t.Fatalf("loginRedirectURL() = %q, want frontend callback path", got)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	q := u.Query()
	if q.Get("token") != s.AccessToken {
		t.Errorf("token = %q, want %q", q.Get("token"), s.AccessToken)
	}
	if q.Get("refresh") != s.RefreshToken {
		t.Errorf("refresh = %q, want %q", q.Get("refresh"), s.RefreshToken)
	}
}

func TestRoleSelectionURL(t *testing.T) {
	got := roleSelectionURL("https://app.example.com", "tok-123", "new@example.com", "Ada Lovelace")

	if !strings.HasPrefix(got, "https://app.example.com/select-role?") {
		t.Fatalf("roleSelectionURL() = %q, want select-role path", got)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	q := u.Query()
	if q.Get("signupToken") != "tok-123" {
		t.Errorf("signupToken = %q", q.Get("signupToken"))
	}
	if q.Get("email") != "new@example.com" {
		t.Errorf("email = %q", q.Get("email"))
	}
	if q.Get("name") != "Ada Lovelace" {
		t.Errorf("name = %q, want the space to survive encoding", q.Get("name"))
	}
}
