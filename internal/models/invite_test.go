package models

import (
	"testing"
	"time"
)

func TestInviteExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inv := &EmailInvite{ExpiresAt: now.Add(time.Hour)}

	if inv.Expired(now) {
		t.Fatal("invite expiring in an hour must not be expired")
	}
	if !inv.Expired(now.Add(2 * time.Hour)) {
		t.Fatal("invite past its expiry must be expired")
	}
	if inv.Expired(inv.ExpiresAt) {
		t.Fatal("invite exactly at expiry is still valid")
	}
}

func TestInviteUsable(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		status    InviteStatus
		expiresAt time.Time
		want      bool
	}{
		{"pending and live", InvitePending, now.Add(time.Hour), true},
		{"pending but expired", InvitePending, now.Add(-time.Hour), false},
		{"accepted and live", InviteAccepted, now.Add(time.Hour), false},
		{"accepted and expired", InviteAccepted, now.Add(-time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &EmailInvite{Status: tt.status, ExpiresAt: tt.expiresAt}
			if got := inv.Usable(now); got != tt.want {
				t.Fatalf("Usable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleEnterprise.Valid() || !RoleClient.Valid() {
		t.Fatal("known roles must be valid")
	}
	if Role("ADMIN").Valid() || Role("").Valid() {
		t.Fatal("unknown roles must be invalid")
	}
}

func TestProjectStatusValid(t *testing.T) {
	for _, s := range []ProjectStatus{ProjectDraft, ProjectActive, ProjectCompleted, ProjectArchived} {
		if !s.Valid() {
			t.Fatalf("status %s must be valid", s)
		}
	}
	if ProjectStatus("DELETED").Valid() {
		t.Fatal("unknown status must be invalid")
	}
}

func TestUserToPublicStripsSecrets(t *testing.T) {
	u := &User{Email: "a@b.c", Name: "A", Password: "$2a$10$hash", IsVerified: true}
	pub := u.ToPublic()
	if pub.Email != u.Email || pub.Name != u.Name || !pub.IsVerified {
		t.Fatal("public view must carry email, name and verification state")
	}
}
