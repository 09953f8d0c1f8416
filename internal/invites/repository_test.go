package invites

import (
	"testing"

	"github.com/google/uuid"

	"github.com/fotofolio/backend/internal/models"
)

func TestPlanRegistration(t *testing.T) {
	existing := &models.User{ID: uuid.New(), Email: "client@example.com", Password: "$2a$10$hash"}
	passwordless := &models.User{ID: uuid.New(), Email: "client@example.com"}
	profile := &models.UserProfile{ID: uuid.New(), UserID: existing.ID, Role: models.RoleClient}

	tests := []struct {
		name         string
		user         *models.User
		profile      *models.UserProfile
		passwordHash string
		want         registrationPlan
	}{
		{
			name:         "fresh email creates user and profile",
			user:         nil,
			passwordHash: "$2a$10$hash",
			want:         registrationPlan{createUser: true, createProfile: true},
		},
		{
			name:         "existing passwordless account gains the password",
			user:         passwordless,
			passwordHash: "$2a$10$hash",
			want:         registrationPlan{setPassword: true, createProfile: true},
		},
		{
			name:         "existing account with password is left alone",
			user:         existing,
			passwordHash: "$2a$10$other",
			want:         registrationPlan{createProfile: true},
		},
		{
			name:    "existing account with profile reuses both",
			user:    existing,
			profile: profile,
			want:    registrationPlan{},
		},
		{
			name:    "passwordless account without a submitted password stays passwordless",
			user:    passwordless,
			profile: profile,
			want:    registrationPlan{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planRegistration(tt.user, tt.profile, tt.passwordHash)
			if got != tt.want {
				t.Errorf("planRegistration() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
