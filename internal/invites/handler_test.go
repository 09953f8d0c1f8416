package invites

import (
	"net/http"
	"testing"

	"github.com/fotofolio/backend/internal/models"
	"github.com/fotofolio/backend/pkg/apperr"
)

func TestDuplicateInviteError(t *testing.T) {
	tests := []struct {
		name    string
		status  models.InviteStatus
		message string
	}{
		{"accepted invite", models.InviteAccepted, "User has already accepted this invite"},
		{"pending invite", models.InvitePending, "Invite already pending for this email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := duplicateInviteError(tt.status)
			if got := apperr.StatusOf(err); got != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", got, http.StatusBadRequest)
			}
			if err.Error() != tt.message {
				t.Errorf("message = %q, want %q", err.Error(), tt.message)
			}
		})
	}
}
