package email

import (
	"strings"
	"testing"

	"github.com/fotofolio/backend/pkg/queue"
)

func TestRenderInviteExisting(t *testing.T) {
	msg, err := Render(queue.EmailPayload{
		Kind:        queue.EmailInviteExisting,
		Recipient:   "client@example.com",
		Link:        "https://app.test/invite/accept?token=abc",
		ProjectName: "Sharma Wedding",
		SenderName:  "Asha",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(msg.Subject, "Sharma Wedding") || !strings.Contains(msg.Subject, "Asha") {
		t.Fatalf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "https://app.test/invite/accept?token=abc") {
		t.Fatal("body missing accept link")
	}
	if !strings.Contains(msg.Body, "already have an account") {
		t.Fatal("existing-user variant must not ask for registration")
	}
}

func TestRenderInviteRegister(t *testing.T) {
	msg, err := Render(queue.EmailPayload{
		Kind:        queue.EmailInviteRegister,
		Link:        "https://app.test/register?token=abc",
		ProjectName: "Sharma Wedding",
		SenderName:  "Asha",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(msg.Body, "Create your account") {
		t.Fatal("register variant must prompt account creation")
	}
	if !strings.Contains(msg.Body, "https://app.test/register?token=abc") {
		t.Fatal("body missing register link")
	}
}

func TestRenderVerification(t *testing.T) {
	msg, err := Render(queue.EmailPayload{
		Kind: queue.EmailVerification,
		Link: "https://app.test/verify-email?token=xyz",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(msg.Body, "https://app.test/verify-email?token=xyz") {
		t.Fatal("body missing verification link")
	}
}

func TestRenderWelcomeRoleVariants(t *testing.T) {
	enterprise, err := Render(queue.EmailPayload{
		Kind:          queue.EmailWelcome,
		RecipientName: "Asha",
		Role:          "ENTERPRISE",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(enterprise.Body, "studio workspace") {
		t.Fatal("enterprise welcome must mention the studio workspace")
	}

	client, err := Render(queue.EmailPayload{Kind: queue.EmailWelcome, Role: "CLIENT"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(client.Body, "studio workspace") {
		t.Fatal("client welcome must not mention the studio workspace")
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	msg, err := Render(queue.EmailPayload{
		Kind:        queue.EmailInviteExisting,
		ProjectName: "<script>alert(1)</script>",
		SenderName:  "Asha",
		Link:        "https://app.test/x",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(msg.Body, "<script>") {
		t.Fatal("project name must be escaped")
	}
}

func TestRenderUnknownKind(t *testing.T) {
	if _, err := Render(queue.EmailPayload{Kind: "mystery"}); err == nil {
		t.Fatal("unknown kind must error")
	}
}
