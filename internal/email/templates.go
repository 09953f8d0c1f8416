package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/fotofolio/backend/pkg/queue"
)

// Message is a rendered email ready for delivery.
type Message struct {
	Subject string
	Body    string
}

var (
	inviteExistingTmpl = template.Must(template.New("invite_existing").Parse(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2>You've been invited to {{.ProjectName}}</h2>
  <p>{{.SenderName}} invited you to collaborate on the project <strong>{{.ProjectName}}</strong>.</p>
  <p>You already have an account, so accepting takes one click:</p>
  <p><a href="{{.Link}}" style="background:#111;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none">Accept invite</a></p>
  <p style="color:#666;font-size:13px">This invite expires in 7 days.</p>
</div>`))

	inviteRegisterTmpl = template.Must(template.New("invite_register").Parse(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2>You've been invited to {{.ProjectName}}</h2>
  <p>{{.SenderName}} invited you to collaborate on the project <strong>{{.ProjectName}}</strong>.</p>
  <p>Create your account to get started:</p>
  <p><a href="{{.Link}}" style="background:#111;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none">Create account</a></p>
  <p style="color:#666;font-size:13px">This invite expires in 7 days.</p>
</div>`))

	verificationTmpl = template.Must(template.New("verification").Parse(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2>Verify your email</h2>
  <p>Confirm this email address to finish creating your account:</p>
  <p><a href="{{.Link}}" style="background:#111;color:#fff;padding:10px 18px;border-radius:6px;text-decoration:none">Verify email</a></p>
  <p style="color:#666;font-size:13px">If you didn't request this, you can ignore this message.</p>
</div>`))

	welcomeTmpl = template.Must(template.New("welcome").Parse(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2>Welcome{{if .RecipientName}}, {{.RecipientName}}{{end}}!</h2>
  <p>Your account is ready.{{if eq .Role "ENTERPRISE"}} Your studio workspace has been created; start by adding your first project.{{else}} You'll see projects here as soon as a photographer shares them with you.{{end}}</p>
</div>`))
)

// Render produces the message for an email job payload. Unknown kinds are an
// error so a bad job fails fast instead of sending an empty mail.
func Render(p queue.EmailPayload) (*Message, error) {
	var (
		tmpl    *template.Template
		subject string
	)
	switch p.Kind {
	case queue.EmailInviteExisting:
		tmpl = inviteExistingTmpl
		subject = fmt.Sprintf("%s invited you to %s", p.SenderName, p.ProjectName)
	case queue.EmailInviteRegister:
		tmpl = inviteRegisterTmpl
		subject = fmt.Sprintf("%s invited you to %s", p.SenderName, p.ProjectName)
	case queue.EmailVerification:
		tmpl = verificationTmpl
		subject = "Verify your email address"
	case queue.EmailWelcome:
		tmpl = welcomeTmpl
		subject = "Welcome to Fotofolio"
	default:
		return nil, fmt.Errorf("unknown email kind %q", p.Kind)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("render %s: %w", p.Kind, err)
	}
	return &Message{Subject: subject, Body: buf.String()}, nil
}
