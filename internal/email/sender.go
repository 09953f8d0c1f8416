// Package email renders and delivers transactional mail. Delivery happens
// from the queue worker, never on an API request path.
package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/fotofolio/backend/config"
)

// Sender delivers rendered messages over SMTP.
type Sender struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

// NewSender creates an SMTP sender.
func NewSender(cfg config.EmailConfig, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{cfg: cfg, logger: logger}
}

// Configured reports whether SMTP delivery is set up. Unconfigured senders
// log the message instead, which keeps local development working without a
// mail provider.
func (s *Sender) Configured() bool {
	return s.cfg.SMTPHost != ""
}

// Send delivers one HTML message.
func (s *Sender) Send(to, subject, htmlBody string) error {
	if !s.Configured() {
		s.logger.Info("smtp not configured, skipping delivery",
			zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	from := s.cfg.FromAddress
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", s.cfg.FromName, from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
