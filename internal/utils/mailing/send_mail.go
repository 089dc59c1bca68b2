package mailing

import (
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"

	"scandiary/internal/utils"
)

// Mailer sends operator alerts for terminal failures: rejected
// credentials and exhausted submission retries. Optional; Send is a no-op
// when SMTP is not configured.
type Mailer struct {
	cfg utils.Config
}

func NewMailer(cfg utils.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Enabled() bool { return m.cfg.AlertsEnabled() }

func (m *Mailer) Send(subject string, body string) error {
	if !m.Enabled() {
		return nil
	}

	mailer := gomail.NewMessage()
	mailer.SetHeader("From", m.cfg.SMTPAuthEmail)
	mailer.SetHeader("To", m.cfg.AlertEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/plain", body)

	port, err := strconv.Atoi(m.cfg.SMTPPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP port %q: %w", m.cfg.SMTPPort, err)
	}
	dialer := gomail.NewDialer(
		m.cfg.SMTPHost,
		port,
		m.cfg.SMTPAuthEmail,
		m.cfg.SMTPAuthPassword,
	)

	return dialer.DialAndSend(mailer)
}
