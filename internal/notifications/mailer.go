// Package notifications delivers transactional email. Services depend on
// the Mailer interface; the SMTP implementation lives behind it so tests
// and local development never touch a real relay.
package notifications

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/granduer/granduer-backend/pkg/config"
	pkgerrors "github.com/granduer/granduer-backend/pkg/errors"
	"github.com/granduer/granduer-backend/pkg/logger"
)

// Mailer sends one message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer returns an SMTP mailer, or a log-only mailer when no SMTP host
// is configured (local development).
func NewMailer(cfg config.SMTPConfig, logg *logger.Logger) Mailer {
	if cfg.Host == "" {
		return &logMailer{logger: logg}
	}
	return &smtpMailer{cfg: cfg, logger: logg}
}

type smtpMailer struct {
	cfg    config.SMTPConfig
	logger *logger.Logger
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sending mail")
	}

	m.logger.Info(m.logger.WithField(ctx, "to", to), "mail sent")
	return nil
}

// logMailer records the message instead of sending it.
type logMailer struct {
	logger *logger.Logger
}

func (m *logMailer) Send(ctx context.Context, to, subject, _ string) error {
	ctx = m.logger.WithFields(ctx, map[string]any{"to": to, "subject": subject})
	m.logger.Info(ctx, "mail suppressed (no smtp host configured)")
	return nil
}
