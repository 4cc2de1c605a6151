// Package mailer delivers one-time codes over SMTP.
package mailer

import (
	"fmt"

	"github.com/mkarpushin/store-identity/internal/config"
	"github.com/mkarpushin/store-identity/internal/logger"
	"gopkg.in/gomail.v2"
)

//go:generate mockgen -source=mailer.go -destination=../mock/mailer_mock.go -package=mock

// MailSender delivers a single plain-text message to one recipient.
// Services depend on this interface so tests can capture outgoing mail.
type MailSender interface {
	Send(to, subject, body string) error
}

// Mailer is the SMTP-backed implementation of [MailSender].
type Mailer struct {
	cfg    config.Mail
	dialer *gomail.Dialer
	logger *logger.Logger
}

// NewMailer constructs a [Mailer] from the SMTP settings. The dialer is
// lazy, so construction never touches the network.
func NewMailer(cfg config.Mail, log *logger.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: log,
	}
}

// Send composes and delivers one plain-text message.
func (m *Mailer) Send(to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("no recipient specified")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Err(err).Str("func", "*Mailer.Send").Msg("error: sending mail")
		return fmt.Errorf("error sending mail: %w", err)
	}

	return nil
}
