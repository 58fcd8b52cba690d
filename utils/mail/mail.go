// Package mail sends transactional email. Delivery is an external
// collaborator for the booking engine, so everything here sits behind the
// Mailer interface and failures are the caller's to swallow.
package mail

import (
	"fmt"
	"os"
	"strconv"

	gomail "gopkg.in/gomail.v2"

	"github.com/gamio/venue-booking/logger"
)

// Mailer delivers plain-text mail.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer implements Mailer over gomail.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a mailer from SMTP_HOST, SMTP_PORT, SMTP_USER,
// SMTP_PASS and EMAIL_FROM. It returns an error when the host is unset so
// callers can fall back to NoopMailer.
func NewSMTPMailer() (*SMTPMailer, error) {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST not set")
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	user := os.Getenv("SMTP_USER")
	from := os.Getenv("EMAIL_FROM")
	if from == "" {
		from = user
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, os.Getenv("SMTP_PASS")),
		from:   from,
	}, nil
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// NoopMailer drops mail on the floor; used when SMTP is not configured.
type NoopMailer struct{}

func (NoopMailer) Send(to, subject, _ string) error {
	logger.InfoLogger.Infof("Mail delivery disabled, dropping %q to %s", subject, to)
	return nil
}
