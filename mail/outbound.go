package mail

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"

	"gopkg.in/gomail.v2"
)

// ErrInvalidAddress is returned when a sender or recipient is not a usable address.
var ErrInvalidAddress = errors.New("invalid email address")

// Outgoing is a plain text email ready to send.
type Outgoing struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender delivers outgoing mail.
type Sender interface {
	Send(ctx context.Context, msg Outgoing) error
}

// ValidateAddress checks that addr parses as a single email address.
func ValidateAddress(addr string) error {
	if _, err := netmail.ParseAddress(addr); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return nil
}

// SMTPConfig holds the relay connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPSender sends mail through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
}

// NewSMTPSender creates a sender for the given relay.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)}
}

func (s *SMTPSender) Send(ctx context.Context, msg Outgoing) error {
	if err := ValidateAddress(msg.From); err != nil {
		return err
	}
	if err := ValidateAddress(msg.To); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}
