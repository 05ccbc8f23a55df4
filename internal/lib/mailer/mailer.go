// Package mailer отправляет письма через SMTP с помощью gomail.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/magabrotheeeer/sacola-ideias/internal/config"
)

// Dialer отправляет подготовленные сообщения.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Email письмо в текстовом виде.
type Email struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer отправитель писем.
type Mailer struct {
	dialer Dialer
	from   string
}

// New создает отправителя по настройкам SMTP.
func New(cfg config.SMTP) *Mailer {
	return NewWithDialer(gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass), cfg.SMTPFrom)
}

// NewWithDialer создает отправителя с заданным транспортом.
func NewWithDialer(dialer Dialer, from string) *Mailer {
	return &Mailer{dialer: dialer, from: from}
}

// Send отправляет письмо.
func (m *Mailer) Send(email Email) error {
	const op = "mailer.Send"

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To)
	if email.ReplyTo != "" {
		msg.SetHeader("Reply-To", email.ReplyTo)
	}
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.Body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
