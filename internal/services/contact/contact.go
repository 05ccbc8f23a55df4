// Package contact сохраняет сообщения обратной связи и доставляет их по почте.
package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/sacola-ideias/internal/lib/mailer"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
	"github.com/magabrotheeeer/sacola-ideias/internal/rabbitmq"
)

// ErrMalformedMessage тело сообщения из очереди не разбирается.
var ErrMalformedMessage = fmt.Errorf("malformed contact message: %w", rabbitmq.ErrDiscard)

// Repository хранилище сообщений.
type Repository interface {
	CreateContactMessage(ctx context.Context, msg models.ContactMessage) (*models.ContactMessage, error)
	UpdateContactStatus(ctx context.Context, id int, status string) error
}

// Publisher ставит сообщение в очередь доставки.
type Publisher interface {
	Publish(ctx context.Context, message any) error
}

// Mailer отправляет письмо.
type Mailer interface {
	Send(email mailer.Email) error
}

// Service прием сообщений обратной связи.
type Service struct {
	repo               Repository
	publisher          Publisher
	defaultDestination string
	log                *slog.Logger
}

// New создает сервис. publisher может быть nil, тогда сообщение только сохраняется.
func New(repo Repository, publisher Publisher, defaultDestination string, log *slog.Logger) *Service {
	return &Service{
		repo:               repo,
		publisher:          publisher,
		defaultDestination: defaultDestination,
		log:                log,
	}
}

// Submit сохраняет сообщение со статусом pendente и публикует его после фиксации.
// Ошибка публикации не отменяет сохранение.
func (s *Service) Submit(ctx context.Context, userID *int, in models.ContactInput) (*models.ContactMessage, error) {
	const op = "contact.Submit"

	destination := s.defaultDestination
	if in.Destination != nil && strings.TrimSpace(*in.Destination) != "" {
		destination = strings.TrimSpace(*in.Destination)
	}

	msg, err := s.repo.CreateContactMessage(ctx, models.ContactMessage{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Subject:     strings.TrimSpace(in.Subject),
		Message:     in.Message,
		Destination: destination,
		Status:      models.ContactPending,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, msg); err != nil {
			s.log.Warn("failed to enqueue contact message",
				slog.String("op", op), slog.Int("contact_id", msg.ID), sl.Err(err))
		}
	}
	return msg, nil
}

// Sender доставляет сообщения из очереди.
type Sender struct {
	repo   Repository
	mailer Mailer
	log    *slog.Logger
}

// NewSender создает обработчик очереди.
func NewSender(repo Repository, m Mailer, log *slog.Logger) *Sender {
	return &Sender{repo: repo, mailer: m, log: log}
}

// Deliver отправляет письмо и помечает сообщение как enviado.
// Ошибка отправки возвращается для повтора брокером. Неразбираемое тело дает
// ErrMalformedMessage. Письмо не отправляется повторно, если после отправки
// не удалось обновить статус: сообщение остается pendente в базе.
func (s *Sender) Deliver(ctx context.Context, body []byte) error {
	const op = "contact.Deliver"

	var msg models.ContactMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%s: %w", op, errors.Join(ErrMalformedMessage, err))
	}

	err := s.mailer.Send(mailer.Email{
		To:      msg.Destination,
		ReplyTo: msg.Email,
		Subject: "[Sacola de Ideias] " + msg.Subject,
		Body: fmt.Sprintf("Nome: %s\nEmail: %s\nAssunto: %s\n\n%s",
			msg.Name, msg.Email, msg.Subject, msg.Message),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateContactStatus(ctx, msg.ID, models.ContactSent); err != nil {
		s.log.Error("contact message sent but status not updated",
			slog.String("op", op), slog.Int("contact_id", msg.ID), sl.Err(err))
		return nil
	}
	s.log.Info("contact message delivered", slog.Int("contact_id", msg.ID), slog.String("to", msg.Destination))
	return nil
}
