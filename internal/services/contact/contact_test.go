package contact_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/sacola-ideias/internal/lib/mailer"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
	"github.com/magabrotheeeer/sacola-ideias/internal/rabbitmq"
	"github.com/magabrotheeeer/sacola-ideias/internal/services/contact"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) CreateContactMessage(ctx context.Context, msg models.ContactMessage) (*models.ContactMessage, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactMessage), args.Error(1)
}

func (m *RepoMock) UpdateContactStatus(ctx context.Context, id int, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, message any) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

type MailerMock struct {
	mock.Mock
}

func (m *MailerMock) Send(email mailer.Email) error {
	args := m.Called(email)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

var input = models.ContactInput{
	Name:    " Ana ",
	Email:   "ana@example.com",
	Subject: "Dúvida",
	Message: "Como exporto minhas ideias?",
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name        string
		input       models.ContactInput
		destination string
		publishErr  error
	}{
		{name: "default destination", input: input, destination: "contato@sacoladeideias.com"},
		{
			name: "custom destination",
			input: func() models.ContactInput {
				in := input
				in.Destination = ptr("suporte@example.com")
				return in
			}(),
			destination: "suporte@example.com",
		},
		{name: "publish failure keeps message", input: input, destination: "contato@sacoladeideias.com", publishErr: errors.New("broker down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			publisher := new(PublisherMock)
			userID := 3

			want := models.ContactMessage{
				UserID:      &userID,
				Name:        "Ana",
				Email:       "ana@example.com",
				Subject:     "Dúvida",
				Message:     "Como exporto minhas ideias?",
				Destination: tt.destination,
				Status:      models.ContactPending,
			}
			saved := want
			saved.ID = 11
			repo.On("CreateContactMessage", mock.Anything, want).Return(&saved, nil).Once()
			publisher.On("Publish", mock.Anything, &saved).Return(tt.publishErr).Once()

			svc := contact.New(repo, publisher, "contato@sacoladeideias.com", newNoopLogger())
			msg, err := svc.Submit(context.Background(), &userID, tt.input)
			require.NoError(t, err)
			assert.Equal(t, 11, msg.ID)
			repo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestSubmit_WithoutPublisher(t *testing.T) {
	repo := new(RepoMock)
	repo.On("CreateContactMessage", mock.Anything, mock.Anything).
		Return(&models.ContactMessage{ID: 1, Status: models.ContactPending}, nil).Once()

	svc := contact.New(repo, nil, "contato@sacoladeideias.com", newNoopLogger())
	msg, err := svc.Submit(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, models.ContactPending, msg.Status)
}

func TestSubmit_RepositoryError(t *testing.T) {
	repo := new(RepoMock)
	publisher := new(PublisherMock)
	repo.On("CreateContactMessage", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

	svc := contact.New(repo, publisher, "contato@sacoladeideias.com", newNoopLogger())
	_, err := svc.Submit(context.Background(), nil, input)
	require.Error(t, err)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestDeliver(t *testing.T) {
	body, err := json.Marshal(models.ContactMessage{
		ID: 7, Name: "Ana", Email: "ana@example.com", Subject: "Dúvida",
		Message: "Olá", Destination: "contato@sacoladeideias.com", Status: models.ContactPending,
	})
	require.NoError(t, err)

	t.Run("sent", func(t *testing.T) {
		repo := new(RepoMock)
		m := new(MailerMock)
		m.On("Send", mock.MatchedBy(func(e mailer.Email) bool {
			return e.To == "contato@sacoladeideias.com" && e.ReplyTo == "ana@example.com" &&
				e.Subject == "[Sacola de Ideias] Dúvida"
		})).Return(nil).Once()
		repo.On("UpdateContactStatus", mock.Anything, 7, models.ContactSent).Return(nil).Once()

		err := contact.NewSender(repo, m, newNoopLogger()).Deliver(context.Background(), body)
		require.NoError(t, err)
		repo.AssertExpectations(t)
		m.AssertExpectations(t)
	})

	t.Run("smtp failure keeps pending", func(t *testing.T) {
		repo := new(RepoMock)
		m := new(MailerMock)
		m.On("Send", mock.Anything).Return(errors.New("smtp down")).Once()

		err := contact.NewSender(repo, m, newNoopLogger()).Deliver(context.Background(), body)
		require.Error(t, err)
		repo.AssertNotCalled(t, "UpdateContactStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("status update failure does not resend", func(t *testing.T) {
		repo := new(RepoMock)
		m := new(MailerMock)
		m.On("Send", mock.Anything).Return(nil).Once()
		repo.On("UpdateContactStatus", mock.Anything, 7, models.ContactSent).Return(errors.New("db down")).Once()

		err := contact.NewSender(repo, m, newNoopLogger()).Deliver(context.Background(), body)
		require.NoError(t, err)
		m.AssertNumberOfCalls(t, "Send", 1)
		repo.AssertExpectations(t)
	})

	t.Run("invalid body is discarded", func(t *testing.T) {
		repo := new(RepoMock)
		m := new(MailerMock)
		err := contact.NewSender(repo, m, newNoopLogger()).Deliver(context.Background(), []byte("{not json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, contact.ErrMalformedMessage)
		assert.ErrorIs(t, err, rabbitmq.ErrDiscard)
		m.AssertNotCalled(t, "Send", mock.Anything)
	})

	t.Run("smtp failure is retryable", func(t *testing.T) {
		m := new(MailerMock)
		m.On("Send", mock.Anything).Return(errors.New("smtp down")).Once()

		err := contact.NewSender(new(RepoMock), m, newNoopLogger()).Deliver(context.Background(), body)
		require.Error(t, err)
		assert.NotErrorIs(t, err, rabbitmq.ErrDiscard)
	})
}
