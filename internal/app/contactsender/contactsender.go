// Package contactsender доставляет сообщения обратной связи из очереди RabbitMQ по почте.
package contactsender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/sacola-ideias/internal/config"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/mailer"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/rabbitmq"
	contactservice "github.com/magabrotheeeer/sacola-ideias/internal/services/contact"
	"github.com/magabrotheeeer/sacola-ideias/internal/storage/repository"
)

type App struct {
	db     *repository.Storage
	conn   *amqp.Connection
	ch     *amqp.Channel
	sender *contactservice.Sender
	logger *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetContactQueues())
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}

	return &App{
		db:     db,
		conn:   conn,
		ch:     ch,
		sender: contactservice.NewSender(db, mailer.New(cfg.SMTP), logger),
		logger: logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.ContactQueue, a.sender.Deliver)
	if err != nil {
		a.logger.Error("failed to start contact queue consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("contact sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
	return nil
}
