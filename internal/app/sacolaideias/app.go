package sacolaideias

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/sacola-ideias/internal/cache"
	"github.com/magabrotheeeer/sacola-ideias/internal/config"
	"github.com/magabrotheeeer/sacola-ideias/internal/geoip"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/jwt"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/migrations"
	"github.com/magabrotheeeer/sacola-ideias/internal/oauth/google"
	"github.com/magabrotheeeer/sacola-ideias/internal/provider"
	"github.com/magabrotheeeer/sacola-ideias/internal/rabbitmq"
	accessservice "github.com/magabrotheeeer/sacola-ideias/internal/services/access"
	authservice "github.com/magabrotheeeer/sacola-ideias/internal/services/auth"
	"github.com/magabrotheeeer/sacola-ideias/internal/services/billing"
	contactservice "github.com/magabrotheeeer/sacola-ideias/internal/services/contact"
	ideaservice "github.com/magabrotheeeer/sacola-ideias/internal/services/idea"
	reminderservice "github.com/magabrotheeeer/sacola-ideias/internal/services/reminder"
	"github.com/magabrotheeeer/sacola-ideias/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	geo    *geoip.Resolver
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New поднимает обязательные зависимости (PostgreSQL и миграции) и пытается
// подключить необязательные. Недоступные Redis, RabbitMQ и GeoIP только логируются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	version, err := migrations.Run(db.DB, cfg.MigrationsPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("migrations applied", slog.Uint64("version", uint64(version)))

	a := &App{logger: logger, db: db}

	provider.Init(cfg.AI)
	ai := provider.Default()
	if ai == nil {
		logger.Warn("AI provider is not configured, search falls back to text")
	}

	var embeddingCache ideaservice.EmbeddingCache
	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, embedding cache disabled", sl.Err(err))
		} else {
			a.cache = c
			embeddingCache = c
		}
	}

	var publisher contactservice.Publisher
	if cfg.RabbitMQURL != "" {
		if pub, err := a.connectRabbit(cfg); err != nil {
			logger.Warn("rabbitmq unavailable, contact messages are only stored", sl.Err(err))
		} else {
			publisher = pub
		}
	}

	var locator accessservice.Locator
	geo, err := geoip.NewResolver(cfg.GeoIPPath)
	switch {
	case err != nil:
		logger.Warn("geoip database unavailable", sl.Err(err))
	case geo != nil:
		a.geo = geo
		locator = geo
	}

	var googleClient authservice.GoogleClient
	if cfg.GoogleEnabled() {
		googleClient = google.New(cfg.Google)
	}

	var embedder ideaservice.Embedder
	var chat reminderservice.Chatter
	if ai != nil {
		embedder = ai
		chat = ai
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	services := Services{
		Auth:  authservice.New(db, jwtMaker, googleClient, cfg.Plans),
		Ideas: ideaservice.New(db, embedder, embeddingCache, cfg.EmbeddingModel, logger),
		Billing: billing.New(db, billing.NewStripeSessions(cfg.Stripe.SecretKey),
			cfg.Stripe, cfg.Plans, logger),
		Access:        accessservice.New(db, locator, logger),
		Contact:       contactservice.New(db, publisher, cfg.ContactEmail, logger),
		Reminder:      reminderservice.New(chat, logger),
		Tokens:        jwtMaker,
		Subscriptions: db,
		TrialWindow:   cfg.TrialWindow(),
		FrontendURL:   cfg.FrontendURL,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services)

	a.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return a, nil
}

func (a *App) connectRabbit(cfg *config.Config) (*rabbitmq.Publisher, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetContactQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	a.conn, a.ch = conn, ch
	return rabbitmq.NewPublisher(ch, rabbitmq.ContactExchange, rabbitmq.ContactRoutingKey), nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.geo != nil {
		_ = a.geo.Close()
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
