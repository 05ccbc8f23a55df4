// Package sacolaideias собирает HTTP-приложение Sacola de Ideias.
package sacolaideias

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-описания.
	_ "github.com/magabrotheeeer/sacola-ideias/docs"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/access"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/auth/changepassword"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/auth/googlecallback"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/auth/googlelogin"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/billing/checkout"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/contact"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/health"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea/backfill"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea/create"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea/createembedded"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea/list"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea/read"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea/remove"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea/search"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea/setembedding"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea/update"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/reminder"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/middlewarectx"
	accessservice "github.com/magabrotheeeer/sacola-ideias/internal/services/access"
	authservice "github.com/magabrotheeeer/sacola-ideias/internal/services/auth"
	"github.com/magabrotheeeer/sacola-ideias/internal/services/billing"
	contactservice "github.com/magabrotheeeer/sacola-ideias/internal/services/contact"
	ideaservice "github.com/magabrotheeeer/sacola-ideias/internal/services/idea"
	reminderservice "github.com/magabrotheeeer/sacola-ideias/internal/services/reminder"
)

// Ограничение частоты для публичных эндпоинтов, по IP клиента.
const (
	publicRPS   = 1
	publicBurst = 10
)

// Services зависимости маршрутов.
type Services struct {
	Auth          *authservice.Service
	Ideas         *ideaservice.Service
	Billing       *billing.Service
	Access        *accessservice.Service
	Contact       *contactservice.Service
	Reminder      *reminderservice.Service
	Tokens        middlewarectx.TokenParser
	Subscriptions middlewarectx.SubscriptionSource
	TrialWindow   time.Duration
	FrontendURL   string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
			AllowedHeaders: []string{"*"},
		}),
		middlewarectx.Metrics,
	)

	limited := middlewarectx.RateLimitMiddleware(logger, middlewarectx.NewRateLimiter(publicRPS, publicBurst))
	bearer := middlewarectx.JWTMiddleware(s.Tokens, logger)

	r.Get("/", health.New(logger).ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limited).Post("/register", register.New(logger, s.Auth).ServeHTTP)
			r.With(limited).Post("/login", login.New(logger, s.Auth).ServeHTTP)
			r.Get("/google/login", googlelogin.New(logger, s.Auth).ServeHTTP)

			callback := googlecallback.New(logger, s.Auth, s.FrontendURL)
			r.Post("/google/callback", callback.ServeHTTP)
			r.Get("/google/callback", callback.Redirect)

			r.With(bearer).Get("/me", me.New(logger, s.Auth).ServeHTTP)
			r.With(bearer).Post("/alterar-senha", changepassword.New(logger, s.Auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией и проверкой подписки
		r.Route("/ideias", func(r chi.Router) {
			r.Use(bearer)
			r.Use(middlewarectx.EntitlementMiddleware(logger, s.Subscriptions, s.TrialWindow))

			r.Get("/", list.New(logger, s.Ideas).ServeHTTP)
			r.Post("/", create.New(logger, s.Ideas).ServeHTTP)
			r.Post("/com-embedding", createembedded.New(logger, s.Ideas).ServeHTTP)
			r.Post("/buscar", search.New(logger, s.Ideas).ServeHTTP)
			r.Post("/embeddings/backfill", backfill.New(logger, s.Ideas).ServeHTTP)
			r.Get("/{id}", read.New(logger, s.Ideas).ServeHTTP)
			r.Put("/{id}", update.New(logger, s.Ideas).ServeHTTP)
			r.Delete("/{id}", remove.New(logger, s.Ideas).ServeHTTP)
			r.Put("/{id}/embedding", setembedding.New(logger, s.Ideas).ServeHTTP)
		})

		r.Route("/stripe", func(r chi.Router) {
			r.With(bearer).Post("/checkout-session", checkout.New(logger, s.Billing).ServeHTTP)
			// Webhook endpoint (без аутентификации, проверяется подпись)
			r.Post("/webhook", webhook.New(logger, s.Billing).ServeHTTP)
		})

		r.Post("/acessos", access.New(logger, s.Access).ServeHTTP)
		r.With(limited, middlewarectx.OptionalAuth(s.Tokens)).Post("/contato", contact.New(logger, s.Contact).ServeHTTP)
		r.With(limited).Post("/lembrancas/sugerir", reminder.New(logger, s.Reminder).ServeHTTP)
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
