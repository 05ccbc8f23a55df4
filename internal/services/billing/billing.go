// Package billing создает сессии оплаты Stripe и применяет события вебхука к подпискам.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/magabrotheeeer/sacola-ideias/internal/config"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/metrics"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
	"github.com/magabrotheeeer/sacola-ideias/internal/storage/repository"
)

var (
	// ErrBillingDisabled не задан ключ Stripe или цена тарифа.
	ErrBillingDisabled = errors.New("billing is not configured")
	// ErrWebhookNotConfigured не задан секрет подписи вебхука.
	ErrWebhookNotConfigured = errors.New("webhook secret is not configured")
	// ErrMissingSignature запрос без заголовка Stripe-Signature.
	ErrMissingSignature = errors.New("missing stripe signature")
	// ErrInvalidSignature подпись не прошла проверку.
	ErrInvalidSignature = errors.New("invalid stripe signature")
	// ErrInvalidPayload тело события не разбирается.
	ErrInvalidPayload = errors.New("invalid event payload")
)

// Результаты обработки события для метрик.
const (
	OutcomeApplied    = "applied"
	OutcomeIgnored    = "ignored"
	OutcomeUnresolved = "unresolved"
	OutcomeFailed     = "failed"
)

const checkoutSessionParam = "session_id={CHECKOUT_SESSION_ID}"

// Repository хранилище подписок.
type Repository interface {
	UpsertSubscription(ctx context.Context, state models.SubscriptionState) error
	FindUserIDByStripeCustomer(ctx context.Context, customerID string) (int, error)
}

// CheckoutSessions создает сессии Stripe Checkout.
type CheckoutSessions interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// Service сервис биллинга.
type Service struct {
	repo     Repository
	sessions CheckoutSessions
	cfg      config.Stripe
	plans    config.Plans
	log      *slog.Logger
}

// NewStripeSessions клиент сессий Stripe с собственным ключом, без глобального stripe.Key.
func NewStripeSessions(secretKey string) CheckoutSessions {
	return &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
}

// New создает сервис. sessions может быть nil, тогда оплата отключена.
func New(repo Repository, sessions CheckoutSessions, cfg config.Stripe, plans config.Plans, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		cfg:      cfg,
		plans:    plans,
		log:      log,
	}
}

// Enabled сообщает, можно ли создавать сессии оплаты.
func (s *Service) Enabled() bool {
	return s.sessions != nil && s.cfg.SecretKey != "" && s.cfg.PriceID != ""
}

// successURL добавляет к адресу возврата идентификатор сессии.
func successURL(base string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + checkoutSessionParam
}

// CreateCheckoutSession создает подписочную сессию Checkout и возвращает ее адрес.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID int, email string) (string, error) {
	const op = "billing.CreateCheckoutSession"
	if !s.Enabled() {
		return "", fmt.Errorf("%s: %w", op, ErrBillingDisabled)
	}

	uid := strconv.Itoa(userID)
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(successURL(s.cfg.SuccessURL)),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(uid),
		Metadata: map[string]string{
			"user_id": uid,
			"email":   email,
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"user_id": uid},
		},
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.Context = ctx

	sess, err := s.sessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return sess.URL, nil
}

// HandleWebhook проверяет подпись и применяет событие.
// Неизвестные типы и события без владельца подтверждаются без изменений.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	const op = "billing.HandleWebhook"

	if s.cfg.WebhookSecret == "" {
		return fmt.Errorf("%s: %w", op, ErrWebhookNotConfigured)
	}
	if signature == "" {
		return fmt.Errorf("%s: %w", op, ErrMissingSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidSignature, err)
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("event_id", event.ID),
		slog.String("event_type", string(event.Type)),
	)

	outcome, err := s.apply(ctx, event)
	metrics.WebhookEvent(string(event.Type), outcome)
	if err != nil {
		log.Error("failed to apply event", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("event processed", slog.String("outcome", outcome))
	return nil
}

func (s *Service) apply(ctx context.Context, event stripe.Event) (string, error) {
	eventType := string(event.Type)
	switch {
	case event.Type == "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return OutcomeFailed, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return s.applyCheckout(ctx, &sess, event.Created)
	case strings.HasPrefix(eventType, "customer.subscription."):
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return OutcomeFailed, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		return s.applySubscription(ctx, &sub)
	default:
		return OutcomeIgnored, nil
	}
}

// applyCheckout переводит пользователя на pro после успешной оплаты.
func (s *Service) applyCheckout(ctx context.Context, sess *stripe.CheckoutSession, created int64) (string, error) {
	ref := sess.ClientReferenceID
	if ref == "" {
		ref = sess.Metadata["user_id"]
	}
	userID, ok := parseOwner(ref)
	if !ok {
		return OutcomeUnresolved, nil
	}

	state := models.SubscriptionState{
		UserID:         userID,
		Plan:           models.PlanPro,
		Status:         models.StatusActive,
		SearchLimit:    s.plans.ProSearchLimit,
		EmbeddingLimit: s.plans.ProEmbeddingLimit,
		PeriodStart:    unixTime(created),
	}
	if sess.Subscription != nil {
		state.StripeSubscriptionID = sess.Subscription.ID
	}
	if sess.Customer != nil {
		state.StripeCustomerID = sess.Customer.ID
	}
	return s.upsert(ctx, state)
}

// applySubscription синхронизирует тариф со статусом подписки Stripe.
func (s *Service) applySubscription(ctx context.Context, sub *stripe.Subscription) (string, error) {
	var customerID string
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}

	userID, ok := parseOwner(sub.Metadata["user_id"])
	if !ok && customerID != "" {
		found, err := s.repo.FindUserIDByStripeCustomer(ctx, customerID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return OutcomeFailed, err
		default:
			userID, ok = found, true
		}
	}
	if !ok {
		return OutcomeUnresolved, nil
	}

	plan, status, searchLimit, embeddingLimit := s.mapStatus(sub.Status)
	return s.upsert(ctx, models.SubscriptionState{
		UserID:               userID,
		Plan:                 plan,
		Status:               status,
		SearchLimit:          searchLimit,
		EmbeddingLimit:       embeddingLimit,
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     customerID,
		PeriodStart:          unixTime(sub.CurrentPeriodStart),
		PeriodEnd:            unixTime(sub.CurrentPeriodEnd),
	})
}

func (s *Service) upsert(ctx context.Context, state models.SubscriptionState) (string, error) {
	err := s.repo.UpsertSubscription(ctx, state)
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrInvalidOwner):
		return OutcomeUnresolved, nil
	case err != nil:
		return OutcomeFailed, err
	}
	return OutcomeApplied, nil
}

// mapStatus active и trialing дают pro, остальные статусы возвращают free.
// Статус строки всегда ativa, доступ после пробного периода определяет тариф.
func (s *Service) mapStatus(status stripe.SubscriptionStatus) (plan, rowStatus string, searchLimit, embeddingLimit int) {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return models.PlanPro, models.StatusActive, s.plans.ProSearchLimit, s.plans.ProEmbeddingLimit
	default:
		return models.PlanFree, models.StatusActive, s.plans.FreeSearchLimit, s.plans.FreeEmbeddingLimit
	}
}

func parseOwner(raw string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
