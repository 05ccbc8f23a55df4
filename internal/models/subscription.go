package models

import "time"

// Тарифы.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// Статусы подписки.
const (
	StatusTrial  = "trial"
	StatusActive = "ativa"
)

// Subscription строка таблицы assinaturas. Авторитетной считается последняя по id.
type Subscription struct {
	ID                   int
	UserID               int
	Plan                 string
	Status               string
	SearchLimit          int
	EmbeddingLimit       int
	TrialExpiresAt       *time.Time
	StripeSubscriptionID *string
	StripeCustomerID     *string
	PeriodStart          *time.Time
	PeriodEnd            *time.Time
	CreatedAt            time.Time
}

// SubscriptionState состояние, которое пишет вебхук биллинга.
type SubscriptionState struct {
	UserID               int
	Plan                 string
	Status               string
	SearchLimit          int
	EmbeddingLimit       int
	StripeSubscriptionID string
	StripeCustomerID     string
	PeriodStart          *time.Time
	PeriodEnd            *time.Time
}
