package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

const subscriptionColumns = `id, usuario_id, plano, status, limite_buscas, limite_embeddings, trial_expira_em,
	stripe_subscription_id, stripe_customer_id, data_inicio, data_fim, criado_em`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSubscription(ctx context.Context, ex execer, sub models.Subscription) error {
	if sub.UserID <= 0 {
		return ErrInvalidOwner
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO assinaturas (usuario_id, plano, status, limite_buscas, limite_embeddings, trial_expira_em)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sub.UserID, sub.Plan, sub.Status, sub.SearchLimit, sub.EmbeddingLimit, sub.TrialExpiresAt)
	return err
}

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var (
		sub                       models.Subscription
		trialExpires, start, end  sql.NullTime
		stripeSub, stripeCustomer sql.NullString
	)
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.Plan, &sub.Status, &sub.SearchLimit, &sub.EmbeddingLimit,
		&trialExpires, &stripeSub, &stripeCustomer, &start, &end, &sub.CreatedAt); err != nil {
		return nil, err
	}
	sub.TrialExpiresAt = nullTime(trialExpires)
	sub.StripeSubscriptionID = nullString(stripeSub)
	sub.StripeCustomerID = nullString(stripeCustomer)
	sub.PeriodStart = nullTime(start)
	sub.PeriodEnd = nullTime(end)
	return &sub, nil
}

// GetLatestSubscription возвращает авторитетную (последнюю по id) подписку пользователя.
func (s *Storage) GetLatestSubscription(ctx context.Context, userID int) (*models.Subscription, error) {
	const op = "storage.GetLatestSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, `
		SELECT `+subscriptionColumns+`
		FROM assinaturas
		WHERE usuario_id = $1
		ORDER BY id DESC
		LIMIT 1`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// FindUserIDByStripeCustomer ищет владельца по ранее сохраненному stripe_customer_id.
func (s *Storage) FindUserIDByStripeCustomer(ctx context.Context, customerID string) (int, error) {
	const op = "storage.FindUserIDByStripeCustomer"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var userID int
	err := s.DB.QueryRowContext(ctx, `
		SELECT usuario_id
		FROM assinaturas
		WHERE stripe_customer_id = $1
		ORDER BY id DESC
		LIMIT 1`, customerID).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return userID, nil
}

// UpsertSubscription обновляет последнюю подписку пользователя или создает новую.
// Пустые внешние идентификаторы и периоды не затирают сохраненные значения.
func (s *Storage) UpsertSubscription(ctx context.Context, state models.SubscriptionState) error {
	const op = "storage.UpsertSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}
	if state.UserID <= 0 {
		return fmt.Errorf("%s: %w", op, ErrInvalidOwner)
	}

	err := s.withTx(ctx, nil, func(tx *sql.Tx) error {
		// блокируем строку пользователя, чтобы параллельные события не создали дубликат
		var lockedID int
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM usuarios WHERE id = $1 FOR UPDATE`, state.UserID).Scan(&lockedID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		var subID int
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM assinaturas
			WHERE usuario_id = $1
			ORDER BY id DESC
			LIMIT 1`, state.UserID).Scan(&subID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx, `
				INSERT INTO assinaturas (usuario_id, plano, status, limite_buscas, limite_embeddings,
				                         stripe_subscription_id, stripe_customer_id, data_inicio, data_fim)
				VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)`,
				state.UserID, state.Plan, state.Status, state.SearchLimit, state.EmbeddingLimit,
				state.StripeSubscriptionID, state.StripeCustomerID, state.PeriodStart, state.PeriodEnd)
			return err
		case err != nil:
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE assinaturas
			SET plano = $1,
			    status = $2,
			    limite_buscas = $3,
			    limite_embeddings = $4,
			    stripe_subscription_id = COALESCE(NULLIF($5, ''), stripe_subscription_id),
			    stripe_customer_id = COALESCE(NULLIF($6, ''), stripe_customer_id),
			    data_inicio = COALESCE($7, data_inicio),
			    data_fim = COALESCE($8, data_fim)
			WHERE id = $9`,
			state.Plan, state.Status, state.SearchLimit, state.EmbeddingLimit,
			state.StripeSubscriptionID, state.StripeCustomerID, state.PeriodStart, state.PeriodEnd, subID)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
