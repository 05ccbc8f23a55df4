package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/entitlement"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
	"github.com/magabrotheeeer/sacola-ideias/internal/storage/repository"
)

// MsgTrialExpired ответ 402 при неактивной подписке.
const MsgTrialExpired = "Trial expirado. Ative o plano Pro para continuar."

// SubscriptionSource источник последней подписки пользователя.
type SubscriptionSource interface {
	GetLatestSubscription(ctx context.Context, userID int) (*models.Subscription, error)
}

// EntitlementMiddleware пропускает запрос, только если подписка пользователя активна.
// Администраторы проходят без проверки.
func EntitlementMiddleware(log *slog.Logger, subs SubscriptionSource, trialWindow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.EntitlementMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if entitlement.Bypass(RoleFrom(r.Context())) {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := UserIDFrom(r.Context())
			if !ok {
				log.Warn("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(MsgTokenInvalid))
				return
			}

			sub, err := subs.GetLatestSubscription(r.Context(), userID)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				sub = nil
			case err != nil:
				log.Error("failed to get subscription", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Erro ao verificar assinatura"))
				return
			}

			if !entitlement.IsActive(sub, time.Now(), trialWindow) {
				log.Info("subscription inactive, access denied", slog.Int("user_id", userID))
				render.Status(r, http.StatusPaymentRequired)
				render.JSON(w, r, response.Error(MsgTrialExpired))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
