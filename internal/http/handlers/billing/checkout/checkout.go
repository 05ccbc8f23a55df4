// Package checkout создает сессию оплаты Stripe для перехода на тариф Pro.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/services/billing"
)

// MsgBillingDisabled ответ, когда Stripe не настроен.
const MsgBillingDisabled = "Pagamentos não configurados"

// Service определяет интерфейс создания сессии оплаты.
type Service interface {
	CreateCheckoutSession(ctx context.Context, userID int, email string) (string, error)
}

// Response ссылка на страницу оплаты.
type Response struct {
	URL string `json:"url"`
}

// Handler обрабатывает запросы на создание сессии оплаты.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Создать сессию оплаты
// @Description Создает Stripe Checkout Session для подписки Pro текущего пользователя
// @Tags Stripe
// @Produce json
// @Success 200 {object} Response "Ссылка на оплату"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка Stripe"
// @Failure 503 {object} response.ErrorResponse "Stripe не настроен"
// @Router /api/stripe/checkout-session [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(middlewarectx.MsgTokenInvalid))
		return
	}

	url, err := h.service.CreateCheckoutSession(r.Context(), userID, middlewarectx.EmailFrom(r.Context()))
	switch {
	case errors.Is(err, billing.ErrBillingDisabled):
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error(MsgBillingDisabled))
		return
	case err != nil:
		log.Error("failed to create checkout session", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Erro ao criar sessão de pagamento"))
		return
	}

	log.Info("checkout session created", slog.Int("user_id", userID))
	render.JSON(w, r, response.OKWithData(Response{URL: url}))
}
