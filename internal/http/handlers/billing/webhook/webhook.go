// Package webhook принимает события Stripe.
package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/services/billing"
)

// SignatureHeader заголовок с подписью Stripe.
const SignatureHeader = "Stripe-Signature"

// maxBodyBytes ограничение Stripe на размер события.
const maxBodyBytes = 65536

// MsgBodyTooLarge ответ на тело больше maxBodyBytes.
const MsgBodyTooLarge = "Payload muito grande"

type Service interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service
}

// Ack подтверждение приема события.
type Ack struct {
	Received bool `json:"received"`
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Вебхук Stripe
// @Description Проверяет подпись и обновляет подписку пользователя
// @Tags Stripe
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Подпись Stripe"
// @Success 200 {object} Ack
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или тело"
// @Failure 413 {object} response.ErrorResponse "Payload muito grande"
// @Failure 500 {object} response.ErrorResponse "Секрет не настроен или ошибка БД"
// @Router /api/stripe/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("webhook body too large", slog.Int64("limit", tooLarge.Limit))
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error(MsgBodyTooLarge))
			return
		}
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Corpo da requisição inválido"))
		return
	}

	err = h.service.HandleWebhook(r.Context(), body, r.Header.Get(SignatureHeader))
	switch {
	case err == nil:
	case errors.Is(err, billing.ErrWebhookNotConfigured):
		log.Error("webhook secret is not configured")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Webhook não configurado"))
		return
	case errors.Is(err, billing.ErrMissingSignature):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Assinatura ausente"))
		return
	case errors.Is(err, billing.ErrInvalidSignature):
		log.Warn("invalid webhook signature", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Assinatura inválida"))
		return
	case errors.Is(err, billing.ErrInvalidPayload):
		log.Warn("invalid webhook payload", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Payload inválido"))
		return
	default:
		log.Error("failed to process webhook event", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Erro ao processar evento"))
		return
	}

	render.JSON(w, r, Ack{Received: true})
}
