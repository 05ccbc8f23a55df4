// Package backfill заполняет отсутствующие эмбеддинги идей пакетом.
package backfill

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/request"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

// Service описывает пакетное заполнение эмбеддингов.
type Service interface {
	Backfill(ctx context.Context, ownerID int, req models.BackfillRequest) (*models.BackfillResult, error)
}

// Handler обрабатывает POST /api/ideias/embeddings/backfill.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Пакетное заполнение эмбеддингов
// @Tags Ideias
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BackfillRequest false "Параметры"
// @Success 200 {object} models.BackfillResult
// @Failure 400 {object} response.ErrorResponse "Modelo de embeddings não configurado"
// @Router /api/ideias/embeddings/backfill [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.idea.backfill"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := idea.RequireUser(w, r)
	if !ok {
		return
	}

	// тело необязательно
	var req models.BackfillRequest
	if err := request.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		log.Error("failed to decode request body", sl.Err(err))
		idea.RenderBadRequest(w, r, idea.MsgInvalidBody)
		return
	}

	res, err := h.service.Backfill(r.Context(), userID, req)
	if err != nil {
		idea.RenderError(w, r, log, err, "Erro ao gerar embeddings")
		return
	}

	log.Info("backfill finished", slog.Int("updated", res.Updated), slog.Int("skipped", res.Skipped))
	render.JSON(w, r, response.OKWithData(res))
}
