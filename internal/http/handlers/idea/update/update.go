// Package update реализует HTTP-обработчик частичного обновления идеи.
package update

import (
	"context"
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

// Service описывает обновление идеи.
type Service interface {
	Update(ctx context.Context, ownerID, id int, patch models.IdeaPatch) (*models.Idea, error)
}

// Handler обрабатывает PUT /api/ideias/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обновление идеи
// @Description Переданные поля накладываются на существующие.
// @Tags Ideias
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID идеи"
// @Param request body models.IdeaPatch true "Изменения"
// @Success 200 {object} models.Idea
// @Failure 404 {object} response.ErrorResponse "Ideia não encontrada"
// @Router /api/ideias/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.idea.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := idea.RequireUser(w, r)
	if !ok {
		return
	}
	id, err := request.IDParam(r, "id")
	if err != nil {
		idea.RenderBadRequest(w, r, idea.MsgInvalidID)
		return
	}

	var patch models.IdeaPatch
	if err := request.DecodeJSON(r, &patch); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		idea.RenderBadRequest(w, r, idea.MsgInvalidBody)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, id, patch)
	if err != nil {
		idea.RenderError(w, r, log, err, "Erro ao atualizar ideia")
		return
	}

	log.Info("idea updated", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(updated))
}
