// Package remove реализует HTTP-обработчик удаления идеи.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/request"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
)

// Service описывает удаление идеи.
type Service interface {
	Delete(ctx context.Context, ownerID, id int) error
}

// Handler обрабатывает DELETE /api/ideias/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление идеи
// @Tags Ideias
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID идеи"
// @Success 200 {object} response.Message
// @Failure 404 {object} response.ErrorResponse "Ideia não encontrada"
// @Router /api/ideias/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.idea.remove"

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

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		idea.RenderError(w, r, log, err, "Erro ao deletar ideia")
		return
	}

	log.Info("idea deleted", slog.Int("id", id))
	render.JSON(w, r, response.OKWithMessage("Ideia deletada com sucesso"))
}
