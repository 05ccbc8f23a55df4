// Package list реализует HTTP-обработчик получения идей текущего пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

// Service описывает бизнес-логику получения списка идей.
type Service interface {
	List(ctx context.Context, ownerID int) ([]models.Idea, error)
}

// Handler обрабатывает GET /api/ideias.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список идей
// @Description Идеи текущего пользователя, новые первыми.
// @Tags Ideias
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Idea
// @Failure 401 {object} response.ErrorResponse
// @Failure 402 {object} response.ErrorResponse "Trial expirado"
// @Router /api/ideias [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.idea.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := idea.RequireUser(w, r)
	if !ok {
		return
	}

	ideas, err := h.service.List(r.Context(), userID)
	if err != nil {
		idea.RenderError(w, r, log, err, "Erro ao listar ideias")
		return
	}
	if ideas == nil {
		ideas = []models.Idea{}
	}

	log.Info("ideas listed", slog.Int("count", len(ideas)))
	render.JSON(w, r, response.OKWithData(ideas))
}
