// Package read реализует HTTP-обработчик получения идеи по ID.
//
// Handler извлекает ID из URL-параметров и возвращает идею, только если она
// принадлежит текущему пользователю.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/request"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

// Handler обрабатывает запросы на получение идеи по идентификатору.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики
}

// Service описывает интерфейс бизнес-логики чтения идеи.
type Service interface {
	Get(ctx context.Context, ownerID, id int) (*models.Idea, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Идея по ID
// @Tags Ideias
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID идеи"
// @Success 200 {object} models.Idea
// @Failure 404 {object} response.ErrorResponse "Ideia não encontrada"
// @Router /api/ideias/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.idea.read"

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

	res, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		idea.RenderError(w, r, log, err, "Erro ao buscar ideia")
		return
	}

	render.JSON(w, r, response.OKWithData(res))
}
