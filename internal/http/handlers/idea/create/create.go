// Package create реализует HTTP-обработчик создания идеи.
//
// Эмбеддинг строится по возможности: при недоступном провайдере идея
// сохраняется без него.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/handlers/idea"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/request"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

// Service описывает бизнес-логику создания идеи.
type Service interface {
	Create(ctx context.Context, ownerID int, in models.IdeaInput) (*models.Idea, error)
}

// Handler обрабатывает POST /api/ideias.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: request.NewValidator()}
}

// ServeHTTP godoc
// @Summary Создание идеи
// @Tags Ideias
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.IdeaInput true "Идея"
// @Success 200 {object} models.Idea
// @Failure 400 {object} response.ErrorResponse
// @Failure 402 {object} response.ErrorResponse "Trial expirado"
// @Router /api/ideias [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.idea.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := idea.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.IdeaInput
	if err := request.DecodeJSON(r, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		idea.RenderBadRequest(w, r, idea.MsgInvalidBody)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	created, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		idea.RenderError(w, r, log, err, "Erro ao criar ideia")
		return
	}

	log.Info("idea created", slog.Int("id", created.ID))
	render.JSON(w, r, response.OKWithData(created))
}
