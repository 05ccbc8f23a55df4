// Package createembedded создает идею с эмбеддингом, вычисленным на стороне клиента.
package createembedded

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

// Service описывает сохранение идеи с готовым эмбеддингом.
type Service interface {
	CreateWithEmbedding(ctx context.Context, ownerID int, in models.IdeaInput, embedding []float32) (*models.Idea, error)
}

// Handler обрабатывает POST /api/ideias/com-embedding.
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
// @Summary Создание идеи с эмбеддингом
// @Tags Ideias
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.IdeaWithEmbedding true "Идея и эмбеддинг"
// @Success 200 {object} models.Idea
// @Failure 400 {object} response.ErrorResponse
// @Router /api/ideias/com-embedding [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.idea.createembedded"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := idea.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.IdeaWithEmbedding
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

	created, err := h.service.CreateWithEmbedding(r.Context(), userID, req.Idea, req.Embedding)
	if err != nil {
		idea.RenderError(w, r, log, err, "Erro ao criar ideia")
		return
	}

	log.Info("idea created with embedding", slog.Int("id", created.ID))
	render.JSON(w, r, response.OKWithData(created))
}
