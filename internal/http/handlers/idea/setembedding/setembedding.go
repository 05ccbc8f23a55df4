// Package setembedding заменяет эмбеддинг идеи текущего пользователя.
package setembedding

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

// Service описывает замену эмбеддинга.
type Service interface {
	SetEmbedding(ctx context.Context, ownerID, id int, embedding []float32) error
}

// Handler обрабатывает PUT /api/ideias/{id}/embedding.
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
// @Summary Замена эмбеддинга идеи
// @Tags Ideias
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID идеи"
// @Param request body models.EmbeddingInput true "Эмбеддинг"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Ideia não encontrada"
// @Router /api/ideias/{id}/embedding [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.idea.setembedding"

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

	var req models.EmbeddingInput
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

	if err := h.service.SetEmbedding(r.Context(), userID, id, req.Embedding); err != nil {
		idea.RenderError(w, r, log, err, "Erro ao atualizar embedding")
		return
	}

	log.Info("embedding updated", slog.Int("id", id))
	render.JSON(w, r, response.OKWithMessage("Embedding atualizado com sucesso"))
}
