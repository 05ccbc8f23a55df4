// Package search реализует семантический поиск идей.
//
// Уровень, на котором найден результат, возвращается в заголовке X-Search-Tier.
package search

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

// TierHeader заголовок с уровнем поиска.
const TierHeader = "X-Search-Tier"

// Service описывает поиск идей.
type Service interface {
	Search(ctx context.Context, ownerID int, req models.SearchRequest) ([]models.SearchResult, string, error)
}

// Handler обрабатывает POST /api/ideias/buscar.
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
// @Summary Поиск идей
// @Description Векторный поиск с запасным текстовым поиском.
// @Tags Ideias
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SearchRequest true "Запрос"
// @Success 200 {array} models.SearchResult
// @Header 200 {string} X-Search-Tier "Уровень поиска"
// @Failure 400 {object} response.ErrorResponse
// @Router /api/ideias/buscar [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.idea.search"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := idea.RequireUser(w, r)
	if !ok {
		return
	}

	var req models.SearchRequest
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

	results, tier, err := h.service.Search(r.Context(), userID, req)
	if err != nil {
		idea.RenderError(w, r, log, err, "Erro ao buscar ideias")
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	log.Info("search finished", slog.String("tier", tier), slog.Int("count", len(results)))
	w.Header().Set(TierHeader, tier)
	render.JSON(w, r, response.OKWithData(results))
}
