// Package reminder предлагает варианты напоминаний по свободному тексту.
package reminder

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/request"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
)

type Service interface {
	Suggest(ctx context.Context, text string) []string
}

// Request текст, по которому строятся подсказки.
type Request struct {
	Text string `json:"texto"`
}

// Response список подсказок, возможно пустой.
type Response struct {
	Suggestions []string `json:"sugestoes"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подсказки для напоминаний
// @Tags Lembrancas
// @Accept json
// @Produce json
// @Param request body Request true "Текст"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse
// @Router /api/lembrancas/sugerir [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reminder"

	var req Request
	if err := request.DecodeJSON(r, &req); err != nil {
		h.log.Error("failed to decode request body", slog.String("op", op), sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Corpo da requisição inválido"))
		return
	}

	render.JSON(w, r, response.OKWithData(Response{Suggestions: h.service.Suggest(r.Context(), req.Text)}))
}
