package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// Payload ответ корневого эндпоинта.
type Payload struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
	}
}

// ServeHTTP godoc
// @Summary Состояние сервиса
// @Tags Health
// @Produce json
// @Success 200 {object} Payload
// @Router / [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Payload{Message: "Sacola de Ideias API", Status: "online"})
}
