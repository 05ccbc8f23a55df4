// Package googlelogin отдает адрес страницы согласия Google.
package googlelogin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/services/auth"
)

// Service строит адрес авторизации Google.
type Service interface {
	GoogleLoginURL() (string, error)
}

// Response адрес для перехода на Google.
type Response struct {
	URL string `json:"url"`
}

// Handler обработчик GET /api/auth/google/login.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Адрес входа через Google
// @Tags Auth
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} response.ErrorResponse "Google не настроен"
// @Router /api/auth/google/login [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.googlelogin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	url, err := h.service.GoogleLoginURL()
	if err != nil {
		if errors.Is(err, auth.ErrGoogleDisabled) {
			log.Warn("google sign-in is not configured")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Login com Google não configurado"))
			return
		}
		log.Error("failed to build google url", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Erro ao iniciar login com Google"))
		return
	}

	render.JSON(w, r, response.OKWithData(Response{URL: url}))
}
