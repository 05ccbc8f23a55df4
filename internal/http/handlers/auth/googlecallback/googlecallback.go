// Package googlecallback завершает вход через Google.
//
// POST принимает код от фронтенда и возвращает пользователя с токеном.
// GET обслуживает прямой возврат от Google и перенаправляет на фронтенд
// с токеном или кодом ошибки в строке запроса.
package googlecallback

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/request"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
	"github.com/magabrotheeeer/sacola-ideias/internal/services/auth"
)

// Коды ошибок в адресе перенаправления.
const (
	ErrCodeAuthFailed  = "authentication_failed"
	ErrCodeServerError = "server_error"
)

// Request тело POST-запроса.
type Request struct {
	Code        string `json:"code" validate:"required"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

// Service завершает вход через Google.
type Service interface {
	GoogleSignIn(ctx context.Context, code, redirectURI string) (*models.UserResponse, error)
}

// Handler обработчик /api/auth/google/callback.
type Handler struct {
	log         *slog.Logger
	service     Service
	validate    *validator.Validate
	frontendURL string
}

// New создает Handler. frontendURL используется для перенаправления GET-запроса.
func New(log *slog.Logger, service Service, frontendURL string) *Handler {
	return &Handler{
		log:         log,
		service:     service,
		validate:    request.NewValidator(),
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// ServeHTTP godoc
// @Summary Завершение входа через Google
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Код авторизации"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse "Google не подтвердил код"
// @Failure 503 {object} response.ErrorResponse "Google не настроен"
// @Router /api/auth/google/callback [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.googlecallback"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := request.DecodeJSON(r, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Corpo da requisição inválido"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.service.GoogleSignIn(r.Context(), req.Code, req.RedirectURI)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrGoogleDisabled):
			log.Warn("google sign-in is not configured")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("Login com Google não configurado"))
		case errors.Is(err, auth.ErrGoogleAuthFailed):
			log.Info("google rejected the code", sl.Err(err))
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Falha na autenticação com Google"))
		default:
			log.Error("google sign-in failed", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Erro ao autenticar com Google"))
		}
		return
	}

	log.Info("google sign-in success", sl.UserID(user.ID))
	render.JSON(w, r, response.OKWithData(user))
}

// Redirect godoc
// @Summary Возврат от Google
// @Description Перенаправляет на фронтенд с token или error в строке запроса.
// @Tags Auth
// @Param code query string false "Код авторизации"
// @Param error query string false "Ошибка от Google"
// @Success 307
// @Router /api/auth/google/callback [get]
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.googlecallback.redirect"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	if providerErr := q.Get("error"); providerErr != "" {
		log.Info("google returned an error", slog.String("error", providerErr))
		h.redirect(w, r, "error", providerErr)
		return
	}
	code := q.Get("code")
	if code == "" {
		h.redirect(w, r, "error", ErrCodeAuthFailed)
		return
	}

	user, err := h.service.GoogleSignIn(r.Context(), code, "")
	if err != nil {
		if errors.Is(err, auth.ErrGoogleAuthFailed) {
			log.Info("google rejected the code", sl.Err(err))
			h.redirect(w, r, "error", ErrCodeAuthFailed)
			return
		}
		log.Error("google sign-in failed", sl.Err(err))
		h.redirect(w, r, "error", ErrCodeServerError)
		return
	}

	log.Info("google sign-in success", sl.UserID(user.ID))
	h.redirect(w, r, "token", user.Token)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, key, value string) {
	target := h.frontendURL + "/auth/google/callback?" + url.Values{key: {value}}.Encode()
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
