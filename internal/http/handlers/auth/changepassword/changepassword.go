// Package changepassword реализует смену пароля текущего пользователя.
package changepassword

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/request"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/services/auth"
)

// Request тело запроса смены пароля.
type Request struct {
	Current string `json:"senha_atual" validate:"required"`
	Next    string `json:"nova_senha" validate:"required"`
}

// Service меняет пароль.
type Service interface {
	ChangePassword(ctx context.Context, userID int, current, next string) error
}

// Handler обработчик POST /api/auth/alterar-senha.
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
// @Summary Смена пароля
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Текущий и новый пароль"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse "Неверный текущий пароль"
// @Router /api/auth/alterar-senha [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.changepassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(middlewarectx.MsgTokenInvalid))
		return
	}

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

	err := h.service.ChangePassword(r.Context(), userID, req.Current, req.Next)
	switch {
	case err == nil:
		log.Info("password changed", sl.UserID(userID))
		render.JSON(w, r, response.OKWithMessage("Senha alterada com sucesso"))
	case errors.Is(err, auth.ErrWeakPassword):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("A nova senha deve ter pelo menos 6 caracteres"))
	case errors.Is(err, auth.ErrOAuthOnlyAccount):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Conta sem senha definida. Use o login com Google."))
	case errors.Is(err, auth.ErrWrongPassword):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Senha atual incorreta"))
	case errors.Is(err, auth.ErrUserNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("Usuário não encontrado"))
	default:
		log.Error("failed to change password", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Erro ao alterar senha"))
	}
}
