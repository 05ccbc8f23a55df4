// Package access принимает записи журнала посещений от фронтенда.
package access

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/request"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	"github.com/magabrotheeeer/sacola-ideias/internal/models"
)

// MsgRecorded ответ на любую принятую запись.
const MsgRecorded = "Acesso registrado"

// Service сохраняет запись; ошибки хранилища он поглощает сам.
type Service interface {
	Record(ctx context.Context, entry models.AccessLog, clientIP string)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: request.NewValidator()}
}

// ServeHTTP godoc
// @Summary Регистрация посещения
// @Description IP берется из запроса, если не передан. Геоданные дополняются по GeoIP.
// @Tags Acessos
// @Accept json
// @Produce json
// @Param request body models.AccessLog true "Посещение"
// @Success 200 {object} response.Message
// @Failure 400 {object} response.ErrorResponse
// @Router /api/acessos [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.access"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var entry models.AccessLog
	if err := request.DecodeJSON(r, &entry); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Corpo da requisição inválido"))
		return
	}
	if err := h.validate.Struct(entry); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	h.service.Record(r.Context(), entry, middlewarectx.ClientIP(r))
	render.JSON(w, r, response.OKWithMessage(MsgRecorded))
}
