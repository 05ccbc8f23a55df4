// Package contact принимает сообщения обратной связи.
package contact

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

// MsgSent ответ на принятое сообщение.
const MsgSent = "Mensagem enviada com sucesso"

type Service interface {
	Submit(ctx context.Context, userID *int, in models.ContactInput) (*models.ContactMessage, error)
}

// Response идентификатор сохраненного сообщения.
type Response struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
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
// @Summary Сообщение обратной связи
// @Description Сохраняет сообщение и ставит письмо в очередь. Токен необязателен.
// @Tags Contato
// @Accept json
// @Produce json
// @Param request body models.ContactInput true "Сообщение"
// @Success 201 {object} Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 429 {object} response.ErrorResponse
// @Router /api/contato [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.contact"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ContactInput
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

	var userID *int
	if id, ok := middlewarectx.UserIDFrom(r.Context()); ok {
		userID = &id
	}

	msg, err := h.service.Submit(r.Context(), userID, req)
	if err != nil {
		log.Error("failed to save contact message", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Erro ao enviar mensagem"))
		return
	}

	log.Info("contact message saved", slog.Int("id", msg.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(Response{ID: msg.ID, Message: MsgSent}))
}
