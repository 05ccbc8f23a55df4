// Package idea содержит общий для обработчиков идей перевод ошибок сервиса в HTTP-ответы.
// Сами обработчики лежат во вложенных пакетах, по одному на эндпоинт.
package idea

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/middlewarectx"
	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
	ideaservice "github.com/magabrotheeeer/sacola-ideias/internal/services/idea"
)

// Сообщения ответов.
const (
	MsgNotFound            = "Ideia não encontrada"
	MsgInvalidBody         = "Corpo da requisição inválido"
	MsgInvalidID           = "ID inválido"
	MsgProviderUnavailable = "Modelo de embeddings não configurado"
	MsgInvalidEmbedding    = "Embedding inválido: esperado vetor de 1536 dimensões"
)

// RenderError отвечает статусом, соответствующим ошибке сервиса идей.
func RenderError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, ideaservice.ErrIdeaNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(MsgNotFound))
	case errors.Is(err, ideaservice.ErrInvalidEmbedding):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(MsgInvalidEmbedding))
	case errors.Is(err, ideaservice.ErrProviderUnavailable):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(MsgProviderUnavailable))
	default:
		log.Error("idea request failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(fallback))
	}
}

// RequireUser возвращает идентификатор пользователя или отвечает 401.
func RequireUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := middlewarectx.UserIDFrom(r.Context())
	if !ok {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(middlewarectx.MsgTokenInvalid))
	}
	return userID, ok
}

// RenderBadRequest отвечает 400 с сообщением.
func RenderBadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response.Error(msg))
}
