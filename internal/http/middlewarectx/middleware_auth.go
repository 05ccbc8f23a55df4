// Package middlewarectx содержит HTTP middleware сервиса: проверку bearer-токена,
// проверку подписки, ограничение частоты запросов и сбор метрик.
//
// JWTMiddleware кладет в контекст идентификатор, email и роль пользователя
// для дальнейшего использования в обработчиках.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/sacola-ideias/internal/http/response"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/jwt"
	"github.com/magabrotheeeer/sacola-ideias/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID ключ для идентификатора пользователя в контексте
	UserID Key = "user_id"
	// Email ключ для email пользователя в контексте
	Email Key = "email"
	// Role ключ для роли пользователя в контексте
	Role Key = "role"
)

// Сообщения ошибок аутентификации.
const (
	MsgTokenMissing = "Token de autenticação não fornecido"
	MsgTokenFormat  = "Formato de token inválido. Use 'Bearer <token>'"
	MsgTokenInvalid = "Token inválido ou expirado"
)

// TokenParser проверяет JWT и возвращает claims.
type TokenParser interface {
	ParseToken(tokenStr string) (*jwt.Claims, error)
}

// UserIDFrom возвращает идентификатор пользователя из контекста.
func UserIDFrom(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(UserID).(int)
	return id, ok && id > 0
}

// EmailFrom возвращает email пользователя из контекста.
func EmailFrom(ctx context.Context) string {
	email, _ := ctx.Value(Email).(string)
	return email
}

// RoleFrom возвращает роль пользователя из контекста.
func RoleFrom(ctx context.Context) string {
	role, _ := ctx.Value(Role).(string)
	return role
}

// WithClaims кладет данные пользователя в контекст.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	ctx = context.WithValue(ctx, UserID, claims.UserID)
	ctx = context.WithValue(ctx, Email, claims.Email)
	return context.WithValue(ctx, Role, claims.Role)
}

// bearerToken разбирает заголовок Authorization. Пустая строка и сообщение
// означают ошибку.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", MsgTokenMissing
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", MsgTokenFormat
	}
	return strings.TrimSpace(token), ""
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет данные пользователя в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			tokenStr, msg := bearerToken(r.Header.Get("Authorization"))
			if msg != "" {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(msg))
				return
			}

			claims, err := parser.ParseToken(tokenStr)
			if err != nil || claims == nil {
				log.Warn("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error(MsgTokenInvalid))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth кладет данные пользователя в контекст, если передан валидный токен.
// Запрос без токена или с невалидным токеном проходит анонимно.
func OptionalAuth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, msg := bearerToken(r.Header.Get("Authorization"))
			if msg == "" {
				if claims, err := parser.ParseToken(tokenStr); err == nil && claims != nil {
					r = r.WithContext(WithClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
