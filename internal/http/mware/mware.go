// Package mware содержит middleware для HTTP-сервера.
// Здесь реализована проверка JWT-токена с резолвом аккаунта из хранилища,
// добавление пользователя в контекст запроса и защита от ботов
// с ограничением частоты запросов.
package mware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type ctxKey int

const userKey ctxKey = iota

// UserResolver проверяет токен и возвращает соответствующий ему аккаунт.
type UserResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// WithUser возвращает контекст с установленным аутентифицированным
// пользователем. Используется middleware и тестами обработчиков.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext возвращает аутентифицированного пользователя из контекста
// запроса. Второе значение false, если запрос не прошёл JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// JWTMiddleware возвращает middleware, которое проверяет JWT-токен в заголовке Authorization.
// Логика работы:
//  1. Считывает значение заголовка Authorization.
//  2. Проверяет, что он начинается с "Bearer ".
//  3. Валидирует токен и резолвит аккаунт владельца из хранилища.
//  4. Кладёт пользователя в контекст запроса.
//  5. Передаёт управление следующему обработчику.
func JWTMiddleware(resolver UserResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const op = "mware.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))

				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			user, err := resolver.Resolve(r.Context(), tokenStr)
			if err != nil {
				log.Error("failed to resolve user from token", sl.Err(err))
				status, resp := response.FromError(err)
				render.Status(r, status)
				render.JSON(w, r, resp)

				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
