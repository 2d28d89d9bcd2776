// Package middlewarectx содержит HTTP middleware аутентификации и авторизации.
//
// JWTMiddleware проверяет bearer-токен и кладёт в контекст запроса
// models.Identity. RequireRole пропускает дальше только пользователей
// с нужной ролью.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/portfolio/internal/http/response"
	"github.com/magabrotheeeer/portfolio/internal/lib/apperr"
	"github.com/magabrotheeeer/portfolio/internal/models"
)

// Authenticator проверяет токен и возвращает данные пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Identity, error)
}

// JWTMiddleware возвращает middleware, который проверяет JWT в заголовке Authorization.
//
// Нет заголовка или он не вида "Bearer <token>" — 401. Токен не прошёл
// проверку, отозван или пользователь удалён — 401. Ошибка хранилища — 500.
func JWTMiddleware(auth Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := BearerToken(r)
			if !ok {
				response.FromError(w, r, log, apperr.E(op, apperr.KindMissingToken, nil))
				return
			}

			id, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				response.FromError(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), *id)))
		})
	}
}
