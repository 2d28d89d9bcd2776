package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/portfolio/internal/http/response"
	"github.com/magabrotheeeer/portfolio/internal/lib/apperr"
	"github.com/magabrotheeeer/portfolio/internal/models"
)

// RequireRole пропускает запрос, только если роль пользователя из контекста
// равна role. Ставится после JWTMiddleware.
func RequireRole(log *slog.Logger, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequireRole"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			id, ok := IdentityFromContext(r.Context())
			if !ok {
				response.FromError(w, r, log, apperr.Msg(op, apperr.KindMissingToken, "no identity in context"))
				return
			}
			if !id.HasRole(role) {
				log.Warn("access denied",
					slog.Int64("user_id", id.ID),
					slog.String("role", id.Role),
					slog.String("required", role),
				)
				response.FromError(w, r, log, apperr.E(op, apperr.KindForbidden, nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly — RequireRole(log, models.RoleAdmin).
func AdminOnly(log *slog.Logger) func(http.Handler) http.Handler {
	return RequireRole(log, models.RoleAdmin)
}
