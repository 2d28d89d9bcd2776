package middlewarectx

import (
	"context"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/portfolio/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey — ключ для данных аутентифицированного пользователя.
const IdentityKey Key = "identity"

// WithIdentity кладёт identity в контекст.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFromContext возвращает identity, положенную JWTMiddleware.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(models.Identity)
	return id, ok
}

// BearerToken извлекает токен из заголовка "Authorization: Bearer <token>".
// Схема сравнивается без учёта регистра.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
