// Package logout реализует HTTP-обработчик выхода: предъявленный токен
// отзывается до окончания срока действия.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/portfolio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio/internal/http/response"
	"github.com/magabrotheeeer/portfolio/internal/lib/apperr"
)

// Service описывает отзыв токена.
type Service interface {
	Logout(ctx context.Context, token string) error
}

// Handler обрабатывает POST /api/auth/logout.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выход
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.MessageResponse
// @Failure 401 {object} response.ErrorResponse "Нет токена или токен недействителен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token, ok := middlewarectx.BearerToken(r)
	if !ok {
		response.FromError(w, r, log, apperr.E(op, apperr.KindMissingToken, nil))
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		response.FromError(w, r, log, err)
		return
	}

	if id, ok := middlewarectx.IdentityFromContext(r.Context()); ok {
		log.Info("user logged out", slog.Int64("user_id", id.ID))
	}
	response.JSON(w, r, http.StatusOK, response.Message("logged out"))
}
