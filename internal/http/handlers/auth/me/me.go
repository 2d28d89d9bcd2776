// Package me реализует HTTP-обработчик, возвращающий текущего пользователя.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/portfolio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio/internal/http/response"
	"github.com/magabrotheeeer/portfolio/internal/lib/apperr"
	"github.com/magabrotheeeer/portfolio/internal/models"
)

// Response — тело ответа.
type Response struct {
	User models.Identity `json:"user"`
}

// Handler обрабатывает GET /api/auth/me.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} response.ErrorResponse "Нет токена или токен недействителен"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	id, ok := middlewarectx.IdentityFromContext(r.Context())
	if !ok {
		log := h.log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		response.FromError(w, r, log, apperr.E(op, apperr.KindMissingToken, nil))
		return
	}
	response.JSON(w, r, http.StatusOK, Response{User: id})
}
