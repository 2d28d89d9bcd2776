// Package remove реализует HTTP-обработчик удаления пользователя.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/portfolio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio/internal/http/response"
	"github.com/magabrotheeeer/portfolio/internal/lib/apperr"
	"github.com/magabrotheeeer/portfolio/internal/models"
)

// Service описывает удаление пользователя.
type Service interface {
	DeleteUser(ctx context.Context, actor models.Identity, id int64) error
}

// Handler обрабатывает DELETE /api/auth/users/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление пользователя
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /auth/users/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.IdentityFromContext(r.Context())
	if !ok {
		response.FromError(w, r, log, apperr.E(op, apperr.KindMissingToken, nil))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		log.Info("invalid id format", slog.String("id", chi.URLParam(r, "id")))
		response.JSON(w, r, http.StatusBadRequest, response.Error("invalid id"))
		return
	}

	if err = h.service.DeleteUser(r.Context(), actor, id); err != nil {
		response.FromError(w, r, log, err)
		return
	}

	log.Info("user deleted", slog.Int64("actor_id", actor.ID), slog.Int64("user_id", id))
	response.JSON(w, r, http.StatusOK, response.Message("user deleted"))
}
