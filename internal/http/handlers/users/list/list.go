// Package list реализует HTTP-обработчик списка пользователей (только для администратора).
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/portfolio/internal/http/response"
	"github.com/magabrotheeeer/portfolio/internal/models"
)

// Response — тело ответа.
type Response struct {
	Users []models.Identity `json:"users"`
}

// Service описывает получение списка пользователей.
type Service interface {
	ListUsers(ctx context.Context) ([]models.Identity, error)
}

// Handler обрабатывает GET /api/auth/users.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /auth/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		response.FromError(w, r, log, err)
		return
	}

	log.Debug("users listed", slog.Int("count", len(users)))
	response.JSON(w, r, http.StatusOK, Response{Users: users})
}
