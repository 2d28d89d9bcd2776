// Package setrole реализует HTTP-обработчик смены роли пользователя.
package setrole

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/portfolio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio/internal/http/response"
	"github.com/magabrotheeeer/portfolio/internal/lib/apperr"
	"github.com/magabrotheeeer/portfolio/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio/internal/models"
)

// Request — новая роль.
type Request struct {
	Role string `json:"role" validate:"required,oneof=admin user" example:"admin"`
}

// Service описывает смену роли.
type Service interface {
	SetRole(ctx context.Context, actor models.Identity, id int64, role string) error
}

// Handler обрабатывает PATCH /api/auth/users/{id}/role.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Смена роли пользователя
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Param request body Request true "Роль"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ValidationResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /auth/users/{id}/role [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.setrole"

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

	var req Request
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error(response.MsgInvalidBody))
		return
	}
	if err = h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.JSON(w, r, http.StatusBadRequest, response.ValidationError(verrs))
			return
		}
		response.FromError(w, r, log, err)
		return
	}

	if err = h.service.SetRole(r.Context(), actor, id, req.Role); err != nil {
		response.FromError(w, r, log, err)
		return
	}

	log.Info("role updated",
		slog.Int64("actor_id", actor.ID),
		slog.Int64("user_id", id),
		slog.String("role", req.Role),
	)
	response.JSON(w, r, http.StatusOK, response.Message("role updated"))
}
