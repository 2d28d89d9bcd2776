// Package register реализует HTTP-обработчик регистрации пользователя.
// Новый пользователь всегда получает роль user.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/portfolio/internal/http/response"
	"github.com/magabrotheeeer/portfolio/internal/lib/password"
	"github.com/magabrotheeeer/portfolio/internal/lib/sl"
)

// Request — входные данные для регистрации.
type Request struct {
	Email    string `json:"email" validate:"required,email,max=255" example:"user@example.com"`
	Password string `json:"password" validate:"required,min=6,max=72" example:"password123"`
}

// Response — тело ответа 201.
type Response struct {
	Message string `json:"message" example:"user registered"`
	UserID  int64  `json:"userId" example:"2"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, email, password string) (int64, error)
}

// Handler обрабатывает POST /api/auth/register.
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
// @Summary Регистрация пользователя
// @Description Создаёт пользователя с ролью user.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} Response
// @Failure 400 {object} response.ValidationResponse "Ошибка валидации"
// @Failure 409 {object} response.ErrorResponse "Пользователь уже существует"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error(response.MsgInvalidBody))
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Info("validation failed", sl.Err(err))
			response.JSON(w, r, http.StatusBadRequest, response.ValidationError(verrs))
			return
		}
		response.FromError(w, r, log, err)
		return
	}
	// max в теге считает символы, bcrypt ограничен байтами.
	if len(req.Password) > password.MaxBytes {
		log.Info("validation failed", slog.Int("password_bytes", len(req.Password)))
		response.JSON(w, r, http.StatusBadRequest, response.ValidationResponse{
			Error: response.MsgValidationFailed,
			Errors: []response.FieldError{{
				Field:   "password",
				Message: fmt.Sprintf("field password must be at most %d bytes long", password.MaxBytes),
			}},
		})
		return
	}

	id, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(w, r, log, err)
		return
	}

	log.Info("user registered", slog.Int64("user_id", id))
	response.JSON(w, r, http.StatusCreated, Response{Message: "user registered", UserID: id})
}
