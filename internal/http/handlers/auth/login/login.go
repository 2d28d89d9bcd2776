// Package login реализует HTTP-обработчик входа по email и паролю.
//
// При успехе возвращает JWT и данные пользователя. Неверный пароль и
// неизвестный email дают одинаковый ответ 401.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/portfolio/internal/http/response"
	"github.com/magabrotheeeer/portfolio/internal/lib/apperr"
	"github.com/magabrotheeeer/portfolio/internal/lib/metrics"
	"github.com/magabrotheeeer/portfolio/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio/internal/models"
	authservice "github.com/magabrotheeeer/portfolio/internal/services/auth"
)

// Request — входные данные для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email" example:"admin@example.com"`
	Password string `json:"password" validate:"required" example:"admin123"`
}

// Response — тело успешного ответа.
type Response struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

// Service описывает бизнес-логику входа.
type Service interface {
	Login(ctx context.Context, email, password string) (*authservice.LoginResult, error)
}

// Recorder учитывает исходы входа.
type Recorder interface {
	ObserveLogin(outcome string)
}

// Handler обрабатывает POST /api/auth/login.
type Handler struct {
	log      *slog.Logger
	service  Service
	recorder Recorder
	validate *validator.Validate
}

// New создает новый экземпляр Handler. recorder может быть nil.
func New(log *slog.Logger, service Service, recorder Recorder) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		recorder: recorder,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Вход
// @Description Проверяет email и пароль, возвращает JWT и данные пользователя.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} Response
// @Failure 400 {object} response.ValidationResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if apperr.Is(err, apperr.KindInvalidCredentials) {
			h.observe(metrics.LoginRejected)
		} else {
			h.observe(metrics.LoginError)
		}
		response.FromError(w, r, log, err)
		return
	}
	h.observe(metrics.LoginSuccess)

	log.Info("login success", slog.Int64("user_id", res.User.ID), slog.String("role", res.User.Role))
	response.JSON(w, r, http.StatusOK, Response{Token: res.Token, User: res.User})
}

func (h *Handler) observe(outcome string) {
	if h.recorder != nil {
		h.recorder.ObserveLogin(outcome)
	}
}
