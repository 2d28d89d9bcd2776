// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков: ошибок, ошибок валидации
// и ответов по категории apperr.
package response

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/portfolio/internal/lib/apperr"
	"github.com/magabrotheeeer/portfolio/internal/lib/sl"
)

// Публичные сообщения об ошибках.
const (
	MsgInvalidBody        = "invalid request body"
	MsgValidationFailed   = "validation failed"
	MsgInvalidCredentials = "invalid credentials"
	MsgMissingToken       = "access token required"
	MsgInvalidToken       = "invalid or expired token"
	MsgForbidden          = "admin access required"
	MsgNotFound           = "not found"
	MsgConflict           = "already exists"
	MsgInternal           = "internal server error"
)

// ErrorResponse — тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error" example:"invalid credentials"`
}

// FieldError — нарушение правила валидации одного поля.
type FieldError struct {
	Field   string `json:"field" example:"email"`
	Message string `json:"message" example:"field email must be a valid email"`
}

// ValidationResponse — тело ответа 400 при ошибке валидации.
type ValidationResponse struct {
	Error  string       `json:"error" example:"validation failed"`
	Errors []FieldError `json:"errors"`
}

// MessageResponse — тело ответа с сообщением.
type MessageResponse struct {
	Message string `json:"message" example:"logged out"`
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// Message возвращает MessageResponse.
func Message(msg string) MessageResponse {
	return MessageResponse{Message: msg}
}

// ValidationError формирует ValidationResponse на основе ошибок валидации.
// Имя поля берётся из json‑тега (см. NewValidator).
func ValidationError(errs validator.ValidationErrors) ValidationResponse {
	fields := make([]FieldError, 0, len(errs))

	for _, err := range errs {
		var msg string
		switch err.ActualTag() {
		case "required":
			msg = fmt.Sprintf("field %s is a required field", err.Field())
		case "email":
			msg = fmt.Sprintf("field %s must be a valid email", err.Field())
		case "min":
			msg = fmt.Sprintf("field %s must be at least %s characters long", err.Field(), err.Param())
		case "max":
			msg = fmt.Sprintf("field %s must be at most %s characters long", err.Field(), err.Param())
		case "oneof":
			msg = fmt.Sprintf("field %s must be one of: %s", err.Field(), err.Param())
		default:
			msg = fmt.Sprintf("field %s is not valid", err.Field())
		}
		fields = append(fields, FieldError{Field: err.Field(), Message: msg})
	}
	return ValidationResponse{
		Error:  MsgValidationFailed,
		Errors: fields,
	}
}

// JSON пишет v с кодом status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// StatusOf возвращает HTTP‑статус и публичное сообщение для ошибки.
//
// KindUserNotFound отдаёт то же тело, что и KindInvalidToken. Для
// KindValidation, KindNotFound и KindConflict используется сообщение из
// ошибки, если оно задано.
func StatusOf(err error) (int, string) {
	kind := apperr.KindOf(err)
	msg := apperr.MessageOf(err)

	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest, orDefault(msg, MsgValidationFailed)
	case apperr.KindInvalidCredentials:
		return http.StatusUnauthorized, MsgInvalidCredentials
	case apperr.KindMissingToken:
		return http.StatusUnauthorized, MsgMissingToken
	case apperr.KindInvalidToken, apperr.KindUserNotFound:
		return http.StatusUnauthorized, MsgInvalidToken
	case apperr.KindForbidden:
		return http.StatusForbidden, MsgForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound, orDefault(msg, MsgNotFound)
	case apperr.KindConflict:
		return http.StatusConflict, orDefault(msg, MsgConflict)
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}

// FromError пишет ответ для ошибки сервиса. Внутренние ошибки логируются
// на уровне Error, остальные на уровне Info.
func FromError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, msg := StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
	} else {
		log.Info("request rejected",
			slog.String("kind", apperr.KindOf(err).String()),
			sl.Err(err),
		)
	}
	JSON(w, r, status, Error(msg))
}

func orDefault(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}
