// Package health реализует проверку доступности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/portfolio/internal/http/response"
	"github.com/magabrotheeeer/portfolio/internal/lib/sl"
)

// Response — тело ответа.
type Response struct {
	Status    string `json:"status" example:"ok"`
	Database  string `json:"database,omitempty" example:"ok"`
	Timestamp string `json:"timestamp" example:"2024-01-01T00:00:00Z"`
}

// Pinger проверяет соединение с базой данных.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler обрабатывает GET /api/health.
type Handler struct {
	log *slog.Logger
	db  Pinger
	now func() time.Time
}

// New создает новый экземпляр Handler. db может быть nil.
func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{log: log, db: db, now: time.Now}
}

// ServeHTTP godoc
// @Summary Проверка доступности
// @Description Сервис отвечает 200, даже если база данных недоступна; её состояние в поле database.
// @Tags Health
// @Produce  json
// @Success 200 {object} Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	resp := Response{
		Status:    "ok",
		Timestamp: h.now().UTC().Format(time.RFC3339Nano),
	}
	if h.db != nil {
		resp.Database = "ok"
		if err := h.db.Ping(r.Context()); err != nil {
			h.log.Warn("database ping failed",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				sl.Err(err),
			)
			resp.Database = "unavailable"
		}
	}
	response.JSON(w, r, http.StatusOK, resp)
}
