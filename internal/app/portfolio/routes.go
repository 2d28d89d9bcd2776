package portfolio

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/portfolio/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/portfolio/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/portfolio/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/portfolio/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/portfolio/internal/http/handlers/health"
	"github.com/magabrotheeeer/portfolio/internal/http/handlers/users/list"
	"github.com/magabrotheeeer/portfolio/internal/http/handlers/users/remove"
	"github.com/magabrotheeeer/portfolio/internal/http/handlers/users/setrole"
	"github.com/magabrotheeeer/portfolio/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio/internal/http/response"
	"github.com/magabrotheeeer/portfolio/internal/lib/metrics"
	authservice "github.com/magabrotheeeer/portfolio/internal/services/auth"

	// Спецификация Swagger для /docs.
	_ "github.com/magabrotheeeer/portfolio/docs"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, authService *authservice.Service, db health.Pinger, m *metrics.Metrics) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		m.Middleware,
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.New(logger, db).ServeHTTP)

		r.Route("/auth", func(r chi.Router) {
			// Открытые конечные точки
			r.Post("/login", login.New(logger, authService, m).ServeHTTP)
			r.Post("/register", register.New(logger, authService).ServeHTTP)

			// Группа с JWT аутентификацией
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.JWTMiddleware(authService, logger))
				r.Get("/me", me.New(logger).ServeHTTP)
				r.Post("/logout", logout.New(logger, authService).ServeHTTP)

				// Администрирование пользователей
				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.AdminOnly(logger))
					r.Get("/users", list.New(logger, authService).ServeHTTP)
					r.Patch("/users/{id}/role", setrole.New(logger, authService).ServeHTTP)
					r.Delete("/users/{id}", remove.New(logger, authService).ServeHTTP)
				})
			})
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			response.JSON(w, r, http.StatusNotFound, response.Error("route not found"))
		})
	})

	r.Handle("/metrics", m.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
