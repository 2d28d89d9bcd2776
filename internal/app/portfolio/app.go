// Package portfolio собирает HTTP-сервер портфолио: пул БД, сервис
// аутентификации, необязательные Redis и RabbitMQ, маршруты.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/portfolio/internal/bootstrap"
	"github.com/magabrotheeeer/portfolio/internal/cache"
	"github.com/magabrotheeeer/portfolio/internal/config"
	"github.com/magabrotheeeer/portfolio/internal/lib/jwt"
	"github.com/magabrotheeeer/portfolio/internal/lib/metrics"
	"github.com/magabrotheeeer/portfolio/internal/lib/password"
	"github.com/magabrotheeeer/portfolio/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/portfolio/internal/lib/sl"
	authservice "github.com/magabrotheeeer/portfolio/internal/services/auth"
	"github.com/magabrotheeeer/portfolio/internal/storage/postgresql"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP-сервер со всеми зависимостями.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	db      *postgresql.Storage
	closers []io.Closer
}

// New создаёт App по конфигурации.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.portfolio.New"

	app := &App{logger: logger}

	db, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app.db = db

	hasher, err := password.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Database.AutoBootstrap {
		res, err := bootstrap.New(logger, db, hasher).Run(ctx, cfg.StorageConnectionString, cfg.Admin)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Info("database bootstrap finished", slog.String("admin", res.String()))
	}

	jwtMaker, err := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	opts, err := app.optionalBackends(ctx, cfg)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	creds := NewCredentialSource(cfg, db, hasher, logger)
	authService := authservice.NewService(logger, db, creds, hasher, jwtMaker, opts...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, db, metrics.New(reg))

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return app, nil
}

// NewCredentialSource выбирает источник учётных данных. Резервный вход
// включается только флагом AUTH_DEV_FALLBACK, который Validate запрещает в prod.
func NewCredentialSource(cfg *config.Config, users authservice.UserFinder, hasher authservice.PasswordHasher, logger *slog.Logger) authservice.CredentialSource {
	primary := authservice.NewDatabaseBacked(users, hasher)
	if !cfg.Auth.DevFallback {
		return primary
	}
	logger.Warn("fallback authentication is enabled", slog.String("env", cfg.Env))
	return authservice.NewFixedFallback(primary, cfg.Admin.Email, cfg.Admin.Password, logger)
}

// openStorage открывает пул. С резервным входом недоступная БД не мешает старту.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*postgresql.Storage, error) {
	opts := postgresql.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := postgresql.New(ctx, cfg.StorageConnectionString, opts)
	if err == nil {
		return db, nil
	}
	if !cfg.Auth.DevFallback {
		return nil, err
	}
	logger.Warn("database is unavailable, starting in degraded mode", sl.Err(err))
	return postgresql.Open(cfg.StorageConnectionString, opts)
}

// optionalBackends подключает Redis и RabbitMQ, если они настроены.
func (a *App) optionalBackends(ctx context.Context, cfg *config.Config) ([]authservice.Option, error) {
	var opts []authservice.Option

	if cfg.RedisConnection.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, redisCache)
		opts = append(opts, authservice.WithDenylist(redisCache))
		a.logger.Info("token denylist enabled", slog.String("redis", cfg.RedisConnection.AddressRedis))
	} else {
		a.logger.Info("token denylist disabled, logout relies on token expiry")
	}

	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn)
		ch, err := rabbitmq.SetupExchange(conn, cfg.RabbitMQ.Exchange)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, ch)
		opts = append(opts, authservice.WithEvents(rabbitmq.NewPublisher(ch, cfg.RabbitMQ.Exchange)))
		a.logger.Info("auth events enabled", slog.String("exchange", cfg.RabbitMQ.Exchange))
	}

	return opts, nil
}

// Handler возвращает корневой обработчик.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// close освобождает ресурсы в обратном порядке открытия.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", sl.Err(err))
		}
		a.db = nil
	}
}
