// Команда setup-db создаёт схему БД и заводит администратора.
// Повторный запуск ничего не меняет.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/portfolio/internal/bootstrap"
	"github.com/magabrotheeeer/portfolio/internal/config"
	"github.com/magabrotheeeer/portfolio/internal/lib/password"
	"github.com/magabrotheeeer/portfolio/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio/internal/storage/postgresql"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("database setup failed", sl.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := postgresql.New(ctx, cfg.StorageConnectionString, postgresql.PoolOptions{MaxOpenConns: 2})
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()

	hasher, err := password.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	res, err := bootstrap.New(logger, db, hasher).Run(ctx, cfg.StorageConnectionString, cfg.Admin)
	if err != nil {
		return err
	}

	logger.Info("database setup complete",
		slog.String("admin", res.String()),
		slog.String("admin_email", cfg.Admin.Email),
	)
	return nil
}
