// Package bootstrap создаёт схему БД и заводит учётную запись администратора.
// Повторный запуск безопасен: существующие таблицы и администратор не трогаются.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/portfolio/internal/config"
	"github.com/magabrotheeeer/portfolio/internal/migrations"
	"github.com/magabrotheeeer/portfolio/internal/models"
)

// SeedResult — итог заведения администратора.
type SeedResult int

const (
	// SeedCreated — администратор создан.
	SeedCreated SeedResult = iota + 1
	// SeedAlreadyExists — пользователь с email администратора уже был.
	SeedAlreadyExists
)

func (r SeedResult) String() string {
	switch r {
	case SeedCreated:
		return "created"
	case SeedAlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// ErrNoAdminPassword — пароль администратора не задан.
var ErrNoAdminPassword = errors.New("admin password (ADMIN_PASSWORD) is not set")

// Seeder создаёт пользователя, если пользователя с таким email ещё нет.
type Seeder interface {
	EnsureUser(ctx context.Context, email, passwordHash, role string) (id int64, created bool, err error)
}

// Hasher хэширует пароль.
type Hasher interface {
	GetHash(password string) (string, error)
}

// Migrator применяет миграции схемы.
type Migrator func(dsn string) error

// Bootstrapper выполняет миграции и заводит администратора.
type Bootstrapper struct {
	log     *slog.Logger
	migrate Migrator
	users   Seeder
	hasher  Hasher
}

// New создаёт Bootstrapper со встроенными миграциями.
func New(log *slog.Logger, users Seeder, hasher Hasher) *Bootstrapper {
	return &Bootstrapper{
		log:     log,
		migrate: migrations.Run,
		users:   users,
		hasher:  hasher,
	}
}

// Run создаёт схему по dsn и заводит администратора admin.
func (b *Bootstrapper) Run(ctx context.Context, dsn string, admin config.Admin) (SeedResult, error) {
	const op = "bootstrap.Run"

	if err := b.migrate(dsn); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	b.log.Info("database schema is up to date")

	return b.SeedAdmin(ctx, admin)
}

// SeedAdmin заводит администратора, если пользователя с его email нет.
// Роль существующего пользователя не меняется.
func (b *Bootstrapper) SeedAdmin(ctx context.Context, admin config.Admin) (SeedResult, error) {
	const op = "bootstrap.SeedAdmin"

	email := models.NormalizeEmail(admin.Email)
	if email == "" {
		return 0, fmt.Errorf("%s: admin email is not set", op)
	}
	if admin.Password == "" {
		return 0, fmt.Errorf("%s: %w", op, ErrNoAdminPassword)
	}

	hash, err := b.hasher.GetHash(admin.Password)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, created, err := b.users.EnsureUser(ctx, email, hash, models.RoleAdmin)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if !created {
		b.log.Info("admin user already exists", slog.String("email", email), slog.Int64("user_id", id))
		return SeedAlreadyExists, nil
	}
	b.log.Info("admin user created", slog.String("email", email), slog.Int64("user_id", id))
	return SeedCreated, nil
}
