package auth

import (
	"context"
	"time"

	"github.com/magabrotheeeer/portfolio/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, email, passwordHash, role string) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, id int64, role string) error
	DeleteUser(ctx context.Context, id int64) error
}

// PasswordHasher создаёт и проверяет хэши паролей.
type PasswordHasher interface {
	GetHash(password string) (string, error)
	CompareHash(originalHash, externalPassword string) error
	CompareDummy(externalPassword string) error
}

// Denylist хранит jti отозванных токенов.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// EventPublisher публикует события аутентификации.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// NoopDenylist используется, когда Redis не настроен: отзыв не сохраняется,
// токены перестают приниматься только по истечении срока.
type NoopDenylist struct{}

// Revoke ничего не делает.
func (NoopDenylist) Revoke(context.Context, string, time.Duration) error { return nil }

// IsRevoked всегда возвращает false.
func (NoopDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }

// NoopPublisher отбрасывает события.
type NoopPublisher struct{}

// Publish ничего не делает.
func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// Маршрутные ключи событий.
const (
	EventUserRegistered  = "user.registered"
	EventUserLoggedIn    = "user.logged_in"
	EventUserRoleChanged = "user.role_changed"
	EventUserDeleted     = "user.deleted"
)

// Event — тело события аутентификации.
type Event struct {
	Type   string    `json:"type"`
	UserID int64     `json:"userId"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`
	At     time.Time `json:"at"`
}
