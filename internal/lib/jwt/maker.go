// Package jwt реализует выпуск и разбор JWT токенов сессии.
//
// Токен подписывается HS256 общим секретом и содержит идентификатор,
// email и роль пользователя, время выпуска, срок действия и jti.
package jwt

import (
	"errors"
	"time"
)

// Ошибки разбора токена.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrEmptySecret  = errors.New("jwt secret is empty")
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	GenerateToken(userID int64, email, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// Option настраивает MakerImpl.
type Option func(*MakerImpl)

// WithClock подменяет источник текущего времени (для выпуска и проверки).
func WithClock(now func() time.Time) Option {
	return func(m *MakerImpl) {
		m.now = now
	}
}

// NewJWTMaker создаёт MakerImpl. Пустой секрет недопустим.
func NewJWTMaker(secretKey string, ttl time.Duration, opts ...Option) (*MakerImpl, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}
	m := &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL возвращает время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
