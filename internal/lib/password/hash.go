// Package password реализует хеширование и проверку паролей на bcrypt.
//
// Хэш bcrypt самоописателен: в нём хранятся стоимость и соль, поэтому
// проверка не зависит от текущих настроек Hasher.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxBytes — предел длины пароля bcrypt в байтах.
const MaxBytes = 72

var (
	// ErrMismatch возвращается, если пароль не соответствует хэшу.
	ErrMismatch = errors.New("password does not match")
	// ErrTooLong возвращается GetHash для пароля длиннее MaxBytes байт.
	ErrTooLong = errors.New("password exceeds 72 bytes")
)

// Hasher создаёт и проверяет bcrypt‑хэши с заданной стоимостью.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher создаёт Hasher. Стоимость вне допустимого диапазона bcrypt
// заменяется на bcrypt.DefaultCost.
func NewHasher(cost int) (*Hasher, error) {
	const op = "password.NewHasher"
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// Хэш-заглушка той же стоимости: с ним сравнивается пароль, когда
	// пользователь не найден, чтобы время ответа не выдавало наличие email.
	dummy, err := bcrypt.GenerateFromPassword([]byte("portfolio-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Hasher{cost: cost, dummy: dummy}, nil
}

// GetHash принимает пароль пользователя и возвращает его bcrypt‑хэш.
func (h *Hasher) GetHash(password string) (string, error) {
	const op = "password.GetHash"
	if len(password) > MaxBytes {
		return "", fmt.Errorf("%s: %w", op, ErrTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil при совпадении, ErrMismatch при несовпадении и обёрнутую
// ошибку bcrypt, если хэш повреждён.
func (h *Hasher) CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatch
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// CompareDummy тратит на проверку столько же времени, сколько CompareHash,
// и всегда возвращает ErrMismatch.
func (h *Hasher) CompareDummy(externalPassword string) error {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(externalPassword))
	return ErrMismatch
}
