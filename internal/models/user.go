// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и роль.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import (
	"strings"
	"time"
)

// Роли пользователей.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64     // Уникальный числовой идентификатор
	Email        string    // Электронная почта (уникальная, нормализованная)
	PasswordHash string    // bcrypt-хэш пароля
	Role         string    // Роль пользователя, admin или user
	CreatedAt    time.Time // Дата создания
}

// Identity — данные аутентифицированного пользователя, которые middleware
// кладёт в контекст запроса.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Identity возвращает публичные данные пользователя.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

// HasRole сообщает, обладает ли пользователь ролью role.
func (i Identity) HasRole(role string) bool {
	return i.Role == role
}

// ValidRole проверяет, что роль входит в перечисление.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// NormalizeEmail приводит email к каноническому виду для поиска и хранения.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
