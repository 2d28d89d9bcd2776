// Package storage содержит общие ошибки хранилища.
package storage

import "errors"

var (
	// ErrUserNotFound — пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists — пользователь с таким email уже существует.
	ErrUserExists = errors.New("user already exists")
)
