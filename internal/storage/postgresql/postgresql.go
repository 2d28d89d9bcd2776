// Package postgresql реализует хранилище пользователей на PostgreSQL.
//
// Пул соединений создаётся один раз в корне композиции и передаётся
// во все компоненты, которым нужен доступ к БД.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PoolOptions параметры пула соединений.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Storage инкапсулирует пул соединений с PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New открывает пул соединений и проверяет доступность БД.
func New(ctx context.Context, storageConnectionString string, opts PoolOptions) (*Storage, error) {
	const op = "storage.postgresql.New"

	s, err := Open(storageConnectionString, opts)
	if err != nil {
		return nil, err
	}
	if err = s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// Open открывает пул без проверки соединения. sql.DB подключается лениво,
// поэтому сервер может стартовать при недоступной БД.
func Open(storageConnectionString string, opts PoolOptions) (*Storage, error) {
	const op = "storage.postgresql.Open"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return &Storage{DB: db}, nil
}

// Ping проверяет соединение с БД.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает пул.
func (s *Storage) Close() error {
	return s.DB.Close()
}
