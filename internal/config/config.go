// Package config предоставляет структуры и функции для загрузки и проверки конфигурации.
//
// Значения читаются из YAML-файла (CONFIG_PATH), если он задан, и из переменных
// окружения; файл .env в рабочем каталоге подгружается при наличии.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Окружения.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// MinProdSecretLength — минимальная длина секрета подписи в prod.
const MinProdSecretLength = 32

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string          `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string          `yaml:"storage_connection_string" env:"DATABASE_URL"`
	Database                Database        `yaml:"database"`
	HTTPServer              HTTPServer      `yaml:"http_server"`
	JWTToken                JWTToken        `yaml:"jwttoken"`
	Admin                   Admin           `yaml:"admin"`
	Auth                    Auth            `yaml:"auth"`
	RedisConnection         RedisConnection `yaml:"redis_connection"`
	RabbitMQ                RabbitMQ        `yaml:"rabbitmq"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":3000"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Database настройки пула соединений.
type Database struct {
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
	AutoBootstrap   bool          `yaml:"auto_bootstrap" env:"DB_AUTO_BOOTSTRAP" env-default:"false"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_EXPIRE" env-default:"168h"`
}

// Admin учётные данные администратора для первичной инициализации БД
// и для резервного входа.
type Admin struct {
	Email    string `yaml:"email" env:"ADMIN_EMAIL" env-default:"admin@example.com"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

// Auth настройки аутентификации.
type Auth struct {
	// DevFallback разрешает вход по Admin-данным, когда БД недоступна.
	// Запрещён в prod.
	DevFallback bool `yaml:"dev_fallback" env:"AUTH_DEV_FALLBACK" env-default:"false"`
	BcryptCost  int  `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает список отозванных токенов.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT" env-default:"3s"`
}

// RabbitMQ настройки публикации событий аутентификации.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string        `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"portfolio.auth"`
	Retries    int           `yaml:"retries" env:"RABBITMQ_RETRIES" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
}

// Load читает конфигурацию и проверяет её через Validate.
func Load() (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: load .env: %w", op, err)
	}

	var cfg Config
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("%s: config file %s: %w", op, configPath, err)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read env: %w", op, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфигурацию и завершает процесс при ошибке.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Validate отклоняет конфигурацию, с которой процесс не должен стартовать.
func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		errs = append(errs, fmt.Errorf("unknown env %q", c.Env))
	}
	if c.StorageConnectionString == "" {
		errs = append(errs, errors.New("storage connection string (DATABASE_URL) is not set"))
	}
	if c.JWTToken.JWTSecretKey == "" {
		errs = append(errs, errors.New("jwt secret (JWT_SECRET) is not set"))
	} else if c.Env == EnvProd && len(c.JWTToken.JWTSecretKey) < MinProdSecretLength {
		errs = append(errs, fmt.Errorf("jwt secret must be at least %d bytes in prod", MinProdSecretLength))
	}
	if c.JWTToken.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	if c.Auth.DevFallback {
		if c.Env == EnvProd {
			errs = append(errs, errors.New("dev fallback authentication is not allowed in prod"))
		}
		if c.Admin.Email == "" || c.Admin.Password == "" {
			errs = append(errs, errors.New("dev fallback requires admin email and password"))
		}
	}
	return errors.Join(errs...)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func (c *Config) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Env: %s\n", c.Env)
	fmt.Fprintf(&b, "StorageConnectionString: %s\n", mask(c.StorageConnectionString))
	fmt.Fprintf(&b, "Database:\n  MaxOpenConns: %d\n  MaxIdleConns: %d\n  ConnMaxLifetime: %s\n  AutoBootstrap: %t\n",
		c.Database.MaxOpenConns, c.Database.MaxIdleConns, c.Database.ConnMaxLifetime, c.Database.AutoBootstrap)
	fmt.Fprintf(&b, "HTTPServer:\n  Address: %s\n  Timeout: %s\n  IdleTimeout: %s\n",
		c.HTTPServer.AddressHTTP, c.HTTPServer.TimeoutHTTP, c.HTTPServer.IdleTimeout)
	fmt.Fprintf(&b, "JWTToken:\n  JWTSecretKey: %s\n  TokenTTL: %s\n", mask(c.JWTToken.JWTSecretKey), c.JWTToken.TokenTTL)
	fmt.Fprintf(&b, "Admin:\n  Email: %s\n  Password: %s\n", c.Admin.Email, mask(c.Admin.Password))
	fmt.Fprintf(&b, "Auth:\n  DevFallback: %t\n  BcryptCost: %d\n", c.Auth.DevFallback, c.Auth.BcryptCost)
	fmt.Fprintf(&b, "RedisConnection:\n  Addr: %s\n  DB: %d\n", c.RedisConnection.AddressRedis, c.RedisConnection.DB)
	fmt.Fprintf(&b, "RabbitMQ:\n  URL: %s\n  Exchange: %s\n", mask(c.RabbitMQ.URL), c.RabbitMQ.Exchange)
	return b.String()
}
