package config

import (
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/pkg/env"
)

type Config struct {
	AuthSecret    string
	BookCacheKeys int64
	BookCacheCost int64
	MigrationsDir string
	DB            dbConfig
	Http          httpConfig
}

type dbConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type httpConfig struct {
	ListenAddr      string
	IdleTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func FromEnv() Config {
	return Config{
		AuthSecret:    env.RequireString("AUTH_SECRET"),
		BookCacheKeys: env.Int64("BOOK_CACHE_KEYS", 1000),
		BookCacheCost: env.Int64("BOOK_CACHE_COST", 1000),
		MigrationsDir: env.String("MIGRATIONS_DIR", "db/migrations"),
		DB: dbConfig{
			Host:     env.String("DB_HOST", "localhost"),
			Port:     env.String("DB_PORT", "5432"),
			User:     env.String("DB_USER", "postgres"),
			Password: env.String("DB_PASSWORD", "password"),
			Name:     env.String("DB_NAME", "scheduler"),
		},
		Http: httpConfig{
			ListenAddr:      env.String("HTTP_LISTEN_ADDR", ":8080"),
			IdleTimeout:     env.Duration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			ReadTimeout:     env.Duration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    env.Duration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: env.Duration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
	}
}
