package config_test

import (
	"testing"
	"time"

	"github.com/ganweibatao/DanDan-backend/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("AUTH_SECRET", "supersecret")
	t.Setenv("BOOK_CACHE_KEYS", "200")
	t.Setenv("BOOK_CACHE_COST", "300")
	t.Setenv("MIGRATIONS_DIR", "/srv/migrations")
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("HTTP_LISTEN_ADDR", ":9090")
	t.Setenv("HTTP_IDLE_TIMEOUT", "70s")
	t.Setenv("HTTP_READ_TIMEOUT", "40s")
	t.Setenv("HTTP_WRITE_TIMEOUT", "50s")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "15s")

	cfg := config.FromEnv()

	assert.Equal(t, "supersecret", cfg.AuthSecret)
	assert.Equal(t, int64(200), cfg.BookCacheKeys)
	assert.Equal(t, int64(300), cfg.BookCacheCost)
	assert.Equal(t, "/srv/migrations", cfg.MigrationsDir)
	assert.Equal(t, "db.example.com", cfg.DB.Host)
	assert.Equal(t, "6543", cfg.DB.Port)
	assert.Equal(t, "testuser", cfg.DB.User)
	assert.Equal(t, "testpass", cfg.DB.Password)
	assert.Equal(t, "testdb", cfg.DB.Name)
	assert.Equal(t, ":9090", cfg.Http.ListenAddr)
	assert.Equal(t, 70*time.Second, cfg.Http.IdleTimeout)
	assert.Equal(t, 40*time.Second, cfg.Http.ReadTimeout)
	assert.Equal(t, 50*time.Second, cfg.Http.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.Http.ShutdownTimeout)
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "test")
	cfg := config.FromEnv()

	assert.Equal(t, "test", cfg.AuthSecret)
	assert.Equal(t, int64(1000), cfg.BookCacheKeys)
	assert.Equal(t, int64(1000), cfg.BookCacheCost)
	assert.Equal(t, "db/migrations", cfg.MigrationsDir)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "postgres", cfg.DB.User)
	assert.Equal(t, "password", cfg.DB.Password)
	assert.Equal(t, "scheduler", cfg.DB.Name)
	assert.Equal(t, ":8080", cfg.Http.ListenAddr)
	assert.Equal(t, 60*time.Second, cfg.Http.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Http.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Http.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.Http.ShutdownTimeout)
}
