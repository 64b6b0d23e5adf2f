package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ganweibatao/DanDan-backend/internal/config"
	"github.com/ganweibatao/DanDan-backend/internal/pkg/middleware"
	"github.com/ganweibatao/DanDan-backend/internal/pkg/router"
	"github.com/ganweibatao/DanDan-backend/internal/rest"
	"github.com/ganweibatao/DanDan-backend/internal/schedule"
	"github.com/ganweibatao/DanDan-backend/internal/service"
	"github.com/ganweibatao/DanDan-backend/internal/store"
	"github.com/ganweibatao/DanDan-backend/internal/vocab"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

func run(ctx context.Context) error {
	slog.Info("starting scheduler service")

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", "error", err)
	}

	cfg := config.FromEnv()
	db, err := store.NewPostgresDB(store.PostgresConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DB:       cfg.DB.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to db: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	migrator, err := migrate.NewWithDatabaseInstance("file://"+cfg.MigrationsDir, cfg.DB.Name, driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pgs := store.NewPostgresStore(db)
	books := vocab.NewCachedProvider(vocab.NewStoreProvider(pgs), vocab.CacheConfig{
		MaxBooks: cfg.BookCacheKeys,
		MaxCost:  cfg.BookCacheCost,
	})

	ladder := schedule.DefaultLadder()
	stages := schedule.DefaultStages()

	api := rest.NewAPI(
		service.NewPlanService(pgs, books),
		service.NewLearningService(pgs, books, ladder),
		service.NewTodayService(pgs, books, ladder),
		service.NewStageService(pgs, stages),
	)

	r := router.New()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	apiRouter := r.SubRouter("/api")
	apiRouter.Use(
		middleware.Recover(),
		middleware.Log(),
		middleware.Auth([]byte(cfg.AuthSecret)),
	)
	apiRouter.Handle("/", api)

	httpSrv := &http.Server{
		Addr:         cfg.Http.ListenAddr,
		IdleTimeout:  cfg.Http.IdleTimeout,
		ReadTimeout:  cfg.Http.ReadTimeout,
		WriteTimeout: cfg.Http.WriteTimeout,
		Handler:      r,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Http.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("scheduler service terminated with error", "error", err)
		os.Exit(1)
	}
}
