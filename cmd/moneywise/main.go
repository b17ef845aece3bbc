// Package main запускает HTTP-сервер движка прогрессии.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/moneywise/internal/config"
	"github.com/mmeshcher/moneywise/internal/handler"
	"github.com/mmeshcher/moneywise/internal/middleware"
	"github.com/mmeshcher/moneywise/internal/repository"
	"github.com/mmeshcher/moneywise/internal/service"
	"github.com/mmeshcher/moneywise/internal/store"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	loc, err := cfg.Location()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	mode, err := service.ParseLevelUpMode(cfg.LevelUpMode)
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	backend, err := openBackend(cfg, logger)
	if err != nil {
		sugar.Fatalw("storage initialization error", "driver", cfg.StoreDriver, "error", err.Error())
	}

	st := store.New(backend, logger.Named("store"))
	defer st.Close()

	svc := service.NewService(st, logger.Named("progression"),
		service.WithLocation(loc),
		service.WithLevelUpMode(mode),
	)

	authMiddleware := middleware.NewAuthMiddleware(cfg.APIToken)
	if !authMiddleware.Enabled() {
		sugar.Warn("API token is not configured, progression API is open")
	}
	h := handler.NewHandler(svc, logger, authMiddleware)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Запуск приложения засчитывается как активность дня
	g.Go(func() error {
		updated := svc.CheckDailyStreak(ctx)
		sugar.Infow("startup streak check", "updated", updated)
		return nil
	})

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting moneywise server",
			"addr", cfg.RunAddress,
			"driver", cfg.StoreDriver,
			"level_up_mode", mode,
			"timezone", loc.String(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

func openBackend(cfg *config.Config, logger *zap.Logger) (store.Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		return repository.NewPostgresRepository(cfg.DatabaseURI)
	case config.DriverSQLite:
		return repository.NewSQLiteRepository(cfg.StorePath)
	case config.DriverBadger:
		return repository.NewBadgerRepository(repository.BadgerConfig{
			Path:       cfg.StorePath,
			SyncWrites: true,
			Logger:     logger.Named("badger"),
		})
	case config.DriverMemory:
		return repository.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
