package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/app"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/config"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/controller/api"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/repository"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/repository/base"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/service"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/source"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/migrations"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, "timetable-api", cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting timetable API",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("source_base_url", cfg.SourceBaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connector := base.NewConnector(cfg.GetDBDSN())
	defer connector.Close()

	pool, err := connector.Acquire(ctx)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, migrations.FS, ".", logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	migrator.Close()

	provider := source.NewHTTPProvider(
		cfg.SourceBaseURL,
		source.DefaultHTTPClient(cfg.SourceTimeout),
		cfg.SourceRetries,
		logger,
	)
	timetableRepo := repository.NewTimetableRepository(connector)
	timetableService := service.NewTimetableService(provider, timetableRepo, cfg.CatalogTTL, logger)

	scheduler := app.NewScheduler(timetableService, cfg.WarmInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	handler := api.NewHandler(timetableService, cfg.DocumentationURL, logger)
	router := api.NewRouter(handler, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", zap.Error(err))
		}
	}()

	logger.Info("Timetable API listening", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("HTTP server error", zap.Error(err))
	}
}
