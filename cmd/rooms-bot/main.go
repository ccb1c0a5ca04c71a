package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/app"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/client"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/config"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/controller/telegram"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/weeks"
	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment, "rooms-bot", cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting rooms bot",
		zap.String("environment", cfg.Environment),
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("reference_year", cfg.ReferenceYear.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiClient := client.NewAPIClient(cfg.APIBaseURL, client.DefaultHTTPClient(cfg.APITimeout))

	var (
		storeOpts []client.StoreOption
		saved     []*model.Timetable
	)
	if cfg.CachePath != "" {
		cache, err := client.OpenSlotCache(cfg.CachePath)
		if err != nil {
			logger.Fatal("Failed to open local cache", zap.String("path", cfg.CachePath), zap.Error(err))
		}
		defer cache.Close()
		storeOpts = append(storeOpts, client.WithPersister(cache))

		if saved, err = cache.LoadAll(); err != nil {
			logger.Warn("Failed to read local cache", zap.Error(err))
		}
	}

	store := client.NewStore(apiClient, logger, storeOpts...)
	if loaded := store.Hydrate(saved); loaded > 0 {
		logger.Info("Restored timetables from local cache", zap.Int("count", loaded))
	}

	resolver := weeks.NewResolver(apiClient)
	engine := client.NewEngine(store, resolver, cfg.ReferenceYear, logger,
		client.WithTickInterval(cfg.ClockInterval))

	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := telegram.NewBotController(b, engine, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Warn("Failed to register bot commands menu", zap.Error(err))
	}

	engineDone := make(chan struct{})
	go func() {
		defer close(engineDone)
		if err := engine.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Engine stopped", zap.Error(err))
		}
	}()

	botController.Start(ctx)
	<-engineDone
	store.Wait()

	logger.Info("Rooms bot stopped")
}
