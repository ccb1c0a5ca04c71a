package app

import (
	"context"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"go.uber.org/zap"
)

// CacheWarmer то, что нужно планировщику от сервиса расписаний
type CacheWarmer interface {
	Connect(ctx context.Context) error
	ListEntries(ctx context.Context, year model.CohortYear) ([]model.TimetableEntry, error)
	FetchCached(ctx context.Context, entry model.TimetableEntry) (*model.Timetable, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	warmer   CacheWarmer
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewScheduler создаёт новый планировщик; interval <= 0 отключает прогрев
func NewScheduler(warmer CacheWarmer, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		warmer:   warmer,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Cache warming disabled")
		return
	}
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	go s.runWarmTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runWarmTask периодически прогревает кэш расписаний
func (s *Scheduler) runWarmTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.WarmOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.WarmOnce(ctx)
		case <-s.stopChan:
			s.logger.Info("Cache warm task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Cache warm task cancelled")
			return
		}
	}
}

// WarmOnce загружает в кэш все опубликованные недели всех потоков.
// Ошибки по отдельным неделям логируются и не прерывают прогрев.
func (s *Scheduler) WarmOnce(ctx context.Context) (warmed int) {
	if err := s.warmer.Connect(ctx); err != nil {
		s.logger.Error("Failed to connect before warming", zap.Error(err))
		return 0
	}

	for _, year := range model.AllCohorts() {
		entries, err := s.warmer.ListEntries(ctx, year)
		if err != nil {
			s.logger.Error("Failed to list entries", zap.String("year", year.String()), zap.Error(err))
			continue
		}

		for _, entry := range entries {
			if ctx.Err() != nil {
				return warmed
			}
			if _, err := s.warmer.FetchCached(ctx, entry); err != nil {
				s.logger.Warn("Failed to warm timetable",
					zap.String("year", year.String()),
					zap.Int("week_number", entry.WeekNumber),
					zap.Error(err))
				continue
			}
			warmed++
		}
	}

	s.logger.Info("Cache warming completed", zap.Int("warmed", warmed))
	return warmed
}
