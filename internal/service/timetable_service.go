package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/source"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	metasConcurrency = 4

	// sharedFetchTimeout ограничивает общую загрузку, которую ждут несколько запросов
	sharedFetchTimeout = 30 * time.Second
)

// TimetableStore постоянное хранилище расписаний
type TimetableStore interface {
	Connect(ctx context.Context) error
	Get(ctx context.Context, year model.CohortYear, weekNumber int) (*model.Timetable, error)
	Save(ctx context.Context, timetable *model.Timetable) error
}

// TimetableService согласует внешний источник расписаний с постоянным кэшем
type TimetableService struct {
	source  source.Provider
	store   TimetableStore
	catalog *entryCatalog
	fetches singleflight.Group
	clock   func() time.Time
	logger  *zap.Logger

	connMu    sync.Mutex
	connected bool
}

func NewTimetableService(provider source.Provider, store TimetableStore, catalogTTL time.Duration, logger *zap.Logger) *TimetableService {
	return &TimetableService{
		source:  provider,
		store:   store,
		catalog: newEntryCatalog(provider, catalogTTL, time.Now, logger),
		clock:   time.Now,
		logger:  logger,
	}
}

// ListEntries возвращает опубликованные недели потока по возрастанию
func (s *TimetableService) ListEntries(ctx context.Context, year model.CohortYear) ([]model.TimetableEntry, error) {
	if !year.Valid() {
		return nil, fmt.Errorf("%w: unknown cohort year %q", model.ErrInvalidParameter, year)
	}
	return s.catalog.list(ctx, year)
}

// FindEntry ищет опубликованную неделю потока
func (s *TimetableService) FindEntry(ctx context.Context, year model.CohortYear, weekNumber int) (model.TimetableEntry, error) {
	if !model.ValidWeekNumber(weekNumber) {
		return model.TimetableEntry{}, fmt.Errorf("%w: week number %d out of range", model.ErrInvalidParameter, weekNumber)
	}

	entries, err := s.ListEntries(ctx, year)
	if err != nil {
		return model.TimetableEntry{}, err
	}

	for _, entry := range entries {
		if entry.WeekNumber == weekNumber {
			return entry, nil
		}
	}
	return model.TimetableEntry{}, fmt.Errorf("%w: timetable %s/%d has not been published", model.ErrNotFound, year, weekNumber)
}

// FetchAsIs получает расписание из источника в обход кэша, ничего не сохраняя
func (s *TimetableService) FetchAsIs(ctx context.Context, entry model.TimetableEntry) (*model.Timetable, error) {
	timetable, err := s.fetchFromSource(ctx, entry)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Timetable fetched as-is",
		zap.String("year", entry.Year.String()),
		zap.Int("week_number", entry.WeekNumber))
	return timetable, nil
}

// Connect открывает соединение с хранилищем; повторные вызовы ничего не делают
func (s *TimetableService) Connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.connected {
		return nil
	}
	if err := s.store.Connect(ctx); err != nil {
		return fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}

	s.connected = true
	s.logger.Info("Persistent store connected")
	return nil
}

func (s *TimetableService) isConnected() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.connected
}

// FetchCached возвращает сохранённое расписание или загружает и сохраняет его.
// Одновременные промахи по одному ключу объединяются в одну загрузку.
func (s *TimetableService) FetchCached(ctx context.Context, entry model.TimetableEntry) (*model.Timetable, error) {
	if !s.isConnected() {
		return nil, fmt.Errorf("%w: store is not connected", model.ErrPersistence)
	}

	// Общая загрузка не зависит от отмены контекста первого запроса:
	// остальные ожидающие получат результат, а каждый ждёт не дольше своего ctx
	flight := s.fetches.DoChan(entry.Key(), func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		cached, err := s.store.Get(fetchCtx, entry.Year, entry.WeekNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", model.ErrPersistence, entry.Key(), err)
		}
		if cached != nil {
			return cached, nil
		}

		timetable, err := s.fetchFromSource(fetchCtx, entry)
		if err != nil {
			return nil, err
		}
		// строка хранится под ключом записи, даже если заголовок источника с ним расходится
		timetable.Header.Year = entry.Year
		timetable.Header.WeekNumber = entry.WeekNumber
		timetable.LastUpdate = s.clock()

		if err := s.store.Save(fetchCtx, timetable); err != nil {
			return nil, fmt.Errorf("%w: write %s: %v", model.ErrPersistence, entry.Key(), err)
		}

		s.logger.Info("Timetable cached",
			zap.String("year", entry.Year.String()),
			zap.Int("week_number", entry.WeekNumber),
			zap.Int("lessons", len(timetable.Lessons)))
		return timetable, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("Cache fetch shared", zap.String("key", entry.Key()))
		}
		return res.Val.(*model.Timetable), nil
	}
}

// ListMetas возвращает заголовки всех опубликованных недель потока
func (s *TimetableService) ListMetas(ctx context.Context, year model.CohortYear) ([]model.TimetableMeta, error) {
	entries, err := s.ListEntries(ctx, year)
	if err != nil {
		return nil, err
	}
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}

	metas := make([]model.TimetableMeta, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metasConcurrency)

	for i, entry := range entries {
		g.Go(func() error {
			timetable, err := s.FetchCached(gctx, entry)
			if err != nil {
				return err
			}
			metas[i] = timetable.Meta()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return metas, nil
}

func (s *TimetableService) fetchFromSource(ctx context.Context, entry model.TimetableEntry) (*model.Timetable, error) {
	timetable, err := s.source.Timetable(ctx, entry)
	if err != nil {
		s.logger.Error("Failed to fetch timetable from source",
			zap.String("year", entry.Year.String()),
			zap.Int("week_number", entry.WeekNumber),
			zap.Error(err))
		if errors.Is(err, model.ErrSourceUnavailable) || errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", model.ErrSourceUnavailable, err)
	}
	return timetable, nil
}
