package client

import (
	"context"
	"sync"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/reactive"
	"go.uber.org/zap"
)

const defaultFetchTimeout = 30 * time.Second

type SlotState int

const (
	SlotAbsent SlotState = iota
	SlotLoading
	SlotPresent
)

func (s SlotState) String() string {
	switch s {
	case SlotLoading:
		return "loading"
	case SlotPresent:
		return "present"
	}
	return "absent"
}

// Slot ячейка локального кэша для пары (поток, неделя)
type Slot struct {
	State     SlotState
	Timetable *model.Timetable
}

// TimetableFetcher источник расписаний для обновления ячеек
type TimetableFetcher interface {
	Timetable(ctx context.Context, year model.CohortYear, weekNumber int) (*model.Timetable, error)
}

// SlotPersister локальное сохранение загруженных расписаний
type SlotPersister interface {
	Put(timetable *model.Timetable) error
}

type slotKey struct {
	year model.CohortYear
	week int
}

type slotEntry struct {
	slot      Slot
	requested uint64
}

// Store локальный кэш недельных расписаний по потокам.
// Чтения не блокируются и ничего не загружают, обновления асинхронны.
type Store struct {
	fetcher      TimetableFetcher
	persister    SlotPersister
	fetchTimeout time.Duration
	dispatch     func(func())
	logger       *zap.Logger

	mu       sync.RWMutex
	slots    map[slotKey]*slotEntry
	revision *reactive.Signal[uint64]
	inflight sync.WaitGroup
}

type StoreOption func(*Store)

// WithPersister сохраняет каждое успешно загруженное расписание
func WithPersister(persister SlotPersister) StoreOption {
	return func(s *Store) {
		s.persister = persister
	}
}

func WithFetchTimeout(timeout time.Duration) StoreOption {
	return func(s *Store) {
		s.fetchTimeout = timeout
	}
}

func NewStore(fetcher TimetableFetcher, logger *zap.Logger, opts ...StoreOption) *Store {
	s := &Store{
		fetcher:      fetcher,
		fetchTimeout: defaultFetchTimeout,
		dispatch:     func(fn func()) { fn() },
		logger:       logger,
		slots:        make(map[slotKey]*slotEntry),
		revision:     reactive.NewSignal[uint64](0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revision увеличивается при каждом изменении содержимого ячеек
func (s *Store) Revision() *reactive.Signal[uint64] {
	return s.revision
}

// Hydrate заполняет ячейки ранее сохранёнными расписаниями
func (s *Store) Hydrate(timetables []*model.Timetable) int {
	loaded := 0

	s.mu.Lock()
	for _, timetable := range timetables {
		if timetable == nil || !timetable.Header.Year.Valid() {
			continue
		}
		timetable.StampCohort()
		key := slotKey{year: timetable.Header.Year, week: timetable.Header.WeekNumber}
		s.entry(key).slot = Slot{State: SlotPresent, Timetable: timetable}
		loaded++
	}
	s.mu.Unlock()

	if loaded > 0 {
		s.revision.Update(func(v uint64) uint64 { return v + 1 })
	}
	return loaded
}

// Read возвращает текущее состояние ячейки
func (s *Store) Read(year model.CohortYear, weekNumber int) Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.slots[slotKey{year: year, week: weekNumber}]; ok {
		return e.slot
	}
	return Slot{State: SlotAbsent}
}

// Refresh запускает загрузку расписания и сразу возвращает управление.
// Результат применяется, только если это последний запрошенный refresh ячейки.
func (s *Store) Refresh(year model.CohortYear, weekNumber int) {
	key := slotKey{year: year, week: weekNumber}

	s.mu.Lock()
	e := s.entry(key)
	e.requested++
	generation := e.requested
	if e.slot.State == SlotAbsent {
		e.slot.State = SlotLoading
	}
	s.mu.Unlock()

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
		timetable, err := s.fetcher.Timetable(ctx, year, weekNumber)
		cancel()

		s.dispatch(func() {
			s.commit(key, generation, timetable, err)
		})
	}()
}

// Wait ждёт завершения загрузок, запущенных к этому моменту
func (s *Store) Wait() {
	s.inflight.Wait()
}

func (s *Store) commit(key slotKey, generation uint64, timetable *model.Timetable, err error) {
	s.mu.Lock()
	e := s.entry(key)

	if generation != e.requested {
		s.mu.Unlock()
		s.logger.Debug("Dropping stale refresh",
			zap.String("year", key.year.String()),
			zap.Int("week_number", key.week),
			zap.Uint64("generation", generation),
			zap.Uint64("latest", e.requested))
		return
	}

	if err != nil {
		if e.slot.Timetable == nil {
			e.slot.State = SlotAbsent
		} else {
			e.slot.State = SlotPresent
		}
		s.mu.Unlock()
		s.logger.Warn("Failed to refresh timetable, keeping last known data",
			zap.String("year", key.year.String()),
			zap.Int("week_number", key.week),
			zap.Error(err))
		return
	}

	timetable.Header.Year = key.year
	timetable.StampCohort()
	e.slot = Slot{State: SlotPresent, Timetable: timetable}
	s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.Put(timetable); err != nil {
			s.logger.Warn("Failed to persist timetable locally",
				zap.String("year", key.year.String()),
				zap.Int("week_number", key.week),
				zap.Error(err))
		}
	}

	s.revision.Update(func(v uint64) uint64 { return v + 1 })
}

// entry возвращает ячейку, создавая её при первом обращении; вызывать под s.mu
func (s *Store) entry(key slotKey) *slotEntry {
	e, ok := s.slots[key]
	if !ok {
		e = &slotEntry{}
		s.slots[key] = e
	}
	return e
}
