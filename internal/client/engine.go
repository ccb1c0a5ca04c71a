package client

import (
	"context"
	"errors"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/reactive"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/rooms"
	"go.uber.org/zap"
)

// WeekUnresolved текущая неделя ещё не определена или не может быть определена
const WeekUnresolved = -1

const taskBuffer = 64

// WeekResolver определяет неделю по дате; model.ErrNotFound означает каникулы
type WeekResolver interface {
	WeekNumberForDay(ctx context.Context, day time.Time, year model.CohortYear) (int, error)
	LatestWeekNumber(ctx context.Context, year model.CohortYear) (int, error)
}

type EngineOption func(*Engine)

// WithClock подменяет источник текущего времени
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func WithTickInterval(interval time.Duration) EngineOption {
	return func(e *Engine) {
		e.tickInterval = interval
	}
}

// Engine определяет текущую неделю, следит за сменой недели и поддерживает
// индекс занятости аудиторий. Все записи в сигналы выполняются в горутине Run.
type Engine struct {
	store         *Store
	resolver      WeekResolver
	referenceYear model.CohortYear
	tickInterval  time.Duration
	now           func() time.Time
	logger        *zap.Logger

	tasks chan func()
	done  chan struct{}

	Clock       *reactive.Signal[time.Time]
	CurrentWeek *reactive.Signal[int]
	Vacation    *reactive.Signal[bool]
	Failure     *reactive.Signal[string]
	Index       *reactive.Computed[rooms.Index]
	Occupants   *reactive.Computed[map[string]*model.Lesson]
	Board       *reactive.Computed[Board]

	// поля ниже меняются только в горутине Run
	runCtx       context.Context
	observedYear int
	observedWeek int
	resolveGen   uint64
}

func NewEngine(store *Store, resolver WeekResolver, referenceYear model.CohortYear, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		store:         store,
		resolver:      resolver,
		referenceYear: referenceYear,
		tickInterval:  time.Second,
		now:           time.Now,
		logger:        logger,
		tasks:         make(chan func(), taskBuffer),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	store.dispatch = e.post

	e.Clock = reactive.NewSignalFunc(e.now(), func(a, b time.Time) bool { return a.Equal(b) })
	e.CurrentWeek = reactive.NewSignal(WeekUnresolved)
	e.Vacation = reactive.NewSignal(false)
	e.Failure = reactive.NewSignal("")

	e.Index = reactive.NewComputed(e.buildIndex, e.CurrentWeek, store.Revision())
	e.Occupants = reactive.NewComputed(func() map[string]*model.Lesson {
		return e.Index.Get().Occupants(e.Clock.Get())
	}, e.Index, e.Clock)
	e.Board = reactive.NewComputed(e.buildBoard, e.Occupants, e.CurrentWeek, e.Vacation, e.Failure)

	return e
}

// Run обрабатывает тики часов и задачи до отмены ctx.
// При старте определяет текущую неделю.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)

	e.runCtx = ctx
	now := e.now()
	e.Clock.Set(now)
	e.observedYear, e.observedWeek = now.ISOWeek()
	e.resolveCurrentWeek(now)

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.tick(e.now())
		case task := <-e.tasks:
			task()
		}
	}
}

// Tick передаёт движку показание часов вне расписания тикера
func (e *Engine) Tick(now time.Time) {
	e.post(func() { e.tick(now) })
}

func (e *Engine) post(fn func()) {
	select {
	case e.tasks <- fn:
	case <-e.done:
	}
}

// tick обновляет часы; смена недели (по ISO номеру) запускает повторное
// определение текущей недели, тики внутри той же недели ничего не делают
func (e *Engine) tick(now time.Time) {
	e.Clock.Set(now)

	year, week := now.ISOWeek()
	if year == e.observedYear && week == e.observedWeek {
		return
	}
	e.observedYear, e.observedWeek = year, week

	e.logger.Info("Week rollover detected", zap.Int("iso_week", week))
	e.resolveCurrentWeek(now)
}

type resolution struct {
	generation uint64
	week       int
	vacation   bool
	err        error
}

// resolveCurrentWeek опрашивает резолвер вне цикла и применяет результат в нём
func (e *Engine) resolveCurrentWeek(now time.Time) {
	e.resolveGen++
	generation := e.resolveGen
	ctx := e.runCtx

	go func() {
		result := e.resolve(ctx, now)
		result.generation = generation
		e.post(func() { e.applyResolution(result) })
	}()
}

func (e *Engine) resolve(ctx context.Context, now time.Time) resolution {
	week, err := e.resolver.WeekNumberForDay(ctx, now, e.referenceYear)
	if err == nil {
		return resolution{week: week}
	}

	if errors.Is(err, model.ErrNotFound) {
		// Ни одна опубликованная неделя не покрывает сегодня: каникулы,
		// показываем последнюю опубликованную неделю
		latest, latestErr := e.resolver.LatestWeekNumber(ctx, e.referenceYear)
		if latestErr == nil {
			return resolution{week: latest, vacation: true}
		}
		err = latestErr
	}

	return resolution{week: WeekUnresolved, err: err}
}

func (e *Engine) applyResolution(result resolution) {
	if result.generation != e.resolveGen {
		return
	}

	if result.err != nil {
		e.logger.Error("Failed to resolve current week", zap.Error(result.err))
		e.Vacation.Set(false)
		e.Failure.Set(result.err.Error())
		e.CurrentWeek.Set(WeekUnresolved)
		return
	}

	for _, year := range model.AllCohorts() {
		e.store.Refresh(year, result.week)
	}

	e.Vacation.Set(result.vacation)
	e.Failure.Set("")
	e.CurrentWeek.Set(result.week)

	e.logger.Info("Current week resolved",
		zap.Int("week_number", result.week),
		zap.Bool("vacation", result.vacation))
}

func (e *Engine) buildIndex() rooms.Index {
	week := e.CurrentWeek.Get()
	if week == WeekUnresolved {
		return rooms.BuildIndex()
	}

	timetables := make([]*model.Timetable, 0, 3)
	for _, year := range model.AllCohorts() {
		timetables = append(timetables, e.store.Read(year, week).Timetable)
	}
	return rooms.BuildIndex(timetables...)
}
