package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	mu           sync.Mutex
	entries      map[model.CohortYear][]model.TimetableEntry
	entriesCalls int
	fetches      int32
	fetchErr     error
	release      chan struct{}
	listRelease  chan struct{}
	// headerShift сдвигает номер недели в заголовке ответа источника
	headerShift int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{entries: make(map[model.CohortYear][]model.TimetableEntry)}
}

func (p *fakeProvider) Entries(ctx context.Context, year model.CohortYear) ([]model.TimetableEntry, error) {
	p.mu.Lock()
	p.entriesCalls++
	entries := p.entries[year]
	release := p.listRelease
	p.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return entries, nil
}

func (p *fakeProvider) Timetable(ctx context.Context, entry model.TimetableEntry) (*model.Timetable, error) {
	atomic.AddInt32(&p.fetches, 1)
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return &model.Timetable{
		Header: model.TimetableHeader{
			Title:      "Semaine",
			Year:       entry.Year,
			WeekNumber: entry.WeekNumber + p.headerShift,
			StartDate:  entry.FromDate,
			EndDate:    entry.ToDate,
		},
		Lessons: []model.Lesson{{Content: model.LessonContent{Room: "205"}}},
	}, nil
}

func (p *fakeProvider) listCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entriesCalls
}

func (p *fakeProvider) fetchCount() int {
	return int(atomic.LoadInt32(&p.fetches))
}

type fakeStore struct {
	mu         sync.Mutex
	rows       map[string]*model.Timetable
	connects   int
	gets       int
	saves      int
	connectErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[string]*model.Timetable)}
}

func (s *fakeStore) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connects++
	return s.connectErr
}

func (s *fakeStore) Get(ctx context.Context, year model.CohortYear, weekNumber int) (*model.Timetable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	return s.rows[model.TimetableEntry{Year: year, WeekNumber: weekNumber}.Key()], nil
}

func (s *fakeStore) Save(ctx context.Context, timetable *model.Timetable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.rows[model.TimetableEntry{Year: timetable.Header.Year, WeekNumber: timetable.Header.WeekNumber}.Key()] = timetable
	return nil
}

func (s *fakeStore) touched() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connects + s.gets + s.saves
}

var weekStart = time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC)

func entry(year model.CohortYear, week int) model.TimetableEntry {
	from := weekStart.AddDate(0, 0, 7*(week-13))
	return model.TimetableEntry{Year: year, WeekNumber: week, FromDate: from, ToDate: from.AddDate(0, 0, 5)}
}

func newTestService(provider *fakeProvider, store *fakeStore, ttl time.Duration) *TimetableService {
	svc := NewTimetableService(provider, store, ttl, zap.NewNop())
	svc.clock = func() time.Time { return weekStart.Add(9 * time.Hour) }
	return svc
}

func TestListEntriesSortedAndUnique(t *testing.T) {
	provider := newFakeProvider()
	provider.entries[model.CohortA1] = []model.TimetableEntry{
		entry(model.CohortA1, 14), entry(model.CohortA1, 12), entry(model.CohortA1, 14),
		entry(model.CohortA1, 13), {WeekNumber: 60},
	}
	svc := newTestService(provider, newFakeStore(), 0)

	entries, err := svc.ListEntries(context.Background(), model.CohortA1)
	require.NoError(t, err)

	weeks := make([]int, 0, len(entries))
	for _, e := range entries {
		weeks = append(weeks, e.WeekNumber)
		assert.Equal(t, model.CohortA1, e.Year)
	}
	assert.Equal(t, []int{12, 13, 14}, weeks)

	_, err = svc.ListEntries(context.Background(), model.CohortYear("A7"))
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestFindEntry(t *testing.T) {
	provider := newFakeProvider()
	provider.entries[model.CohortA2] = []model.TimetableEntry{entry(model.CohortA2, 13)}
	svc := newTestService(provider, newFakeStore(), 0)
	ctx := context.Background()

	found, err := svc.FindEntry(ctx, model.CohortA2, 13)
	require.NoError(t, err)
	assert.Equal(t, 13, found.WeekNumber)

	_, err = svc.FindEntry(ctx, model.CohortA2, 14)
	assert.ErrorIs(t, err, model.ErrNotFound)

	callsBefore := provider.entriesCalls
	_, err = svc.FindEntry(ctx, model.CohortA2, 99)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
	assert.Equal(t, callsBefore, provider.entriesCalls)
}

func TestCatalogTTL(t *testing.T) {
	provider := newFakeProvider()
	provider.entries[model.CohortA1] = []model.TimetableEntry{entry(model.CohortA1, 13)}
	svc := newTestService(provider, newFakeStore(), time.Minute)

	now := weekStart
	svc.catalog.clock = func() time.Time { return now }

	ctx := context.Background()
	_, err := svc.ListEntries(ctx, model.CohortA1)
	require.NoError(t, err)
	_, err = svc.ListEntries(ctx, model.CohortA1)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.entriesCalls)

	now = now.Add(2 * time.Minute)
	_, err = svc.ListEntries(ctx, model.CohortA1)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.entriesCalls)
}

func TestFetchCachedRequiresConnect(t *testing.T) {
	svc := newTestService(newFakeProvider(), newFakeStore(), 0)

	_, err := svc.FetchCached(context.Background(), entry(model.CohortA1, 13))
	assert.ErrorIs(t, err, model.ErrPersistence)
}

func TestConnectFailureIsPersistenceError(t *testing.T) {
	store := newFakeStore()
	store.connectErr = errors.New("connection refused")
	svc := newTestService(newFakeProvider(), store, 0)

	err := svc.Connect(context.Background())
	assert.ErrorIs(t, err, model.ErrPersistence)
}

func TestFetchCachedMissThenHit(t *testing.T) {
	provider := newFakeProvider()
	store := newFakeStore()
	svc := newTestService(provider, store, 0)
	ctx := context.Background()

	require.NoError(t, svc.Connect(ctx))
	require.NoError(t, svc.Connect(ctx))
	assert.Equal(t, 1, store.connects)

	first, err := svc.FetchCached(ctx, entry(model.CohortA1, 13))
	require.NoError(t, err)
	assert.Equal(t, 13, first.Header.WeekNumber)
	assert.Equal(t, svc.clock(), first.LastUpdate)
	assert.Equal(t, 1, provider.fetchCount())
	assert.Equal(t, 1, store.saves)

	second, err := svc.FetchCached(ctx, entry(model.CohortA1, 13))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.fetchCount())
	assert.Equal(t, 1, store.saves)
}

func TestFetchCachedCoalescesConcurrentMisses(t *testing.T) {
	provider := newFakeProvider()
	provider.release = make(chan struct{})
	store := newFakeStore()
	svc := newTestService(provider, store, 0)
	ctx := context.Background()
	require.NoError(t, svc.Connect(ctx))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.FetchCached(ctx, entry(model.CohortA3, 20))
			assert.NoError(t, err)
		}()
	}

	require.Eventually(t, func() bool { return provider.fetchCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(provider.release)
	wg.Wait()

	assert.Equal(t, 1, provider.fetchCount())
	assert.Equal(t, 1, store.saves)
}

func TestFetchCachedSourceFailureIsNotPersisted(t *testing.T) {
	provider := newFakeProvider()
	provider.fetchErr = errors.New("connection reset")
	store := newFakeStore()
	svc := newTestService(provider, store, 0)
	ctx := context.Background()
	require.NoError(t, svc.Connect(ctx))

	_, err := svc.FetchCached(ctx, entry(model.CohortA1, 13))
	assert.ErrorIs(t, err, model.ErrSourceUnavailable)
	assert.Equal(t, 0, store.saves)
}

func TestFetchAsIsNeverTouchesStore(t *testing.T) {
	provider := newFakeProvider()
	store := newFakeStore()
	svc := newTestService(provider, store, 0)
	ctx := context.Background()

	require.NoError(t, svc.Connect(ctx))
	_, err := svc.FetchCached(ctx, entry(model.CohortA2, 13))
	require.NoError(t, err)
	require.Equal(t, 1, provider.fetchCount())
	touchedBefore := store.touched()

	timetable, err := svc.FetchAsIs(ctx, entry(model.CohortA2, 13))
	require.NoError(t, err)
	assert.Equal(t, model.CohortA2, timetable.Header.Year)
	assert.True(t, timetable.LastUpdate.IsZero())
	assert.Equal(t, 2, provider.fetchCount(), "asIs must reach the source even when a copy is cached")
	assert.Equal(t, touchedBefore, store.touched())
}

func TestFetchCachedSurvivesFirstCallerCancel(t *testing.T) {
	provider := newFakeProvider()
	provider.release = make(chan struct{})
	store := newFakeStore()
	svc := newTestService(provider, store, 0)
	require.NoError(t, svc.Connect(context.Background()))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.FetchCached(firstCtx, entry(model.CohortA1, 13))
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return provider.fetchCount() == 1 }, time.Second, 5*time.Millisecond)

	type outcome struct {
		timetable *model.Timetable
		err       error
	}
	second := make(chan outcome, 1)
	go func() {
		timetable, err := svc.FetchCached(context.Background(), entry(model.CohortA1, 13))
		second <- outcome{timetable: timetable, err: err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(provider.release)
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Equal(t, 13, res.timetable.Header.WeekNumber)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}

	assert.Equal(t, 1, provider.fetchCount())
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 1, store.saves)
}

func TestListEntriesSurvivesFirstCallerCancel(t *testing.T) {
	provider := newFakeProvider()
	provider.entries[model.CohortA1] = []model.TimetableEntry{entry(model.CohortA1, 13)}
	provider.listRelease = make(chan struct{})
	svc := newTestService(provider, newFakeStore(), 0)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.ListEntries(firstCtx, model.CohortA1)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return provider.listCount() == 1 }, time.Second, 5*time.Millisecond)

	second := make(chan error, 1)
	go func() {
		entries, err := svc.ListEntries(context.Background(), model.CohortA1)
		if err == nil && len(entries) != 1 {
			err = errors.New("unexpected entries")
		}
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(provider.listRelease)
	select {
	case err := <-second:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, 1, provider.listCount())
}

func TestFetchCachedStoresUnderEntryKey(t *testing.T) {
	provider := newFakeProvider()
	provider.headerShift = 1
	store := newFakeStore()
	svc := newTestService(provider, store, 0)
	ctx := context.Background()
	require.NoError(t, svc.Connect(ctx))

	first, err := svc.FetchCached(ctx, entry(model.CohortA1, 13))
	require.NoError(t, err)
	assert.Equal(t, 13, first.Header.WeekNumber)

	_, err = svc.FetchCached(ctx, entry(model.CohortA1, 13))
	require.NoError(t, err)
	assert.Equal(t, 1, provider.fetchCount())
	assert.Contains(t, store.rows, "A1/13")
}

func TestListMetas(t *testing.T) {
	provider := newFakeProvider()
	provider.entries[model.CohortA1] = []model.TimetableEntry{
		entry(model.CohortA1, 14), entry(model.CohortA1, 12), entry(model.CohortA1, 13),
	}
	store := newFakeStore()
	svc := newTestService(provider, store, 0)

	metas, err := svc.ListMetas(context.Background(), model.CohortA1)
	require.NoError(t, err)
	require.Len(t, metas, 3)
	for i, week := range []int{12, 13, 14} {
		assert.Equal(t, week, metas[i].WeekNumber)
		assert.Equal(t, svc.clock(), metas[i].LastUpdate)
	}
	assert.Equal(t, 3, store.saves)
}
