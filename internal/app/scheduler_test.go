package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWarmer struct {
	mu         sync.Mutex
	connectErr error
	entries    map[model.CohortYear][]model.TimetableEntry
	failing    map[string]bool
	fetched    []string
}

func (f *fakeWarmer) Connect(ctx context.Context) error {
	return f.connectErr
}

func (f *fakeWarmer) ListEntries(ctx context.Context, year model.CohortYear) ([]model.TimetableEntry, error) {
	if year == model.CohortA3 {
		return nil, model.ErrSourceUnavailable
	}
	return f.entries[year], nil
}

func (f *fakeWarmer) FetchCached(ctx context.Context, entry model.TimetableEntry) (*model.Timetable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, entry.Key())
	if f.failing[entry.Key()] {
		return nil, errors.New("boom")
	}
	return &model.Timetable{}, nil
}

func (f *fakeWarmer) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

func newFakeWarmer() *fakeWarmer {
	return &fakeWarmer{
		entries: map[model.CohortYear][]model.TimetableEntry{
			model.CohortA1: {{Year: model.CohortA1, WeekNumber: 12}, {Year: model.CohortA1, WeekNumber: 13}},
			model.CohortA2: {{Year: model.CohortA2, WeekNumber: 13}},
		},
		failing: map[string]bool{"A1/12": true},
	}
}

func TestWarmOnce(t *testing.T) {
	warmer := newFakeWarmer()
	scheduler := NewScheduler(warmer, 0, zap.NewNop())

	warmed := scheduler.WarmOnce(context.Background())
	assert.Equal(t, 2, warmed)
	assert.Equal(t, []string{"A1/12", "A1/13", "A2/13"}, warmer.fetched)
}

func TestWarmOnceConnectFailure(t *testing.T) {
	warmer := newFakeWarmer()
	warmer.connectErr = model.ErrPersistence
	scheduler := NewScheduler(warmer, 0, zap.NewNop())

	assert.Zero(t, scheduler.WarmOnce(context.Background()))
	assert.Empty(t, warmer.fetched)
}

func TestSchedulerStartWarmsImmediately(t *testing.T) {
	warmer := newFakeWarmer()
	scheduler := NewScheduler(warmer, time.Hour, zap.NewNop())

	scheduler.Start(context.Background())
	defer scheduler.Stop()

	require.Eventually(t, func() bool { return warmer.fetchCount() == 3 }, time.Second, 5*time.Millisecond)
}
