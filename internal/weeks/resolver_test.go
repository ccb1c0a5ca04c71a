package weeks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetaSource struct {
	metas []model.TimetableMeta
	err   error
}

func (f *fakeMetaSource) Metas(ctx context.Context, year model.CohortYear) ([]model.TimetableMeta, error) {
	return f.metas, f.err
}

func meta(week int, start time.Time) model.TimetableMeta {
	return model.TimetableMeta{TimetableHeader: model.TimetableHeader{
		Year:       model.CohortA1,
		WeekNumber: week,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 5).Add(18 * time.Hour),
	}}
}

func TestWeekNumberForDay(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	source := &fakeMetaSource{metas: []model.TimetableMeta{
		meta(12, time.Date(2024, 3, 18, 0, 0, 0, 0, paris)),
		meta(13, time.Date(2024, 3, 25, 0, 0, 0, 0, paris)),
	}}
	resolver := NewResolver(source)
	ctx := context.Background()

	week, err := resolver.WeekNumberForDay(ctx, time.Date(2024, 3, 27, 15, 0, 0, 0, paris), model.CohortA1)
	require.NoError(t, err)
	assert.Equal(t, 13, week)

	// Последний день недели включительно
	week, err = resolver.WeekNumberForDay(ctx, time.Date(2024, 3, 30, 23, 30, 0, 0, paris), model.CohortA1)
	require.NoError(t, err)
	assert.Equal(t, 13, week)

	// 23:30 UTC воскресенья уже понедельник по Парижу
	week, err = resolver.WeekNumberForDay(ctx, time.Date(2024, 3, 24, 23, 30, 0, 0, time.UTC), model.CohortA1)
	require.NoError(t, err)
	assert.Equal(t, 13, week)

	_, err = resolver.WeekNumberForDay(ctx, time.Date(2024, 4, 15, 10, 0, 0, 0, paris), model.CohortA1)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestLatestWeekNumber(t *testing.T) {
	start := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	resolver := NewResolver(&fakeMetaSource{metas: []model.TimetableMeta{
		meta(14, start.AddDate(0, 0, 14)),
		meta(12, start),
		meta(13, start.AddDate(0, 0, 7)),
	}})

	latest, err := resolver.LatestWeekNumber(context.Background(), model.CohortA1)
	require.NoError(t, err)
	assert.Equal(t, 14, latest)

	_, err = NewResolver(&fakeMetaSource{}).LatestWeekNumber(context.Background(), model.CohortA1)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResolverPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	resolver := NewResolver(&fakeMetaSource{err: boom})

	_, err := resolver.WeekNumberForDay(context.Background(), time.Now(), model.CohortA1)
	assert.ErrorIs(t, err, boom)
	_, err = resolver.LatestWeekNumber(context.Background(), model.CohortA1)
	assert.ErrorIs(t, err, boom)
}
