// Package weeks сопоставляет календарные даты с опубликованными неделями.
package weeks

import (
	"context"
	"fmt"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
)

// MetaSource даёт заголовки опубликованных недель потока
type MetaSource interface {
	Metas(ctx context.Context, year model.CohortYear) ([]model.TimetableMeta, error)
}

type Resolver struct {
	source MetaSource
}

func NewResolver(source MetaSource) *Resolver {
	return &Resolver{source: source}
}

// WeekNumberForDay возвращает номер недели, в диапазон дат которой попадает day.
// model.ErrNotFound означает, что день вне учебного календаря (каникулы).
func (r *Resolver) WeekNumberForDay(ctx context.Context, day time.Time, year model.CohortYear) (int, error) {
	metas, err := r.source.Metas(ctx, year)
	if err != nil {
		return 0, err
	}

	for _, meta := range metas {
		if coversDay(meta.TimetableHeader, day) {
			return meta.WeekNumber, nil
		}
	}
	return 0, fmt.Errorf("%w: no published week for %s covers %s", model.ErrNotFound, year, day.Format("2006-01-02"))
}

// LatestWeekNumber возвращает наибольший известный номер недели потока
func (r *Resolver) LatestWeekNumber(ctx context.Context, year model.CohortYear) (int, error) {
	metas, err := r.source.Metas(ctx, year)
	if err != nil {
		return 0, err
	}
	if len(metas) == 0 {
		return 0, fmt.Errorf("%w: no published weeks for %s", model.ErrNotFound, year)
	}

	latest := metas[0].WeekNumber
	for _, meta := range metas[1:] {
		if meta.WeekNumber > latest {
			latest = meta.WeekNumber
		}
	}
	return latest, nil
}

// coversDay сравнивает по датам в часовом поясе заголовка, границы включительно
func coversDay(header model.TimetableHeader, day time.Time) bool {
	loc := header.StartDate.Location()
	d := truncateToDate(day.In(loc))
	start := truncateToDate(header.StartDate)
	end := truncateToDate(header.EndDate.In(loc))
	return !d.Before(start) && !d.After(end)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
