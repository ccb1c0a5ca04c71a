// Package source описывает внешний источник расписаний.
// Источник непрозрачен: известны только перечень опубликованных недель
// потока и полное расписание конкретной недели.
package source

import (
	"context"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
)

type Provider interface {
	Entries(ctx context.Context, year model.CohortYear) ([]model.TimetableEntry, error)
	Timetable(ctx context.Context, entry model.TimetableEntry) (*model.Timetable, error)
}
