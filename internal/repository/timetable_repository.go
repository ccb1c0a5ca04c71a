package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/repository/base"
)

type TimetableRepository struct {
	connector *base.Connector
}

func NewTimetableRepository(connector *base.Connector) *TimetableRepository {
	return &TimetableRepository{connector: connector}
}

// Connect открывает соединение с базой (идемпотентно)
func (r *TimetableRepository) Connect(ctx context.Context) error {
	if _, err := r.connector.Acquire(ctx); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Get получает сохранённое расписание, nil если его нет
func (r *TimetableRepository) Get(ctx context.Context, year model.CohortYear, weekNumber int) (*model.Timetable, error) {
	pool, err := r.connector.Pool()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT payload, last_update
		FROM timetables
		WHERE year = $1 AND week_number = $2
	`

	var payload []byte
	var timetable model.Timetable
	err = pool.QueryRow(ctx, query, string(year), weekNumber).Scan(&payload, &timetable.LastUpdate)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get timetable: %w", err)
	}

	lastUpdate := timetable.LastUpdate
	if err := json.Unmarshal(payload, &timetable); err != nil {
		return nil, fmt.Errorf("decode timetable payload: %w", err)
	}
	timetable.LastUpdate = lastUpdate

	return &timetable, nil
}

// Save сохраняет расписание, перезаписывая существующую запись
func (r *TimetableRepository) Save(ctx context.Context, timetable *model.Timetable) error {
	pool, err := r.connector.Pool()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(timetable)
	if err != nil {
		return fmt.Errorf("encode timetable payload: %w", err)
	}

	query := `
		INSERT INTO timetables (year, week_number, payload, last_update)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (year, week_number)
		DO UPDATE SET payload = EXCLUDED.payload, last_update = EXCLUDED.last_update
	`

	_, err = pool.Exec(ctx, query,
		string(timetable.Header.Year),
		timetable.Header.WeekNumber,
		string(payload),
		timetable.LastUpdate,
	)
	if err != nil {
		return fmt.Errorf("save timetable: %w", err)
	}

	return nil
}
