package model

import (
	"fmt"
	"time"
)

const (
	MinWeekNumber = 1
	MaxWeekNumber = 52
)

// ValidWeekNumber проверяет что номер недели в диапазоне [1,52]
func ValidWeekNumber(week int) bool {
	return week >= MinWeekNumber && week <= MaxWeekNumber
}

// TimetableEntry опубликованная неделя потока
type TimetableEntry struct {
	Year       CohortYear `json:"year"`
	WeekNumber int        `json:"week_number"`
	FromDate   time.Time  `json:"from_date"`
	ToDate     time.Time  `json:"to_date"`
}

func (e TimetableEntry) Key() string {
	return fmt.Sprintf("%s/%d", e.Year, e.WeekNumber)
}

type TimetableHeader struct {
	Title      string     `json:"title"`
	Year       CohortYear `json:"year"`
	WeekNumber int        `json:"week_number"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    time.Time  `json:"end_date"`
}

type Timetable struct {
	Header     TimetableHeader `json:"header"`
	LastUpdate time.Time       `json:"last_update"`
	Lessons    []Lesson        `json:"lessons"`
}

// TimetableMeta заголовок расписания с датой последнего обновления
type TimetableMeta struct {
	TimetableHeader
	LastUpdate time.Time `json:"last_update"`
}

// Meta возвращает метаданные расписания
func (t *Timetable) Meta() TimetableMeta {
	return TimetableMeta{TimetableHeader: t.Header, LastUpdate: t.LastUpdate}
}

// StampCohort проставляет поток каждому занятию
func (t *Timetable) StampCohort() {
	for i := range t.Lessons {
		t.Lessons[i].Cohort = t.Header.Year
	}
}
