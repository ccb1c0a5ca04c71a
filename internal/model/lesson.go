package model

import (
	"fmt"
	"time"
)

type LessonType string

const (
	LessonTypeCM    LessonType = "CM"
	LessonTypeTD    LessonType = "TD"
	LessonTypeTP    LessonType = "TP"
	LessonTypeDS    LessonType = "DS"
	LessonTypeSAE   LessonType = "SAE"
	LessonTypeOther LessonType = "OTHER"
)

type LessonContent struct {
	Type    string `json:"type"`
	Room    string `json:"room"`
	Teacher string `json:"teacher"`
}

// LessonGroup группа и подгруппа; Main == 0 означает весь поток
type LessonGroup struct {
	Main int  `json:"main"`
	Sub  *int `json:"sub,omitempty"`
}

type Lesson struct {
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Type      LessonType    `json:"type"`
	Content   LessonContent `json:"content"`
	Group     LessonGroup   `json:"group"`

	// Cohort проставляется при загрузке расписания, в JSON не попадает
	Cohort CohortYear `json:"-"`
}

// WellFormed проверяет что начало строго раньше конца
func (l *Lesson) WellFormed() bool {
	return l.StartDate.Before(l.EndDate)
}

// Contains проверяет попадание момента в полуинтервал [start, end)
func (l *Lesson) Contains(instant time.Time) bool {
	return !instant.Before(l.StartDate) && instant.Before(l.EndDate)
}

// GroupLabel подпись для отображения: "A2", "A2 G3" или "A2 G3.1"
func (l *Lesson) GroupLabel() string {
	label := l.Cohort.String()
	if label == "" {
		label = "?"
	}
	if l.Group.Main == 0 {
		return label
	}
	if l.Group.Sub != nil {
		return fmt.Sprintf("%s G%d.%d", label, l.Group.Main, *l.Group.Sub)
	}
	return fmt.Sprintf("%s G%d", label, l.Group.Main)
}
