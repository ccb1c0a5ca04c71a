package rooms

import (
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
)

// Index занятия по каноническим аудиториям. Строится целиком заново и не
// изменяется после построения.
type Index struct {
	order  []string
	byRoom map[string][]*model.Lesson
}

// BuildIndex раскладывает занятия расписаний по аудиториям в порядке
// аргументов (A1, A2, A3) и порядке занятий. Дубликаты не убираются:
// двойное бронирование видно целиком. nil расписания пропускаются.
func BuildIndex(timetables ...*model.Timetable) Index {
	idx := Index{byRoom: make(map[string][]*model.Lesson)}
	for _, room := range CanonicalRooms() {
		idx.add(room, nil)
	}

	for _, timetable := range timetables {
		if timetable == nil {
			continue
		}
		for i := range timetable.Lessons {
			lesson := &timetable.Lessons[i]
			if !lesson.WellFormed() {
				continue
			}
			for _, room := range Decode(lesson.Content.Room) {
				idx.add(room, lesson)
			}
		}
	}

	return idx
}

func (i *Index) add(room string, lesson *model.Lesson) {
	lessons, ok := i.byRoom[room]
	if !ok {
		i.order = append(i.order, room)
	}
	if lesson != nil {
		lessons = append(lessons, lesson)
	}
	i.byRoom[room] = lessons
}

// Rooms возвращает аудитории индекса: сначала канонические, затем встреченные
func (i Index) Rooms() []string {
	out := make([]string, len(i.order))
	copy(out, i.order)
	return out
}

func (i Index) Lessons(room string) []*model.Lesson {
	return i.byRoom[room]
}

// Occupant возвращает первое занятие в аудитории, идущее в момент instant
func (i Index) Occupant(room string, instant time.Time) *model.Lesson {
	for _, lesson := range i.byRoom[room] {
		if lesson.Contains(instant) {
			return lesson
		}
	}
	return nil
}

// Occupants возвращает текущее занятие (или nil) для каждой аудитории индекса
func (i Index) Occupants(instant time.Time) map[string]*model.Lesson {
	out := make(map[string]*model.Lesson, len(i.order))
	for _, room := range i.order {
		out[room] = i.Occupant(room, instant)
	}
	return out
}
