package client

import (
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/rooms"
)

// RoomStatus аудитория и занятие в ней (nil, если свободна)
type RoomStatus struct {
	Room   string
	Lesson *model.Lesson
}

func (r RoomStatus) Free() bool {
	return r.Lesson == nil
}

type ZoneStatus struct {
	Zone  rooms.Zone
	Rooms []RoomStatus
}

// Board снимок табло свободных аудиторий
type Board struct {
	At         time.Time
	WeekNumber int
	Vacation   bool
	Failure    string
	Zones      []ZoneStatus
}

// Resolved сообщает, определена ли текущая неделя
func (b Board) Resolved() bool {
	return b.WeekNumber != WeekUnresolved
}

// FreeCount число свободных аудиторий на табло
func (b Board) FreeCount() int {
	count := 0
	for _, zone := range b.Zones {
		for _, room := range zone.Rooms {
			if room.Free() {
				count++
			}
		}
	}
	return count
}

// Room ищет аудиторию на табло
func (b Board) Room(id string) (RoomStatus, bool) {
	for _, zone := range b.Zones {
		for _, room := range zone.Rooms {
			if room.Room == id {
				return room, true
			}
		}
	}
	return RoomStatus{}, false
}

func (e *Engine) buildBoard() Board {
	occupants := e.Occupants.Get()

	board := Board{
		At:         e.Clock.Get(),
		WeekNumber: e.CurrentWeek.Get(),
		Vacation:   e.Vacation.Get(),
		Failure:    e.Failure.Get(),
		Zones:      make([]ZoneStatus, 0, len(rooms.Layout)),
	}
	for _, zone := range rooms.Layout {
		status := ZoneStatus{Zone: zone, Rooms: make([]RoomStatus, 0, len(zone.Rooms))}
		for _, room := range zone.Rooms {
			status.Rooms = append(status.Rooms, RoomStatus{Room: room, Lesson: occupants[room]})
		}
		board.Zones = append(board.Zones, status)
	}
	return board
}

// Snapshot текущее табло; безопасно вызывать из любой горутины
func (e *Engine) Snapshot() Board {
	return e.Board.Get()
}
