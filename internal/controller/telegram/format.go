package telegram

import (
	"fmt"
	"strings"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/client"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
)

// FormatTimeRange форматирует диапазон времени занятия
func FormatTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04"))
}

// FormatOccupant описывает занятие в аудитории: группа, тип, преподаватель
func FormatOccupant(lesson *model.Lesson) string {
	text := fmt.Sprintf("Prise par %s", lesson.GroupLabel())
	details := string(lesson.Type)
	if lesson.Content.Teacher != "" {
		details += " avec " + lesson.Content.Teacher
	}
	if details != "" {
		text += " · " + details
	}
	return text + " (" + FormatTimeRange(lesson.StartDate, lesson.EndDate) + ")"
}

// FormatBoard текстовое табло свободных аудиторий
func FormatBoard(board client.Board) string {
	return FormatZone(board, "")
}

// FormatZone табло одной зоны; пустой ключ означает все зоны
func FormatZone(board client.Board, zoneKey string) string {
	if !board.Resolved() {
		if board.Failure != "" {
			return "❌ Impossible de déterminer la semaine actuelle : " + board.Failure
		}
		return "⏳ Chargement de la semaine actuelle..."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏫 Salles libres, semaine %d, %s\n", board.WeekNumber, board.At.Format("02.01.2006 15:04"))
	if board.Vacation {
		sb.WriteString("🏖 Vacances : affichage de la dernière semaine publiée\n")
	}
	fmt.Fprintf(&sb, "✅ %d salle(s) disponible(s)\n", board.FreeCount())

	for _, zone := range board.Zones {
		if zoneKey != "" && zone.Zone.Key != zoneKey {
			continue
		}
		fmt.Fprintf(&sb, "\n%s\n", strings.ToUpper(zone.Zone.Label))
		for _, room := range zone.Rooms {
			if room.Free() {
				fmt.Fprintf(&sb, "🟢 %s : disponible\n", room.Room)
				continue
			}
			fmt.Fprintf(&sb, "🔴 %s : %s\n", room.Room, FormatOccupant(room.Lesson))
		}
	}
	return sb.String()
}

// FormatRoom статус одной аудитории
func FormatRoom(board client.Board, id string) string {
	room, ok := board.Room(id)
	if !ok {
		return fmt.Sprintf("❓ Salle %s inconnue", id)
	}
	if room.Free() {
		return fmt.Sprintf("🟢 %s est disponible", room.Room)
	}
	return fmt.Sprintf("🔴 %s : %s", room.Room, FormatOccupant(room.Lesson))
}
