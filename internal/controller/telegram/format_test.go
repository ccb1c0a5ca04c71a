package telegram

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/client"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/model"
	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/rooms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 3, 25, 9, 0, 0, 0, time.UTC)

func sampleBoard(vacation bool) client.Board {
	sub := 1
	lesson := &model.Lesson{
		StartDate: at.Add(-time.Hour),
		EndDate:   at.Add(time.Hour),
		Type:      model.LessonTypeTP,
		Content:   model.LessonContent{Room: "109-8", Teacher: "Mme Martin"},
		Group:     model.LessonGroup{Main: 2, Sub: &sub},
		Cohort:    model.CohortA2,
	}

	board := client.Board{At: at, WeekNumber: 13, Vacation: vacation}
	for _, zone := range rooms.Layout {
		status := client.ZoneStatus{Zone: zone}
		for _, room := range zone.Rooms {
			rs := client.RoomStatus{Room: room}
			if room == "109" || room == "108" {
				rs.Lesson = lesson
			}
			status.Rooms = append(status.Rooms, rs)
		}
		board.Zones = append(board.Zones, status)
	}
	return board
}

func TestFormatOccupant(t *testing.T) {
	board := sampleBoard(false)
	room, ok := board.Room("109")
	require.True(t, ok)

	assert.Equal(t, "Prise par A2 G2.1 · TP avec Mme Martin (08:00-10:00)", FormatOccupant(room.Lesson))
}

func TestFormatBoard(t *testing.T) {
	text := FormatBoard(sampleBoard(true))

	assert.Contains(t, text, "semaine 13")
	assert.Contains(t, text, "Vacances")
	assert.Contains(t, text, "17 salle(s) disponible(s)")
	assert.Contains(t, text, "🟢 205 : disponible")
	assert.Contains(t, text, "🔴 108 : Prise par A2 G2.1")
	assert.Contains(t, text, "AMPHITHÉÂTRES")
}

func TestFormatZone(t *testing.T) {
	text := FormatZone(sampleBoard(false), "roof2")

	assert.Contains(t, text, "205")
	assert.NotContains(t, text, "109")
	assert.NotContains(t, text, "Vacances")
}

func TestFormatBoardUnresolved(t *testing.T) {
	loading := client.Board{WeekNumber: client.WeekUnresolved}
	assert.Contains(t, FormatBoard(loading), "Chargement")

	failed := client.Board{WeekNumber: client.WeekUnresolved, Failure: "source unavailable"}
	assert.Contains(t, FormatBoard(failed), "source unavailable")
}

func TestFormatRoom(t *testing.T) {
	board := sampleBoard(false)

	assert.Equal(t, "🟢 205 est disponible", FormatRoom(board, "205"))
	assert.Contains(t, FormatRoom(board, "109"), "Mme Martin")
	assert.Contains(t, FormatRoom(board, "999"), "inconnue")
}

func TestParseRoomArgument(t *testing.T) {
	assert.Equal(t, "R46", ParseRoomArgument("/room r46"))
	assert.Equal(t, "109", ParseRoomArgument("/room   109  extra"))
	assert.Empty(t, ParseRoomArgument("/room"))
	assert.True(t, roomCommand.MatchString("/room 109"))
	assert.False(t, roomCommand.MatchString("/rooms"))
}

func TestZoneCallbacks(t *testing.T) {
	key, ok := ParseZoneCallback("zone:roof1")
	require.True(t, ok)
	assert.Equal(t, "roof1", key)

	key, ok = ParseZoneCallback(callbackAllZone)
	require.True(t, ok)
	assert.Empty(t, key)

	key, ok = ParseZoneCallback("refresh:theaters")
	require.True(t, ok)
	assert.Equal(t, "theaters", key)

	_, ok = ParseZoneCallback("zone:basement")
	assert.False(t, ok)
	_, ok = ParseZoneCallback("book_lesson:1")
	assert.False(t, ok)

	keyboard := ZoneKeyboard("rdc")
	require.Len(t, keyboard.InlineKeyboard, 3)
	assert.Equal(t, "• Rez-de-chaussée", keyboard.InlineKeyboard[0][0].Text)
	assert.Equal(t, "refresh:rdc", keyboard.InlineKeyboard[2][1].CallbackData)
	assert.Equal(t, "🔄 Mettre à jour l'affichage", keyboard.InlineKeyboard[2][1].Text)
}

func TestGenerateBoardImage(t *testing.T) {
	data, err := GenerateBoardImage(sampleBoard(true))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
}

func TestBoardFontHasAccents(t *testing.T) {
	for _, style := range []FontStyle{FontStyleRegular, FontStyleBold} {
		face := fontFace(cardFontSize, style)
		for _, r := range "éÉèàç" {
			_, ok := face.GlyphAdvance(r)
			assert.True(t, ok, "style %q lacks %q", style, r)
		}
	}
}
