package telegram

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/client"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle определяет стиль шрифта
type FontStyle string

const (
	FontStyleRegular FontStyle = ""
	FontStyleBold    FontStyle = "bold"
)

// Константы шрифтов
const (
	titleFontSize = 18.0
	zoneFontSize  = 15.0
	cardFontSize  = 13.0
)

var (
	fontsMu     sync.Mutex
	cachedFonts = map[FontStyle]*opentype.Font{}
)

// Константы размеров и отступов
const (
	imageWidth   = 760
	headerHeight = 60
	zoneTitleH   = 30
	cardWidth    = 170
	cardHeight   = 64
	cardGap      = 14
	cardsPerRow  = 4
	cardRadius   = 8.0
	imagePadding = 20
)

// Цветовая схема
var (
	bgColor       = color.RGBA{245, 246, 248, 255}
	textColor     = color.RGBA{40, 44, 48, 255}
	mutedColor    = color.RGBA{120, 120, 120, 255}
	freeColor     = color.RGBA{133, 193, 85, 90}
	freeBorder    = color.RGBA{93, 150, 50, 255}
	takenColor    = color.RGBA{255, 182, 193, 255}
	takenBorder   = color.RGBA{120, 40, 50, 255}
	vacationColor = color.RGBA{255, 170, 0, 255}
)

// GenerateBoardImage рисует табло аудиторий в PNG
func GenerateBoardImage(board client.Board) ([]byte, error) {
	height := headerHeight + imagePadding
	for _, zone := range board.Zones {
		rows := (len(zone.Rooms) + cardsPerRow - 1) / cardsPerRow
		height += zoneTitleH + rows*(cardHeight+cardGap)
	}

	dc := gg.NewContext(imageWidth, height)
	dc.SetColor(bgColor)
	dc.Clear()

	drawBoardHeader(dc, board)

	y := float64(headerHeight)
	for _, zone := range board.Zones {
		loadFont(dc, zoneFontSize, FontStyleBold)
		dc.SetColor(textColor)
		dc.DrawStringAnchored(zone.Zone.Label, imageWidth/2, y+zoneTitleH/2, 0.5, 0.5)
		y += zoneTitleH

		loadFont(dc, cardFontSize)
		for i, room := range zone.Rooms {
			col := i % cardsPerRow
			row := i / cardsPerRow
			x := float64(imagePadding + col*(cardWidth+cardGap))
			cy := y + float64(row*(cardHeight+cardGap))
			drawRoomCard(dc, room, x, cy)
		}
		rows := (len(zone.Rooms) + cardsPerRow - 1) / cardsPerRow
		y += float64(rows * (cardHeight + cardGap))
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode board image: %w", err)
	}
	return buf.Bytes(), nil
}

// fontFace возвращает face стиля Go нужного размера или basicfont, если шрифт не разобрался
func fontFace(size float64, style FontStyle) font.Face {
	fontsMu.Lock()
	parsed, ok := cachedFonts[style]
	if !ok {
		data := goregular.TTF
		if style == FontStyleBold {
			data = gobold.TTF
		}
		// при ошибке разбора кешируется nil и дальше используется basicfont
		parsed, _ = opentype.Parse(data)
		cachedFonts[style] = parsed
	}
	fontsMu.Unlock()

	if parsed == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// loadFont ставит шрифт с латиницей и диакритикой (é, è, à)
func loadFont(dc *gg.Context, size float64, style ...FontStyle) {
	fontStyle := FontStyleRegular
	if len(style) > 0 {
		fontStyle = style[0]
	}
	dc.SetFontFace(fontFace(size, fontStyle))
}

func drawBoardHeader(dc *gg.Context, board client.Board) {
	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	title := fmt.Sprintf("Salles libres - semaine %d - %s", board.WeekNumber, board.At.Format("02.01.2006 15:04"))
	dc.DrawStringAnchored(title, imageWidth/2, headerHeight/3, 0.5, 0.5)

	if board.Vacation {
		loadFont(dc, cardFontSize)
		dc.SetColor(vacationColor)
		dc.DrawStringAnchored("Vacances : dernière semaine publiée", imageWidth/2, 2*headerHeight/3, 0.5, 0.5)
	}
}

func drawRoomCard(dc *gg.Context, room client.RoomStatus, x, y float64) {
	fill, border := freeColor, freeBorder
	if !room.Free() {
		fill, border = takenColor, takenBorder
	}

	dc.DrawRoundedRectangle(x, y, cardWidth, cardHeight, cardRadius)
	dc.SetColor(fill)
	dc.FillPreserve()
	dc.SetColor(border)
	dc.SetLineWidth(1.5)
	dc.Stroke()

	dc.SetColor(textColor)
	dc.DrawString(room.Room, x+10, y+20)

	if room.Free() {
		dc.SetColor(freeBorder)
		dc.DrawString("Disponible", x+10, y+42)
		return
	}

	dc.SetColor(mutedColor)
	dc.DrawString(room.Lesson.GroupLabel(), x+10, y+38)
	dc.DrawString(FormatTimeRange(room.Lesson.StartDate, room.Lesson.EndDate), x+10, y+54)
}
