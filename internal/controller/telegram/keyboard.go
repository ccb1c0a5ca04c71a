package telegram

import (
	"strings"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/rooms"
	"github.com/go-telegram/bot/models"
)

// refreshLabel перерисовывает сообщение по последнему снимку, новую загрузку не запускает
const refreshLabel = "🔄 Mettre à jour l'affichage"

// Callback data
const (
	callbackZone    = "zone:" // zone:rdc
	callbackAllZone = "zone:all"
	callbackRefresh = "refresh:" // перерисовка по текущему снимку: refresh:rdc, refresh:all
)

// KeyboardBuilder упрощает создание inline клавиатур
type KeyboardBuilder struct {
	rows [][]models.InlineKeyboardButton
}

func NewKeyboardBuilder() *KeyboardBuilder {
	return &KeyboardBuilder{rows: make([][]models.InlineKeyboardButton, 0)}
}

// Row добавляет ряд кнопок; пустой ряд игнорируется
func (k *KeyboardBuilder) Row(buttons ...models.InlineKeyboardButton) *KeyboardBuilder {
	if len(buttons) > 0 {
		k.rows = append(k.rows, buttons)
	}
	return k
}

func (k *KeyboardBuilder) Build() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: k.rows}
}

func button(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: callbackData}
}

// ZoneKeyboard кнопки переключения зон; текущая зона помечена точкой
func ZoneKeyboard(current string) *models.InlineKeyboardMarkup {
	kb := NewKeyboardBuilder()

	zones := make([]models.InlineKeyboardButton, 0, len(rooms.Layout))
	for _, zone := range rooms.Layout {
		zones = append(zones, button(markCurrent(zone.Label, zone.Key == current), callbackZone+zone.Key))
		if len(zones) == 2 {
			kb.Row(zones...)
			zones = make([]models.InlineKeyboardButton, 0, 2)
		}
	}
	kb.Row(zones...)

	kb.Row(
		button(markCurrent("Toutes", current == ""), callbackAllZone),
		button(refreshLabel, callbackRefresh+zoneOrAll(current)),
	)
	return kb.Build()
}

func markCurrent(label string, current bool) string {
	if current {
		return "• " + label
	}
	return label
}

func zoneOrAll(zone string) string {
	if zone == "" {
		return "all"
	}
	return zone
}

// ParseZoneCallback возвращает ключ зоны из callback data ("" для всех зон)
func ParseZoneCallback(data string) (string, bool) {
	var key string
	switch {
	case strings.HasPrefix(data, callbackZone):
		key = strings.TrimPrefix(data, callbackZone)
	case strings.HasPrefix(data, callbackRefresh):
		key = strings.TrimPrefix(data, callbackRefresh)
	default:
		return "", false
	}

	if key == "all" {
		return "", true
	}
	if _, ok := rooms.ZoneByKey(key); !ok {
		return "", false
	}
	return key, true
}
