package telegram

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleZoneCallback перерисовывает табло для выбранной зоны
func (h *Handlers) HandleZoneCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	zoneKey, ok := ParseZoneCallback(callback.Data)
	if !ok {
		h.answerCallback(ctx, b, callback.ID, "❓ Zone inconnue")
		return
	}

	msg := callback.Message.Message
	if msg == nil {
		h.answerCallback(ctx, b, callback.ID, "")
		return
	}

	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        FormatZone(h.boards.Snapshot(), zoneKey),
		ReplyMarkup: ZoneKeyboard(zoneKey),
	})
	// "message is not modified" при повторном нажатии не считаем ошибкой
	if err != nil && !isMessageNotModified(err) {
		h.logger.Error("Failed to edit board message",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.String("zone", zoneKey),
			zap.Error(err))
	}

	h.answerCallback(ctx, b, callback.ID, "")
}

func (h *Handlers) answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		h.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

func isMessageNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
