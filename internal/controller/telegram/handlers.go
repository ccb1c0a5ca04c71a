package telegram

import (
	"bytes"
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Commandes :\n\n" +
	"/rooms - Salles libres maintenant\n" +
	"/board - Plan des salles en image\n" +
	"/room <salle> - État d'une salle (ex. /room 109)\n" +
	"/help - Afficher cette aide"

// Handlers содержит зависимости обработчиков команд
type Handlers struct {
	boards BoardSource
	logger *zap.Logger
}

func NewHandlers(boards BoardSource, logger *zap.Logger) *Handlers {
	return &Handlers{boards: boards, logger: logger}
}

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, "👋 Bonjour !\n\nJe montre les salles libres de l'IUT en temps réel.\n\n"+helpText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleRooms отправляет текстовое табло
func (h *Handlers) HandleRooms(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        FormatBoard(h.boards.Snapshot()),
		ReplyMarkup: ZoneKeyboard(""),
	})
	if err != nil {
		h.logger.Error("Failed to send board", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// HandleBoard отправляет табло картинкой
func (h *Handlers) HandleBoard(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	board := h.boards.Snapshot()
	if !board.Resolved() {
		h.sendMessage(ctx, b, chatID, FormatBoard(board))
		return
	}

	imageData, err := GenerateBoardImage(board)
	if err != nil {
		h.logger.Error("Failed to generate board image", zap.Error(err))
		h.sendMessage(ctx, b, chatID, "❌ Impossible de générer l'image. Essayez /rooms.")
		return
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID: chatID,
		Photo:  &models.InputFileUpload{Filename: "rooms.png", Data: bytes.NewReader(imageData)},
	})
	if err != nil {
		h.logger.Error("Failed to send board image", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// HandleRoom обрабатывает /room <salle>
func (h *Handlers) HandleRoom(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	room := ParseRoomArgument(update.Message.Text)
	if room == "" {
		h.sendMessage(ctx, b, chatID, "Usage : /room <salle>, par exemple /room 109")
		return
	}
	h.sendMessage(ctx, b, chatID, FormatRoom(h.boards.Snapshot(), room))
}

// ParseRoomArgument достаёт номер аудитории из "/room 109"
func ParseRoomArgument(text string) string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return ""
	}
	return strings.ToUpper(fields[1])
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
