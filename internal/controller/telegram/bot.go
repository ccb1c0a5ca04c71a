package telegram

import (
	"context"
	"regexp"

	"github.com/Vexcited/WebTimetableLimogesIUTCS/internal/client"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// roomCommand "/room 109" без совпадения с "/rooms"
var roomCommand = regexp.MustCompile(`^/room(\s|$)`)

// BoardSource текущий снимок табло
type BoardSource interface {
	Snapshot() client.Board
}

type BotController struct {
	bot      *bot.Bot
	handlers *Handlers
	logger   *zap.Logger
}

func NewBotController(botInstance *bot.Bot, boards BoardSource, logger *zap.Logger) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: NewHandlers(boards, logger),
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/rooms", bot.MatchTypeExact, c.handlers.HandleRooms)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/board", bot.MatchTypeExact, c.handlers.HandleBoard)
	c.bot.RegisterHandlerRegexp(bot.HandlerTypeMessageText, roomCommand, c.handlers.HandleRoom)
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackZone, bot.MatchTypePrefix, c.handlers.HandleZoneCallback)
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, callbackRefresh, bot.MatchTypePrefix, c.handlers.HandleZoneCallback)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "rooms", Description: "🏫 Salles libres maintenant"},
		{Command: "board", Description: "🖼 Plan des salles (image)"},
		{Command: "room", Description: "🔎 État d'une salle : /room 109"},
		{Command: "help", Description: "❓ Aide"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает бота (блокируется до отмены ctx)
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
