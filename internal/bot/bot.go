package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/handlers"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/state"
)

const updateTimeout = 60

// Bot polls Telegram for updates and dispatches them to the handlers
type Bot struct {
	api           *tgbotapi.BotAPI
	updateHandler *handlers.UpdateHandler
	logger        *slog.Logger
}

// NewBot authorizes against the Bot API and wires the handlers
func NewBot(token string, deps handlers.Dependencies, stateManager state.StateManager, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return NewBotWithAPI(api, deps, stateManager, logger), nil
}

// NewBotWithEndpoint is NewBot against a custom Bot API endpoint such as a local server
func NewBotWithEndpoint(token, endpoint string, client *http.Client, deps handlers.Dependencies, stateManager state.StateManager, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return NewBotWithAPI(api, deps, stateManager, logger), nil
}

// NewBotWithAPI wires handlers around an authorized client
func NewBotWithAPI(api *tgbotapi.BotAPI, deps handlers.Dependencies, stateManager state.StateManager, logger *slog.Logger) *Bot {
	logger = logger.With("component", "bot")
	if deps.Logger == nil {
		deps.Logger = logger
	}
	logger.Info("Bot authorized", "username", api.Self.UserName)
	return &Bot{
		api:           api,
		updateHandler: handlers.NewUpdateHandler(api, deps, stateManager),
		logger:        logger,
	}
}

// HandleUpdate processes a single update
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	return b.updateHandler.Handle(ctx, update)
}

// Start long-polls for updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	b.logger.Info("Bot is now listening for updates")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Bot is shutting down")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil && update.Message.From != nil {
				b.logger.Debug("Received message", "user_id", update.Message.From.ID)
			}
			if err := b.HandleUpdate(ctx, update); err != nil {
				b.logger.Error("Error handling update", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}
