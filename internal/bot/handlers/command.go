package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/state"
	"github.com/vladimiradmaev/protein-tracker/internal/utils"
)

const helpText = `Available commands:
/start - Show the main menu
/today - Show today's protein and entries
/add - Log a food
/suggest - Get a food suggestion for the rest of today
/timezone <Area/City> - Set your timezone, e.g. /timezone Europe/Berlin
/cancel - Stop what you are doing
/help - Show this message

To remove an entry, open /today and tap it.`

// CommandHandler handles bot commands
type CommandHandler struct {
	base
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{base: newBase(api, deps, stateManager, "bot_commands")}
}

// Handle processes bot commands
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	userID := message.From.ID
	chatID := message.Chat.ID
	h.logger.Debug("Handling command", "command", message.Command(), "user_id", userID)

	switch message.Command() {
	case "start":
		h.resetFlow(userID)
		return menus.SendMainMenu(h.api, chatID)
	case "help":
		return h.send(chatID, helpText)
	case "today":
		day, err := h.loadDay(ctx, userID)
		if err != nil {
			return h.replyError(chatID, err)
		}
		return menus.SendDay(h.api, chatID, day)
	case "add":
		return h.startAddFlow(chatID, userID)
	case "suggest":
		return h.suggest(ctx, chatID, userID)
	case "timezone":
		return h.handleTimezone(chatID, userID, message.CommandArguments())
	case "cancel":
		h.resetFlow(userID)
		return h.sendWithMarkup(chatID, "Cancelled.", keyboards.MainMenu())
	default:
		return h.send(chatID, "Unknown command. Use /help to see the available commands.")
	}
}

func (h *CommandHandler) handleTimezone(chatID, userID int64, arg string) error {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		current := h.owner(userID).Location
		name := "UTC"
		if current != nil {
			name = current.String()
		}
		return h.send(chatID, fmt.Sprintf("Your timezone is %s.\nSet another with /timezone <Area/City>, e.g. /timezone America/New_York", name))
	}

	loc, ok := utils.ResolveLocation(arg, nil)
	if !ok {
		return h.send(chatID, fmt.Sprintf("⚠️ Unknown timezone %q. Use a name like Europe/Berlin or America/New_York.", arg))
	}

	h.stateManager.SetTimezone(userID, loc.String())
	h.stateManager.DeleteTempData(userID, state.KeySuggestion)
	h.logger.Info("Timezone updated", "user_id", userID, "timezone", loc.String())
	return h.send(chatID, fmt.Sprintf("✅ Timezone set to %s. Your day now starts at local midnight.", loc.String()))
}
