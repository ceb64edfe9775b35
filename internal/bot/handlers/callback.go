package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/state"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	"github.com/vladimiradmaev/protein-tracker/internal/utils"
)

// CallbackHandler handles inline keyboard callbacks
type CallbackHandler struct {
	base
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{base: newBase(api, deps, stateManager, "bot_callbacks")}
}

// Handle processes callback queries
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	// Answer callback query to remove loading state
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		h.logger.Warn("Failed to answer callback query", "error", err)
	}

	userID := query.From.ID
	chatID := query.Message.Chat.ID
	data := query.Data

	switch {
	case data == keyboards.CallbackAddEntry:
		return h.startAddFlow(chatID, userID)
	case data == keyboards.CallbackToday:
		return h.showDay(ctx, chatID, userID)
	case data == keyboards.CallbackSuggest:
		return h.suggest(ctx, chatID, userID)
	case data == keyboards.CallbackMainMenu, data == keyboards.CallbackCancel:
		h.resetFlow(userID)
		return menus.SendMainMenu(h.api, chatID)
	case data == keyboards.CallbackCancelDelete:
		return h.showDay(ctx, chatID, userID)
	case strings.HasPrefix(data, keyboards.PrefixMeal):
		return h.handleMealSlot(ctx, chatID, userID, strings.TrimPrefix(data, keyboards.PrefixMeal))
	case strings.HasPrefix(data, keyboards.PrefixConfirmDelete):
		return h.handleConfirmDelete(ctx, chatID, userID, data)
	case strings.HasPrefix(data, keyboards.PrefixDelete):
		return h.handleDeleteRequest(ctx, chatID, userID, data)
	default:
		h.logger.Warn("Unknown callback", "data", data, "user_id", userID)
		return nil
	}
}

func (h *CallbackHandler) showDay(ctx context.Context, chatID, userID int64) error {
	day, err := h.loadDay(ctx, userID)
	if err != nil {
		return h.replyError(chatID, err)
	}
	return menus.SendDay(h.api, chatID, day)
}

func (h *CallbackHandler) handleMealSlot(ctx context.Context, chatID, userID int64, raw string) error {
	if h.stateManager.GetUserState(userID) != state.WaitingForMealSlot {
		return h.sendWithMarkup(chatID, "That entry was already saved or cancelled.", keyboards.MainMenu())
	}
	slot, err := domain.ParseMealSlot(raw)
	if err != nil {
		return h.sendWithMarkup(chatID, "Please pick a meal with the buttons below.", keyboards.MealSlots())
	}
	return h.finishEntry(ctx, chatID, userID, slot)
}

// handleDeleteRequest asks for confirmation before anything is removed
func (h *CallbackHandler) handleDeleteRequest(ctx context.Context, chatID, userID int64, data string) error {
	id, ok := keyboards.ParseID(data, keyboards.PrefixDelete)
	if !ok {
		return h.send(chatID, "That entry no longer exists.")
	}

	day, err := h.loadDay(ctx, userID)
	if err != nil {
		return h.replyError(chatID, err)
	}

	for _, e := range day.Entries {
		if e.ID == id {
			text := fmt.Sprintf("Delete %s (%sg protein)?", e.FoodName, utils.FormatGrams(e.ProteinGrams))
			return h.sendWithMarkup(chatID, text, keyboards.ConfirmDelete(id))
		}
	}
	return h.send(chatID, "That entry is no longer in today's log.")
}

func (h *CallbackHandler) handleConfirmDelete(ctx context.Context, chatID, userID int64, data string) error {
	id, ok := keyboards.ParseID(data, keyboards.PrefixConfirmDelete)
	if !ok {
		return h.send(chatID, "That entry no longer exists.")
	}

	day, err := h.loadDay(ctx, userID)
	if err != nil {
		return h.replyError(chatID, err)
	}

	if err := h.deps.Tracker.DeleteEntry(ctx, day, id, true); err != nil {
		return h.replyError(chatID, err)
	}

	if err := h.send(chatID, "🗑️ Entry deleted."); err != nil {
		return err
	}
	return menus.SendDay(h.api, chatID, day)
}
