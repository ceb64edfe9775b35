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

const maxFoodNameRunes = 200

// TextHandler handles free text sent during the add flow
type TextHandler struct {
	base
}

// NewTextHandler creates a new text handler
func NewTextHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{base: newBase(api, deps, stateManager, "bot_text")}
}

// Handle processes text messages
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message) error {
	userID := message.From.ID
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch h.stateManager.GetUserState(userID) {
	case state.WaitingForFoodName:
		return h.handleFoodName(chatID, userID, text)
	case state.WaitingForProtein:
		return h.handleProtein(chatID, userID, text)
	case state.WaitingForMealSlot:
		slot, err := domain.ParseMealSlot(text)
		if err != nil || text == "" {
			return h.sendWithMarkup(chatID, "Please pick a meal with the buttons below.", keyboards.MealSlots())
		}
		return h.finishEntry(ctx, chatID, userID, slot)
	default:
		return h.sendWithMarkup(chatID, "Please use the menu to choose an action.", keyboards.MainMenu())
	}
}

func (h *TextHandler) handleFoodName(chatID, userID int64, name string) error {
	if name == "" {
		return h.send(chatID, "Please type the name of the food.")
	}
	if len([]rune(name)) > maxFoodNameRunes {
		return h.send(chatID, fmt.Sprintf("That name is too long. Please keep it under %d characters.", maxFoodNameRunes))
	}

	h.stateManager.SetTempData(userID, state.KeyFoodName, name)
	h.stateManager.SetUserState(userID, state.WaitingForProtein)
	return h.sendWithMarkup(chatID,
		fmt.Sprintf("How many grams of protein are in %s?", name),
		cancelKeyboard())
}

func (h *TextHandler) handleProtein(chatID, userID int64, text string) error {
	grams, err := domain.ParseProteinGrams(text)
	if err != nil {
		return h.send(chatID, "Please enter the protein as a number of grams (e.g. 20 or 12.5).")
	}

	h.stateManager.SetTempData(userID, state.KeyProtein, utils.FormatGrams(grams))
	h.stateManager.SetUserState(userID, state.WaitingForMealSlot)
	return h.sendWithMarkup(chatID, "Which meal was it?", keyboards.MealSlots())
}

// startAddFlow begins the name, protein, meal sequence
func (b *base) startAddFlow(chatID, userID int64) error {
	b.stateManager.DeleteTempData(userID, state.KeyFoodName, state.KeyProtein)
	b.stateManager.SetUserState(userID, state.WaitingForFoodName)
	return b.sendWithMarkup(chatID, "🍽️ What did you eat?", cancelKeyboard())
}

// resetFlow abandons any add flow in progress
func (b *base) resetFlow(userID int64) {
	b.stateManager.ClearUserState(userID)
	b.stateManager.DeleteTempData(userID, state.KeyFoodName, state.KeyProtein)
}

// finishEntry stores the collected entry under today's log and shows the day
func (b *base) finishEntry(ctx context.Context, chatID, userID int64, slot domain.MealSlot) error {
	name, okName := b.stateManager.GetTempData(userID, state.KeyFoodName)
	rawGrams, okGrams := b.stateManager.GetTempData(userID, state.KeyProtein)
	if !okName || !okGrams {
		b.resetFlow(userID)
		return b.sendWithMarkup(chatID, "I lost track of that entry. Let's start over.", keyboards.MainMenu())
	}
	grams, err := domain.ParseProteinGrams(rawGrams)
	if err != nil {
		b.resetFlow(userID)
		return b.replyError(chatID, err)
	}

	day, err := b.loadDay(ctx, userID)
	if err != nil {
		return b.replyError(chatID, err)
	}

	entry, err := b.deps.Tracker.AddEntry(ctx, day, domain.NewEntry{
		FoodName:     name,
		ProteinGrams: grams,
		MealTime:     string(slot),
	})
	if err != nil {
		return b.replyError(chatID, err)
	}

	b.resetFlow(userID)
	b.cacheSuggestion(userID, day)

	if err := b.send(chatID, fmt.Sprintf("✅ Added %s (%sg protein) to %s.",
		entry.FoodName, utils.FormatGrams(entry.ProteinGrams), entry.MealTime)); err != nil {
		return err
	}
	return menus.SendDay(b.api, chatID, day)
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", keyboards.CallbackCancel),
		),
	)
}
