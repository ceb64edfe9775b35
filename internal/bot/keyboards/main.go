package keyboards

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	"github.com/vladimiradmaev/protein-tracker/internal/utils"
)

// Callback data
const (
	CallbackAddEntry     = "add_entry"
	CallbackToday        = "today"
	CallbackSuggest      = "suggest"
	CallbackMainMenu     = "main_menu"
	CallbackCancel       = "cancel"
	CallbackCancelDelete = "cancel_delete"

	PrefixMeal          = "meal:"
	PrefixDelete        = "delete:"
	PrefixConfirmDelete = "confirm_delete:"
)

// Telegram rejects button labels longer than this in practice
const maxLabelRunes = 40

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add food", CallbackAddEntry),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Today", CallbackToday),
			tgbotapi.NewInlineKeyboardButtonData("💡 Suggestion", CallbackSuggest),
		),
	)
}

// MealSlots lets the user pick the meal for a new entry
func MealSlots() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 3)
	for _, slot := range domain.MealSlots {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(mealLabel(slot), PrefixMeal+string(slot)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", CallbackCancel),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// DayMenu lists a delete button per entry followed by the day actions
func DayMenu(entries []domain.FoodEntry) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entries)+2)
	for _, e := range entries {
		label := fmt.Sprintf("🗑️ %s (%sg)", truncate(e.FoodName), utils.FormatGrams(e.ProteinGrams))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, PrefixDelete+e.ID.String()),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add food", CallbackAddEntry),
			tgbotapi.NewInlineKeyboardButtonData("💡 Suggestion", CallbackSuggest),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", CallbackMainMenu),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ConfirmDelete asks before removing an entry
func ConfirmDelete(id uuid.UUID) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Delete", PrefixConfirmDelete+id.String()),
			tgbotapi.NewInlineKeyboardButtonData("✖️ Keep", CallbackCancelDelete),
		),
	)
}

// BackToMenu is a single main menu button
func BackToMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Main menu", CallbackMainMenu),
		),
	)
}

// ParseID extracts the entry id following prefix in callback data
func ParseID(data, prefix string) (uuid.UUID, bool) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func mealLabel(slot domain.MealSlot) string {
	s := string(slot)
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(name string) string {
	r := []rune(name)
	if len(r) <= maxLabelRunes {
		return name
	}
	return string(r[:maxLabelRunes-1]) + "…"
}
