package menus

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/keyboards"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	"github.com/vladimiradmaev/protein-tracker/internal/services"
	"github.com/vladimiradmaev/protein-tracker/internal/utils"
)

const mainMenuText = `🥩 *Protein Tracker*

Log what you eat and how much protein it has, and I'll keep track of your daily goal.

💡 Stuck? Ask for a suggestion and I'll recommend one food to close the gap.

Choose an action:`

const progressBarWidth = 10

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api *tgbotapi.BotAPI, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, mainMenuText)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// SendDay sends today's summary with a delete button per entry
func SendDay(api *tgbotapi.BotAPI, chatID int64, day *services.Day) error {
	msg := tgbotapi.NewMessage(chatID, FormatDay(day))
	msg.ReplyMarkup = keyboards.DayMenu(day.Entries)
	_, err := api.Send(msg)
	return err
}

// ProgressText is the one-line status under the totals
func ProgressText(p domain.Progress) string {
	if p.GoalReached {
		return "🎉 Goal reached!"
	}
	return fmt.Sprintf("You need %.1fg more protein today", p.Remaining)
}

// ProgressBar renders percent as a fixed-width bar
func ProgressBar(percent float64) string {
	filled := int(percent / 100 * progressBarWidth)
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("▓", filled) + strings.Repeat("░", progressBarWidth-filled)
}

// FormatDay renders the day as plain text; food names are user input and are not escaped
func FormatDay(day *services.Day) string {
	p := day.Progress()
	loc := day.Owner.Location

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Today, %s", day.LocalDay.Date)
	if loc != nil {
		fmt.Fprintf(&b, " (%s)", loc.String())
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "🥩 Protein: %s / %s g (%.0f%%)\n",
		utils.FormatGrams(p.Total), utils.FormatGrams(p.Goal), p.Percent)
	b.WriteString(ProgressBar(p.Percent))
	b.WriteString("\n")
	b.WriteString(ProgressText(p))
	b.WriteString("\n\n")

	if len(day.Entries) == 0 {
		b.WriteString("No entries yet. Tap \"Add food\" to log a meal.")
	} else {
		b.WriteString("🍽️ Entries:\n")
		for _, e := range day.Entries {
			b.WriteString(FormatEntry(e, loc))
			b.WriteString("\n")
		}
	}

	if day.Suggestion != "" {
		b.WriteString("\n\n💡 Suggestion:\n")
		b.WriteString(day.Suggestion)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatEntry renders one entry with its local time and meal slot
func FormatEntry(e domain.FoodEntry, loc *time.Location) string {
	return fmt.Sprintf("• %s %s: %s, %sg",
		utils.FormatClock(e.CreatedAt, loc), mealName(e.MealTime), e.FoodName, utils.FormatGrams(e.ProteinGrams))
}

// FormatRetryAfter is shown when the suggestion limit is hit
func FormatRetryAfter(seconds int) string {
	return fmt.Sprintf("Too many requests. Please try again in %d seconds.", seconds)
}

func mealName(slot domain.MealSlot) string {
	s := string(slot)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
