package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/menus"
	"github.com/vladimiradmaev/protein-tracker/internal/bot/state"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/protein-tracker/internal/errors"
	"github.com/vladimiradmaev/protein-tracker/internal/interfaces"
	"github.com/vladimiradmaev/protein-tracker/internal/services"
	"github.com/vladimiradmaev/protein-tracker/internal/utils"
)

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	Tracker         interfaces.TrackerServiceInterface
	Suggestions     interfaces.SuggestionServiceInterface
	DefaultLocation *time.Location
	Logger          *slog.Logger
}

// base carries what every handler needs to load a day and reply
type base struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
	logger       *slog.Logger
}

func newBase(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager, component string) base {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
		logger:       logger.With("component", component),
	}
}

// UserKey identifies a Telegram user to the store and the rate limiter
func UserKey(userID int64) string {
	return fmt.Sprintf("tg:%d", userID)
}

func (b *base) owner(userID int64) domain.Owner {
	loc := b.deps.DefaultLocation
	if tz, ok := b.stateManager.GetTimezone(userID); ok {
		loc, _ = utils.ResolveLocation(tz, loc)
	}
	return domain.Owner{UserID: UserKey(userID), Location: loc}
}

// loadDay resolves today and restores the suggestion cached for the same date
func (b *base) loadDay(ctx context.Context, userID int64) (*services.Day, error) {
	day, err := b.deps.Tracker.LoadToday(ctx, b.owner(userID))
	if err != nil {
		return nil, err
	}
	if cached, ok := b.stateManager.GetTempData(userID, state.KeySuggestion); ok {
		if date, text, found := strings.Cut(cached, "\n"); found && date == day.LocalDay.Date {
			day.Suggestion = text
		}
	}
	return day, nil
}

func (b *base) cacheSuggestion(userID int64, day *services.Day) {
	if day.Suggestion == "" {
		b.stateManager.DeleteTempData(userID, state.KeySuggestion)
		return
	}
	b.stateManager.SetTempData(userID, state.KeySuggestion, day.LocalDay.Date+"\n"+day.Suggestion)
}

func (b *base) send(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *base) sendWithMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

// suggest requests a suggestion for today and shows the refreshed day.
// A failure keeps the cached suggestion and only reports the error.
func (b *base) suggest(ctx context.Context, chatID, userID int64) error {
	day, err := b.loadDay(ctx, userID)
	if err != nil {
		return b.replyError(chatID, err)
	}

	if err := b.send(chatID, "💭 Thinking about what you could eat..."); err != nil {
		b.logger.Warn("Failed to send progress message", "error", err)
	}

	if _, err := b.deps.Suggestions.SuggestForDay(ctx, UserKey(userID), day); err != nil {
		return b.replyError(chatID, err)
	}
	b.cacheSuggestion(userID, day)
	return menus.SendDay(b.api, chatID, day)
}

// replyError turns err into a user-facing message. Internal details are logged only.
func (b *base) replyError(chatID int64, err error) error {
	var text string
	userFacing := true
	appErr, ok := apperrors.As(err)
	switch {
	case ok && appErr.Type == apperrors.ErrorTypeValidation:
		text = "⚠️ " + appErr.Message
	case ok && appErr.Type == apperrors.ErrorTypeRateLimit:
		text = "⏳ " + menus.FormatRetryAfter(appErr.RetryAfterSeconds())
	case ok && appErr.Type == apperrors.ErrorTypeNotFound:
		text = "That entry no longer exists."
	case ok:
		text = "❌ " + appErr.PublicMessage()
		userFacing = false
	default:
		text = "❌ " + apperrors.MsgInternal
		userFacing = false
	}
	if userFacing {
		b.logger.Info("Request rejected", "chat_id", chatID, "reason", err.Error())
	} else {
		b.logger.Error("Request failed", "chat_id", chatID, "error", err)
	}
	return b.send(chatID, text)
}
