package domain

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
)

// DailyLogStore persists one DailyLog per (user, date)
type DailyLogStore interface {
	// UpsertDailyLog inserts the log with goal when absent and returns the
	// stored row either way; an existing goal is never overwritten.
	UpsertDailyLog(ctx context.Context, userID, date string, goal float64) (*DailyLog, error)
}

// FoodEntryStore persists food entries, always scoped by owner
type FoodEntryStore interface {
	CreateEntry(ctx context.Context, entry *FoodEntry) error
	DeleteEntry(ctx context.Context, userID string, id uuid.UUID) error
	// ListEntriesBetween returns entries with start <= created_at < end, newest first.
	ListEntriesBetween(ctx context.Context, userID string, start, end time.Time) ([]FoodEntry, error)
	// ReassignEntries points the given entries at dailyLogID and reports rows changed.
	ReassignEntries(ctx context.Context, userID string, ids []uuid.UUID, dailyLogID uuid.UUID) (int64, error)
}

// SuggestionProvider is a text-completion service
type SuggestionProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, at least one when rejected.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed {
		return 0
	}
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// Limiter admits or rejects calls per caller key
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
