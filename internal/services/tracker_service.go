package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/protein-tracker/internal/errors"
)

// MsgDeletionNotConfirmed rejects a delete issued without explicit confirmation
const MsgDeletionNotConfirmed = "Deletion must be confirmed"

// Day is one owner's resolved log for today with the entries that belong to it
type Day struct {
	Owner      domain.Owner
	LocalDay   domain.LocalDay
	Log        *domain.DailyLog
	Entries    []domain.FoodEntry // most recent first
	Suggestion string
	Repaired   int64
}

// Progress derives the aggregates from the current entries and the stored goal
func (d *Day) Progress() domain.Progress {
	return domain.Summarize(d.Entries, d.Log.GoalProtein)
}

// TrackerService resolves today's log and manages its entries
type TrackerService struct {
	logs        domain.DailyLogStore
	entries     domain.FoodEntryStore
	defaultGoal float64
	now         func() time.Time
	logger      *slog.Logger
}

// NewTrackerService creates a new tracker service
func NewTrackerService(logs domain.DailyLogStore, entries domain.FoodEntryStore, defaultGoal float64, logger *slog.Logger) *TrackerService {
	return &TrackerService{
		logs:        logs,
		entries:     entries,
		defaultGoal: defaultGoal,
		now:         time.Now,
		logger:      logger,
	}
}

// WithClock replaces the time source, for tests
func (s *TrackerService) WithClock(now func() time.Time) *TrackerService {
	s.now = now
	return s
}

// LoadToday upserts the owner's log for their local today, loads the entries
// created within the local day and repoints any that reference another log.
func (s *TrackerService) LoadToday(ctx context.Context, owner domain.Owner) (*Day, error) {
	today := domain.LocalDayOf(s.now(), owner.Location)
	log := s.logger.With("user_id", owner.UserID, "date", today.Date)

	dailyLog, err := s.logs.UpsertDailyLog(ctx, owner.UserID, today.Date, s.defaultGoal)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve daily log: %w", err)
	}

	entries, err := s.entries.ListEntriesBetween(ctx, owner.UserID, today.Start, today.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	var drifted []uuid.UUID
	for _, e := range entries {
		if e.DailyLogID != dailyLog.ID {
			drifted = append(drifted, e.ID)
		}
	}

	var repaired int64
	if len(drifted) > 0 {
		repaired, err = s.entries.ReassignEntries(ctx, owner.UserID, drifted, dailyLog.ID)
		if err != nil {
			log.Warn("Failed to repair drifted entries", "count", len(drifted), "error", err)
		} else {
			for i := range entries {
				entries[i].DailyLogID = dailyLog.ID
			}
			log.Info("Repaired drifted entries", "count", repaired)
		}
	}

	return &Day{
		Owner:    owner,
		LocalDay: today,
		Log:      dailyLog,
		Entries:  entries,
		Repaired: repaired,
	}, nil
}

// AddEntry validates input, stores it under day's log, then prepends it and
// drops the cached suggestion. day is untouched on failure.
func (s *TrackerService) AddEntry(ctx context.Context, day *Day, input domain.NewEntry) (*domain.FoodEntry, error) {
	name, slot, err := input.Normalize()
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	entry := &domain.FoodEntry{
		UserID:       day.Owner.UserID,
		DailyLogID:   day.Log.ID,
		FoodName:     name,
		ProteinGrams: input.ProteinGrams,
		MealTime:     slot,
	}
	if err := s.entries.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to add entry: %w", err)
	}

	day.Entries = append([]domain.FoodEntry{*entry}, day.Entries...)
	day.Suggestion = ""

	s.logger.Info("Entry added",
		"user_id", day.Owner.UserID,
		"entry_id", entry.ID,
		"protein_grams", entry.ProteinGrams,
		"meal_time", entry.MealTime)
	return entry, nil
}

// DeleteEntry removes the entry once confirmed. day is untouched on failure.
func (s *TrackerService) DeleteEntry(ctx context.Context, day *Day, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return apperrors.NewValidationError(MsgDeletionNotConfirmed)
	}

	if err := s.entries.DeleteEntry(ctx, day.Owner.UserID, id); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	kept := make([]domain.FoodEntry, 0, len(day.Entries))
	for _, e := range day.Entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	day.Entries = kept

	s.logger.Info("Entry deleted", "user_id", day.Owner.UserID, "entry_id", id)
	return nil
}
