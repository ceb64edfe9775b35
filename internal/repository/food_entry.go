package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/protein-tracker/internal/database"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/protein-tracker/internal/errors"
	"gorm.io/gorm"
)

// FoodEntryRepository handles food entry persistence. Every query is scoped by user.
type FoodEntryRepository struct {
	db *gorm.DB
}

// NewFoodEntryRepository creates a new food entry repository
func NewFoodEntryRepository(db *gorm.DB) *FoodEntryRepository {
	return &FoodEntryRepository{db: db}
}

// CreateEntry stores entry and fills in its generated ID and timestamp
func (r *FoodEntryRepository) CreateEntry(ctx context.Context, entry *domain.FoodEntry) error {
	row := database.FoodEntryFromDomain(entry)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return apperrors.NewDatabaseError(err).WithContext("operation", "create_entry")
	}
	*entry = row.ToDomain()
	return nil
}

// DeleteEntry removes the user's entry with id
func (r *FoodEntryRepository) DeleteEntry(ctx context.Context, userID string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&database.FoodEntry{})
	if result.Error != nil {
		return apperrors.NewDatabaseError(result.Error).WithContext("operation", "delete_entry")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("Entry")
	}
	return nil
}

// ListEntriesBetween returns the user's entries with start <= created_at < end, newest first
func (r *FoodEntryRepository) ListEntriesBetween(ctx context.Context, userID string, start, end time.Time) ([]domain.FoodEntry, error) {
	var rows []database.FoodEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start.UTC(), end.UTC()).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError(err).WithContext("operation", "list_entries")
	}

	entries := make([]domain.FoodEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].ToDomain())
	}
	return entries, nil
}

// ReassignEntries points the user's entries in ids at dailyLogID in one statement
func (r *FoodEntryRepository) ReassignEntries(ctx context.Context, userID string, ids []uuid.UUID, dailyLogID uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&database.FoodEntry{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("daily_log_id", dailyLogID)
	if result.Error != nil {
		return 0, apperrors.NewDatabaseError(result.Error).WithContext("operation", "reassign_entries")
	}
	return result.RowsAffected, nil
}
