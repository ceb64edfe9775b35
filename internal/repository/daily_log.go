package repository

import (
	"context"

	"github.com/vladimiradmaev/protein-tracker/internal/database"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/protein-tracker/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyLogRepository handles daily log persistence
type DailyLogRepository struct {
	db *gorm.DB
}

// NewDailyLogRepository creates a new daily log repository
func NewDailyLogRepository(db *gorm.DB) *DailyLogRepository {
	return &DailyLogRepository{db: db}
}

// UpsertDailyLog inserts (userID, date) with goal unless it exists, then reads
// the stored row. Concurrent callers converge on the same row.
func (r *DailyLogRepository) UpsertDailyLog(ctx context.Context, userID, date string, goal float64) (*domain.DailyLog, error) {
	db := r.db.WithContext(ctx)

	row := database.DailyLog{
		UserID:      userID,
		Date:        database.Date(date),
		GoalProtein: goal,
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return nil, apperrors.NewDatabaseError(err).
			WithContext("operation", "upsert_daily_log").
			WithContext("date", date)
	}

	var stored database.DailyLog
	if err := db.Where("user_id = ? AND date = ?", userID, database.Date(date)).First(&stored).Error; err != nil {
		return nil, apperrors.NewDatabaseError(err).
			WithContext("operation", "get_daily_log").
			WithContext("date", date)
	}

	return stored.ToDomain(), nil
}
