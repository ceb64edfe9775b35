package database

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	"gorm.io/gorm"
)

// Date is a calendar day stored in a DATE column and carried as YYYY-MM-DD.
type Date string

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	return string(d), nil
}

// Scan implements sql.Scanner. Drivers return DATE columns as time.Time or text.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case time.Time:
		*d = Date(v.Format(domain.DayFormat))
	case string:
		*d = Date(trimDay(v))
	case []byte:
		*d = Date(trimDay(string(v)))
	case nil:
		*d = ""
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}

func trimDay(s string) string {
	if len(s) > len(domain.DayFormat) {
		return s[:len(domain.DayFormat)]
	}
	return s
}

// DailyLog is the per-user, per-day row. (user_id, date) is unique.
type DailyLog struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      string    `gorm:"not null;uniqueIndex:uidx_daily_logs_user_date,priority:1"`
	Date        Date      `gorm:"type:date;not null;uniqueIndex:uidx_daily_logs_user_date,priority:2"`
	GoalProtein float64   `gorm:"not null"`
	CreatedAt   time.Time
}

func (l *DailyLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.CreatedAt = l.CreatedAt.UTC()
	return nil
}

func (l *DailyLog) ToDomain() *domain.DailyLog {
	return &domain.DailyLog{
		ID:          l.ID,
		UserID:      l.UserID,
		Date:        string(l.Date),
		GoalProtein: l.GoalProtein,
	}
}

type FoodEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       string    `gorm:"not null;index:idx_food_entries_user_created,priority:1"`
	DailyLogID   uuid.UUID `gorm:"type:uuid;index"`
	FoodName     string    `gorm:"not null"`
	ProteinGrams float64   `gorm:"not null"`
	MealTime     string    `gorm:"not null;default:snack"`
	CreatedAt    time.Time `gorm:"not null;index:idx_food_entries_user_created,priority:2"`
}

func (e *FoodEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = tx.NowFunc()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return nil
}

func (e *FoodEntry) ToDomain() domain.FoodEntry {
	return domain.FoodEntry{
		ID:           e.ID,
		UserID:       e.UserID,
		DailyLogID:   e.DailyLogID,
		FoodName:     e.FoodName,
		ProteinGrams: e.ProteinGrams,
		MealTime:     domain.MealSlot(e.MealTime),
		CreatedAt:    e.CreatedAt.UTC(),
	}
}

// FoodEntryFromDomain copies a domain entry into its row form
func FoodEntryFromDomain(e *domain.FoodEntry) *FoodEntry {
	return &FoodEntry{
		ID:           e.ID,
		UserID:       e.UserID,
		DailyLogID:   e.DailyLogID,
		FoodName:     e.FoodName,
		ProteinGrams: e.ProteinGrams,
		MealTime:     string(e.MealTime),
		CreatedAt:    e.CreatedAt,
	}
}

// Models lists every table managed by AutoMigrate
func Models() []interface{} {
	return []interface{}{&DailyLog{}, &FoodEntry{}}
}
