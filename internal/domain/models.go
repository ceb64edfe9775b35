package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DayFormat is the layout of a calendar day (YYYY-MM-DD)
const DayFormat = "2006-01-02"

// Owner identifies who is asking and where "today" is
type Owner struct {
	UserID   string
	Location *time.Location
}

// DailyLog is the single per-user, per-day record holding the protein goal
type DailyLog struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"` // YYYY-MM-DD in the owner's timezone
	GoalProtein float64   `json:"goal_protein"`
}

// MealSlot is the meal an entry belongs to
type MealSlot string

const (
	MealBreakfast MealSlot = "breakfast"
	MealLunch     MealSlot = "lunch"
	MealDinner    MealSlot = "dinner"
	MealSnack     MealSlot = "snack"
	MealOther     MealSlot = "other"
)

// MealSlots lists the slots in display order
var MealSlots = []MealSlot{MealBreakfast, MealLunch, MealDinner, MealSnack, MealOther}

// ParseMealSlot accepts any casing; an empty value means snack.
func ParseMealSlot(s string) (MealSlot, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return MealSnack, nil
	}
	for _, slot := range MealSlots {
		if string(slot) == s {
			return slot, nil
		}
	}
	return "", fmt.Errorf("unknown meal slot %q", s)
}

// FoodEntry is one logged food item
type FoodEntry struct {
	ID           uuid.UUID `json:"id"`
	UserID       string    `json:"user_id"`
	DailyLogID   uuid.UUID `json:"daily_log_id"`
	FoodName     string    `json:"food_name"`
	ProteinGrams float64   `json:"protein_grams"`
	MealTime     MealSlot  `json:"meal_time"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewEntry is the user input for adding a food entry
type NewEntry struct {
	FoodName     string
	ProteinGrams float64
	MealTime     string
}

// Normalize validates the input and returns the cleaned name and slot.
func (n NewEntry) Normalize() (string, MealSlot, error) {
	name := strings.TrimSpace(n.FoodName)
	if name == "" {
		return "", "", fmt.Errorf("food name is required")
	}
	if err := ValidateProteinGrams(n.ProteinGrams); err != nil {
		return "", "", err
	}
	slot, err := ParseMealSlot(n.MealTime)
	if err != nil {
		return "", "", err
	}
	return name, slot, nil
}

// ValidateProteinGrams requires a finite, non-negative amount
func ValidateProteinGrams(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("protein grams must be a number")
	}
	if v < 0 {
		return fmt.Errorf("protein grams must not be negative")
	}
	return nil
}

// ParseProteinGrams parses user-typed grams such as "20", "12.5" or "7,5g".
func ParseProteinGrams(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSuffix(s, "g")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, fmt.Errorf("protein grams are required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("protein grams must be a number")
	}
	if err := ValidateProteinGrams(v); err != nil {
		return 0, err
	}
	return v, nil
}

// EntrySummary is the name/protein pair sent to the suggestion provider
type EntrySummary struct {
	FoodName     string  `json:"food_name"`
	ProteinGrams float64 `json:"protein_grams"`
}

// Summaries projects entries onto their name and protein
func Summaries(entries []FoodEntry) []EntrySummary {
	out := make([]EntrySummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, EntrySummary{FoodName: e.FoodName, ProteinGrams: e.ProteinGrams})
	}
	return out
}
