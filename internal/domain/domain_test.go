package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(grams ...float64) []FoodEntry {
	out := make([]FoodEntry, 0, len(grams))
	for _, g := range grams {
		out = append(out, FoodEntry{ProteinGrams: g})
	}
	return out
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		entries []FoodEntry
		goal    float64
		want    Progress
	}{
		{
			name: "nothing eaten",
			goal: 120,
			want: Progress{Total: 0, Goal: 120, Remaining: 120, Percent: 0},
		},
		{
			name:    "partway",
			entries: entries(20, 10),
			goal:    120,
			want:    Progress{Total: 30, Goal: 120, Remaining: 90, Percent: 25},
		},
		{
			name:    "exactly at goal",
			entries: entries(60, 60),
			goal:    120,
			want:    Progress{Total: 120, Goal: 120, Remaining: 0, Percent: 100, GoalReached: true},
		},
		{
			name:    "over goal is clamped",
			entries: entries(100, 80),
			goal:    120,
			want:    Progress{Total: 180, Goal: 120, Remaining: 0, Percent: 100, GoalReached: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.entries, tt.goal))
		})
	}
}

func TestLocalDayOfUsesLocalMidnight(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:30 UTC on Oct 18 is still Oct 17 in New York.
	now := time.Date(2026, 10, 18, 2, 30, 0, 0, time.UTC)
	day := LocalDayOf(now, ny)

	assert.Equal(t, "2026-10-17", day.Date)
	assert.Equal(t, time.Date(2026, 10, 17, 4, 0, 0, 0, time.UTC), day.Start.UTC())
	assert.Equal(t, time.Date(2026, 10, 18, 4, 0, 0, 0, time.UTC), day.End.UTC())
	assert.True(t, day.Contains(now))
	assert.False(t, day.Contains(day.End))
	assert.True(t, day.Contains(day.Start))
}

func TestLocalDayOfAcrossDSTChange(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// Clocks go back on 2026-10-25, making that day 25 hours long.
	day := LocalDayOf(time.Date(2026, 10, 25, 12, 0, 0, 0, berlin), berlin)
	assert.Equal(t, "2026-10-25", day.Date)
	assert.Equal(t, 25*time.Hour, day.End.Sub(day.Start))
}

func TestLocalDayOfNilLocationIsUTC(t *testing.T) {
	day := LocalDayOf(time.Date(2026, 1, 2, 23, 59, 0, 0, time.UTC), nil)
	assert.Equal(t, "2026-01-02", day.Date)
}

func TestParseProteinGrams(t *testing.T) {
	for in, want := range map[string]float64{"20": 20, " 12.5 ": 12.5, "7,5g": 7.5, "0": 0, "30G": 30} {
		got, err := ParseProteinGrams(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "-3", "NaN", "Inf"} {
		_, err := ParseProteinGrams(in)
		assert.Error(t, err, in)
	}
}

func TestNewEntryNormalize(t *testing.T) {
	name, slot, err := NewEntry{FoodName: "  Greek yogurt ", ProteinGrams: 20}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "Greek yogurt", name)
	assert.Equal(t, MealSnack, slot)

	_, slot, err = NewEntry{FoodName: "Eggs", ProteinGrams: 12, MealTime: "Breakfast"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, MealBreakfast, slot)

	_, _, err = NewEntry{FoodName: "   ", ProteinGrams: 1}.Normalize()
	assert.Error(t, err)
	_, _, err = NewEntry{FoodName: "x", ProteinGrams: math.NaN()}.Normalize()
	assert.Error(t, err)
	_, _, err = NewEntry{FoodName: "x", ProteinGrams: 1, MealTime: "brunch"}.Normalize()
	assert.Error(t, err)
}

func TestDecisionRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, Decision{Allowed: true}.RetryAfterSeconds())
	assert.Equal(t, 1, Decision{RetryAfter: 10 * time.Millisecond}.RetryAfterSeconds())
	assert.Equal(t, 3600, Decision{RetryAfter: time.Hour}.RetryAfterSeconds())
}
