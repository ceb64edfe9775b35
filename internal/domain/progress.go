package domain

import "math"

// Progress holds the derived aggregates for one day; never persisted.
type Progress struct {
	Total       float64 `json:"total"`
	Goal        float64 `json:"goal"`
	Remaining   float64 `json:"remaining"`
	Percent     float64 `json:"percent"`
	GoalReached bool    `json:"goal_reached"`
}

// Summarize computes total, remaining and percent complete against goal.
func Summarize(entries []FoodEntry, goal float64) Progress {
	var total float64
	for _, e := range entries {
		total += e.ProteinGrams
	}

	percent := 100.0
	if goal > 0 {
		percent = math.Min(100, 100*total/goal)
	}
	remaining := math.Max(0, goal-total)

	return Progress{
		Total:       total,
		Goal:        goal,
		Remaining:   remaining,
		Percent:     percent,
		GoalReached: remaining == 0,
	}
}
