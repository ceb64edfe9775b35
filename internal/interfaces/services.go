package interfaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	"github.com/vladimiradmaev/protein-tracker/internal/services"
)

// TrackerServiceInterface defines the contract for daily log and entry operations
type TrackerServiceInterface interface {
	LoadToday(ctx context.Context, owner domain.Owner) (*services.Day, error)
	AddEntry(ctx context.Context, day *services.Day, input domain.NewEntry) (*domain.FoodEntry, error)
	DeleteEntry(ctx context.Context, day *services.Day, id uuid.UUID, confirmed bool) error
}

// SuggestionServiceInterface defines the contract for rate-limited suggestions
type SuggestionServiceInterface interface {
	Suggest(ctx context.Context, callerID string, req services.SuggestionRequest) (string, error)
	SuggestForDay(ctx context.Context, callerID string, day *services.Day) (string, error)
}

var (
	_ TrackerServiceInterface    = (*services.TrackerService)(nil)
	_ SuggestionServiceInterface = (*services.SuggestionService)(nil)
	_ domain.SuggestionProvider  = (*services.AIService)(nil)
)
