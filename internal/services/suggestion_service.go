package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/protein-tracker/internal/errors"
)

// ErrEmptyCompletion is returned when a provider answers without any text
var ErrEmptyCompletion = errors.New("provider returned no text")

const (
	msgInvalidRemaining = "Invalid remainingProtein value"
	msgInvalidEntries   = "Invalid todayEntries value"
	msgInvalidBody      = "Invalid request body"
)

// SuggestionRequest is what the caller knows about today
type SuggestionRequest struct {
	RemainingProtein float64               `json:"remainingProtein"`
	TodayEntries     []domain.EntrySummary `json:"todayEntries"`
}

// Validate requires a finite, non-negative remaining amount
func (r SuggestionRequest) Validate() error {
	if math.IsNaN(r.RemainingProtein) || math.IsInf(r.RemainingProtein, 0) || r.RemainingProtein < 0 {
		return apperrors.NewValidationError(msgInvalidRemaining)
	}
	return nil
}

// DecodeSuggestionRequest parses a JSON body, rejecting a remainingProtein that
// is not a number and todayEntries that is not a list.
func DecodeSuggestionRequest(r io.Reader) (SuggestionRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return SuggestionRequest{}, apperrors.NewValidationError(msgInvalidBody)
	}

	var req SuggestionRequest

	remaining := bytes.TrimSpace(raw["remainingProtein"])
	if len(remaining) == 0 || bytes.Equal(remaining, []byte("null")) {
		return SuggestionRequest{}, apperrors.NewValidationError(msgInvalidRemaining)
	}
	if err := json.Unmarshal(remaining, &req.RemainingProtein); err != nil {
		return SuggestionRequest{}, apperrors.NewValidationError(msgInvalidRemaining)
	}

	entries := bytes.TrimSpace(raw["todayEntries"])
	if len(entries) == 0 || entries[0] != '[' {
		return SuggestionRequest{}, apperrors.NewValidationError(msgInvalidEntries)
	}
	if err := json.Unmarshal(entries, &req.TodayEntries); err != nil {
		return SuggestionRequest{}, apperrors.NewValidationError(msgInvalidEntries)
	}

	if err := req.Validate(); err != nil {
		return SuggestionRequest{}, err
	}
	return req, nil
}

// BuildSuggestionPrompt renders the deterministic prompt sent to the provider
func BuildSuggestionPrompt(req SuggestionRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "A person needs %.1fg more protein today to reach their daily goal.\n\n", req.RemainingProtein)

	if len(req.TodayEntries) > 0 {
		sb.WriteString("Today they have eaten:\n")
		for _, e := range req.TodayEntries {
			fmt.Fprintf(&sb, "- %s (%sg protein)\n", e.FoodName, strconv.FormatFloat(e.ProteinGrams, 'f', -1, 64))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`Suggest ONE specific, simple meal or snack they can eat right now to help reach the protein goal. Include:
1. The food or meal name
2. Approximate protein content
3. Why it is a good choice

Keep it concise (2-3 sentences max) and practical. Focus on common, easy-to-find foods.`)

	return sb.String()
}

// SuggestionService proxies rate-limited suggestion requests to a provider
type SuggestionService struct {
	provider domain.SuggestionProvider
	limiter  domain.Limiter
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(provider domain.SuggestionProvider, limiter domain.Limiter, timeout time.Duration, logger *slog.Logger) *SuggestionService {
	return &SuggestionService{
		provider: provider,
		limiter:  limiter,
		timeout:  timeout,
		logger:   logger,
	}
}

// Suggest validates req, charges callerID one request and asks the provider
// for a suggestion. Provider details travel in the error's internal fields;
// the caller logs them.
func (s *SuggestionService) Suggest(ctx context.Context, callerID string, req SuggestionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	decision, err := s.limiter.Allow(ctx, callerID)
	if err != nil {
		return "", apperrors.NewInternalError(err).WithContext("caller", callerID)
	}
	if !decision.Allowed {
		return "", apperrors.NewRateLimitError(decision.RetryAfter).WithContext("caller", callerID)
	}

	prompt := BuildSuggestionPrompt(req)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.provider.Complete(callCtx, prompt)
	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = ErrEmptyCompletion
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "", apperrors.NewTimeoutError(err, "suggestion").
			WithContext("provider", s.provider.Name()).
			WithContext("duration", time.Since(start).String())
	case err != nil:
		return "", apperrors.NewExternalAPIError(err, s.provider.Name()).
			WithContext("duration", time.Since(start).String())
	}

	s.logger.Info("Suggestion generated",
		"caller", callerID,
		"provider", s.provider.Name(),
		"duration", time.Since(start))
	return text, nil
}

// SuggestForDay builds the request from a loaded day and caches the result on it.
// A failed request leaves any previous suggestion in place.
func (s *SuggestionService) SuggestForDay(ctx context.Context, callerID string, day *Day) (string, error) {
	req := SuggestionRequest{
		RemainingProtein: day.Progress().Remaining,
		TodayEntries:     domain.Summaries(day.Entries),
	}
	text, err := s.Suggest(ctx, callerID, req)
	if err != nil {
		return "", err
	}
	day.Suggestion = text
	return text, nil
}
