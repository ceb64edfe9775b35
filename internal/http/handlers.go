package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/vladimiradmaev/protein-tracker/internal/domain"
	apperrors "github.com/vladimiradmaev/protein-tracker/internal/errors"
	"github.com/vladimiradmaev/protein-tracker/internal/interfaces"
	"github.com/vladimiradmaev/protein-tracker/internal/services"
)

const maxBodyBytes = 64 << 10

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the JSON API
type Handler struct {
	tracker     interfaces.TrackerServiceInterface
	suggestions interfaces.SuggestionServiceInterface
	health      Pinger
	errors      *apperrors.Handler
	logger      *slog.Logger
}

func NewHandler(tracker interfaces.TrackerServiceInterface, suggestions interfaces.SuggestionServiceInterface, health Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		tracker:     tracker,
		suggestions: suggestions,
		health:      health,
		errors:      apperrors.NewHandler(logger),
		logger:      logger,
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.errors.Handle(r.Context(), err)
	writeAppError(w, err)
}

type suggestionResponse struct {
	Suggestion string `json:"suggestion"`
}

// HandleSuggestion proxies a suggestion request; unauthenticated and rate limited per client IP
func (h *Handler) HandleSuggestion(w http.ResponseWriter, r *http.Request) {
	req, err := services.DecodeSuggestionRequest(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	text, err := h.suggestions.Suggest(r.Context(), getClientIP(r), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, suggestionResponse{Suggestion: text})
}

type dayResponse struct {
	Log      *domain.DailyLog   `json:"log"`
	Entries  []domain.FoodEntry `json:"entries"`
	Progress domain.Progress    `json:"progress"`
	Repaired int64              `json:"repaired"`
}

func (h *Handler) loadDay(w http.ResponseWriter, r *http.Request) (*services.Day, bool) {
	owner, ok := ownerFrom(r.Context())
	if !ok {
		h.fail(w, r, apperrors.NewUnauthorizedError(msgAuthRequired))
		return nil, false
	}
	day, err := h.tracker.LoadToday(r.Context(), owner)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return day, true
}

// HandleToday returns today's log, its entries and progress
func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	day, ok := h.loadDay(w, r)
	if !ok {
		return
	}

	entries := day.Entries
	if entries == nil {
		entries = []domain.FoodEntry{}
	}
	writeJSON(w, http.StatusOK, dayResponse{
		Log:      day.Log,
		Entries:  entries,
		Progress: day.Progress(),
		Repaired: day.Repaired,
	})
}

type addEntryRequest struct {
	FoodName     string   `json:"food_name"`
	ProteinGrams *float64 `json:"protein_grams"`
	MealTime     string   `json:"meal_time"`
}

type entryResponse struct {
	Entry    *domain.FoodEntry `json:"entry,omitempty"`
	Progress domain.Progress   `json:"progress"`
}

// HandleAddEntry adds a food entry to today's log
func (h *Handler) HandleAddEntry(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.fail(w, r, apperrors.NewValidationError("Invalid request body"))
		return
	}
	if req.ProteinGrams == nil {
		h.fail(w, r, apperrors.NewValidationError("protein grams are required"))
		return
	}
	input := domain.NewEntry{
		FoodName:     req.FoodName,
		ProteinGrams: *req.ProteinGrams,
		MealTime:     req.MealTime,
	}
	if _, _, err := input.Normalize(); err != nil {
		h.fail(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	day, ok := h.loadDay(w, r)
	if !ok {
		return
	}

	entry, err := h.tracker.AddEntry(r.Context(), day, input)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, entryResponse{Entry: entry, Progress: day.Progress()})
}

// HandleDeleteEntry deletes an entry; requires ?confirm=true
func (h *Handler) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, apperrors.NewValidationError("Invalid entry id"))
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if !confirmed {
		h.fail(w, r, apperrors.NewValidationError(services.MsgDeletionNotConfirmed))
		return
	}

	day, ok := h.loadDay(w, r)
	if !ok {
		return
	}

	if err := h.tracker.DeleteEntry(r.Context(), day, id, confirmed); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entryResponse{Progress: day.Progress()})
}

// HandleHealth reports whether the store is reachable
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
