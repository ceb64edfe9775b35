package state

import "sync"

// User states
const (
	None               = "none"
	WaitingForFoodName = "waiting_for_food_name"
	WaitingForProtein  = "waiting_for_protein"
	WaitingForMealSlot = "waiting_for_meal_slot"
)

// Temp data keys
const (
	KeyFoodName   = "food_name"
	KeyProtein    = "protein_grams"
	KeySuggestion = "suggestion"
)

// StateManager keeps per-user conversation state for the bot
type StateManager interface {
	SetUserState(userID int64, state string)
	GetUserState(userID int64) string
	ClearUserState(userID int64)
	SetTempData(userID int64, key, value string)
	GetTempData(userID int64, key string) (string, bool)
	DeleteTempData(userID int64, keys ...string)
	ClearTempData(userID int64)
	SetTimezone(userID int64, tz string)
	GetTimezone(userID int64) (string, bool)
}

// Manager manages user states and temporary data in memory
type Manager struct {
	userStates map[int64]string
	tempData   map[int64]map[string]string
	timezones  map[int64]string
	mu         sync.RWMutex
}

// NewManager creates a new state manager
func NewManager() *Manager {
	return &Manager{
		userStates: make(map[int64]string),
		tempData:   make(map[int64]map[string]string),
		timezones:  make(map[int64]string),
	}
}

// SetUserState sets the state for a user
func (m *Manager) SetUserState(userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userStates[userID] = state
}

// GetUserState gets the state for a user
func (m *Manager) GetUserState(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, exists := m.userStates[userID]
	if !exists {
		return None
	}
	return state
}

// ClearUserState clears the state for a user
func (m *Manager) ClearUserState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.userStates, userID)
}

// SetTempData sets temporary data for a user
func (m *Manager) SetTempData(userID int64, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tempData[userID] == nil {
		m.tempData[userID] = make(map[string]string)
	}
	m.tempData[userID][key] = value
}

// GetTempData gets temporary data for a user
func (m *Manager) GetTempData(userID int64, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userData, exists := m.tempData[userID]
	if !exists {
		return "", false
	}
	value, exists := userData[key]
	return value, exists
}

// DeleteTempData removes the given keys for a user
func (m *Manager) DeleteTempData(userID int64, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.tempData[userID], key)
	}
}

// ClearTempData clears all temporary data for a user
func (m *Manager) ClearTempData(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tempData, userID)
}

// SetTimezone remembers the user's IANA timezone
func (m *Manager) SetTimezone(userID int64, tz string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timezones[userID] = tz
}

// GetTimezone returns the user's timezone if one was set
func (m *Manager) GetTimezone(userID int64) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tz, exists := m.timezones[userID]
	return tz, exists
}
