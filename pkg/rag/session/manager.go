package session

import (
	"errors"
	"fmt"
	"time"

	"juris-rag-be/internal/repository/memory"
	"juris-rag-be/pkg/store"
)

var ErrSessionActive = errors.New("session already connected")

// Manager owns the lifecycle of per-session conversation state.
type Manager struct {
	sessionRepo *memory.SessionRepository
	maxHistory  int
}

func NewManager(sessionRepo *memory.SessionRepository, maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = store.DefaultMaxHistory
	}
	return &Manager{sessionRepo: sessionRepo, maxHistory: maxHistory}
}

// Open creates empty state for sessionID. A session id can only be open once.
func (m *Manager) Open(sessionID string) (*store.SessionState, error) {
	state := store.NewSessionState(sessionID, m.maxHistory)
	if err := m.sessionRepo.Add(state); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionActive, sessionID)
	}
	return state, nil
}

func (m *Manager) Get(sessionID string) (*store.SessionState, bool) {
	return m.sessionRepo.Get(sessionID)
}

// Record appends a completed exchange and refreshes the idle timer.
func (m *Manager) Record(state *store.SessionState, query, answer string) {
	state.Append(store.Turn{Query: query, Answer: answer, At: time.Now()})
	m.sessionRepo.Touch(state)
}

// Touch refreshes the idle timer without changing history. State that has
// expired or been replaced is left as is.
func (m *Manager) Touch(state *store.SessionState) {
	m.sessionRepo.Touch(state)
}

// Close marks state closed and forgets it. A newer session that reused the
// id after state expired is left alone.
func (m *Manager) Close(state *store.SessionState) {
	if state.Status() != store.SessionClosed {
		_ = state.Transition(store.SessionClosed)
	}
	m.sessionRepo.DeleteIf(state)
}

// Active counts unexpired sessions.
func (m *Manager) Active() int {
	return m.sessionRepo.Count()
}
