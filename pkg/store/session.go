package store

import (
	"fmt"
	"sync"
	"time"
)

// DefaultMaxHistory bounds how many turns a session remembers.
const DefaultMaxHistory = 10

// SessionStatus is the transport state of a session.
type SessionStatus string

const (
	SessionConnected  SessionStatus = "connected"
	SessionIdle       SessionStatus = "idle"
	SessionProcessing SessionStatus = "processing"
	SessionClosed     SessionStatus = "closed"
)

var allowedTransitions = map[SessionStatus][]SessionStatus{
	SessionConnected:  {SessionIdle, SessionClosed},
	SessionIdle:       {SessionProcessing, SessionClosed},
	SessionProcessing: {SessionIdle, SessionClosed},
}

// SessionState is the per-session conversation memory. It is safe for
// concurrent use.
type SessionState struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	status     SessionStatus
	history    []Turn
	maxHistory int
	lastActive time.Time
}

func NewSessionState(id string, maxHistory int) *SessionState {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	now := time.Now()
	return &SessionState{
		ID:         id,
		CreatedAt:  now,
		status:     SessionConnected,
		history:    make([]Turn, 0, maxHistory),
		maxHistory: maxHistory,
		lastActive: now,
	}
}

// Append records a turn, evicting the oldest once the bound is reached.
func (s *SessionState) Append(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.At.IsZero() {
		t.At = time.Now()
	}
	if len(s.history) >= s.maxHistory {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, t)
	s.lastActive = t.At
}

// History returns a copy of the remembered turns, oldest first.
func (s *SessionState) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

func (s *SessionState) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

func (s *SessionState) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *SessionState) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Transition moves the session to next, rejecting moves the state machine
// does not allow. Closing releases the history buffer.
func (s *SessionState) Transition(next SessionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range allowedTransitions[s.status] {
		if allowed == next {
			s.status = next
			s.lastActive = time.Now()
			if next == SessionClosed {
				s.history = nil
			}
			return nil
		}
	}
	return fmt.Errorf("session %s: invalid transition %s -> %s", s.ID, s.status, next)
}
