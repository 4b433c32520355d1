package memory

import (
	"fmt"
	"sync"
	"time"

	"juris-rag-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live session state in process memory. Entries idle
// past the TTL are dropped by the cache janitor.
//
// go-cache replaces an expired entry on Add even before the janitor has
// removed it, and without firing OnEvicted. Touch and DeleteIf therefore only
// act on the exact state they are given, so a holder of stale state never
// clobbers the state that replaced it.
type SessionRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewSessionRepository(idleTTL, cleanupInterval time.Duration) *SessionRepository {
	if idleTTL <= 0 {
		idleTTL = time.Hour
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &SessionRepository{
		cache: cache.New(idleTTL, cleanupInterval),
	}
}

// OnEvicted registers a callback for expired or deleted sessions. It receives
// the evicted state, which may already have been replaced under its id.
func (r *SessionRepository) OnEvicted(fn func(session *store.SessionState)) {
	r.cache.OnEvicted(func(_ string, v interface{}) {
		if session, ok := v.(*store.SessionState); ok {
			fn(session)
		}
	})
}

// Add stores a new session and fails if one with the same id is live.
func (r *SessionRepository) Add(session *store.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.cache.Add(session.ID, session, cache.DefaultExpiration); err != nil {
		return fmt.Errorf("session %s already active", session.ID)
	}
	return nil
}

// Touch refreshes the idle TTL of session if it is still the live entry for
// its id. It reports whether the refresh happened.
func (r *SessionRepository) Touch(session *store.SessionState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, found := r.cache.Get(session.ID); !found || x != session {
		return false
	}
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
	return true
}

func (r *SessionRepository) Get(sessionID string) (*store.SessionState, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.SessionState), true
	}
	return nil, false
}

// DeleteIf removes session only if it is still the entry for its id. The
// eviction callback runs before it returns.
func (r *SessionRepository) DeleteIf(session *store.SessionState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if x, found := r.cache.Get(session.ID); !found || x != session {
		return false
	}
	r.cache.Delete(session.ID)
	return true
}

// Count returns the number of unexpired sessions. Expired entries still
// waiting for the janitor are not counted.
func (r *SessionRepository) Count() int {
	return len(r.cache.Items())
}
