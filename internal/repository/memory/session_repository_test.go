package memory

import (
	"sync"
	"testing"
	"time"

	"juris-rag-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRefusesLiveDuplicate(t *testing.T) {
	repo := NewSessionRepository(time.Hour, time.Minute)

	require.NoError(t, repo.Add(store.NewSessionState("s1", 10)))
	assert.Error(t, repo.Add(store.NewSessionState("s1", 10)))
	assert.Equal(t, 1, repo.Count())

	got, ok := repo.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "s1", got.ID)
}

func TestDeleteNotifiesEviction(t *testing.T) {
	repo := NewSessionRepository(time.Hour, time.Minute)
	var mu sync.Mutex
	var evicted []*store.SessionState
	repo.OnEvicted(func(session *store.SessionState) {
		mu.Lock()
		evicted = append(evicted, session)
		mu.Unlock()
	})

	state := store.NewSessionState("s1", 10)
	require.NoError(t, repo.Add(state))
	assert.False(t, repo.DeleteIf(store.NewSessionState("s1", 10)))
	assert.True(t, repo.DeleteIf(state))

	_, ok := repo.Get("s1")
	assert.False(t, ok)
	mu.Lock()
	require.Len(t, evicted, 1)
	assert.Same(t, state, evicted[0])
	mu.Unlock()
}

func TestIdleSessionsExpire(t *testing.T) {
	repo := NewSessionRepository(30*time.Millisecond, 10*time.Millisecond)
	require.NoError(t, repo.Add(store.NewSessionState("s1", 10)))

	assert.Eventually(t, func() bool {
		_, ok := repo.Get("s1")
		return !ok
	}, time.Second, 5*time.Millisecond)

	assert.NoError(t, repo.Add(store.NewSessionState("s1", 10)))
}

func TestCountSkipsExpiredEntries(t *testing.T) {
	repo := NewSessionRepository(30*time.Millisecond, time.Hour)
	require.NoError(t, repo.Add(store.NewSessionState("s1", 10)))
	require.Equal(t, 1, repo.Count())

	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, repo.Count())
}

func TestTouchIgnoresReplacedState(t *testing.T) {
	repo := NewSessionRepository(30*time.Millisecond, time.Hour)
	old := store.NewSessionState("s1", 10)
	require.NoError(t, repo.Add(old))
	assert.True(t, repo.Touch(old))

	time.Sleep(50 * time.Millisecond)
	assert.False(t, repo.Touch(old))

	fresh := store.NewSessionState("s1", 10)
	require.NoError(t, repo.Add(fresh))
	assert.False(t, repo.Touch(old))
	assert.True(t, repo.Touch(fresh))

	got, ok := repo.Get("s1")
	require.True(t, ok)
	assert.Same(t, fresh, got)
}
