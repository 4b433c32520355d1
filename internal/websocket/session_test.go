package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"juris-rag-be/internal/dto"
	"juris-rag-be/internal/pkg/logger"
	"juris-rag-be/internal/repository/memory"
	"juris-rag-be/pkg/rag/pipeline"
	"juris-rag-be/pkg/rag/session"
	"juris-rag-be/pkg/store"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errClosed = errors.New("use of closed connection")

type fakeConn struct {
	in        chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	out []dto.StreamEvent
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 16), closed: make(chan struct{})}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case b := <-f.in:
		return websocket.TextMessage, b, nil
	case <-f.closed:
		return 0, nil, errClosed
	}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-f.closed:
		return errClosed
	default:
	}
	if messageType != websocket.TextMessage {
		return nil
	}
	var ev dto.StreamEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	f.mu.Lock()
	f.out = append(f.out, ev)
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetReadLimit(int64)               {}
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) send(t *testing.T, frame dto.InboundFrame) {
	t.Helper()
	b, err := json.Marshal(frame)
	require.NoError(t, err)
	f.in <- b
}

func (f *fakeConn) events() []dto.StreamEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dto.StreamEvent(nil), f.out...)
}

func (f *fakeConn) types() []string {
	var out []string
	for _, e := range f.events() {
		out = append(out, e.Type)
	}
	return out
}

type fakeAnswerer struct {
	mu          sync.Mutex
	historySeen []int
	fail        bool
}

func (f *fakeAnswerer) Answer(ctx context.Context, sessionID, text string, history []store.Turn, onStatus pipeline.StatusFunc) (*dto.LegalQueryResponse, error) {
	f.mu.Lock()
	f.historySeen = append(f.historySeen, len(history))
	f.mu.Unlock()

	onStatus(pipeline.StageProcessing)
	onStatus(pipeline.StageSearching)
	if f.fail {
		return nil, errors.New("context canceled")
	}
	onStatus(pipeline.StageGenerating)
	return &dto.LegalQueryResponse{Answer: "resposta para " + text, Confidence: 0.5}, nil
}

type fixture struct {
	hub      *Hub
	sessions *session.Manager
	answerer *fakeAnswerer
}

func newFixture() *fixture {
	return newFixtureWithTTL(time.Hour)
}

// newFixtureWithTTL never runs the janitor, so expired entries stay in the
// cache until replaced.
func newFixtureWithTTL(idleTTL time.Duration) *fixture {
	sessions := session.NewManager(memory.NewSessionRepository(idleTTL, time.Hour), 10)
	answerer := &fakeAnswerer{}
	return &fixture{
		hub:      NewHub(sessions, answerer, logger.NewNopLogger()),
		sessions: sessions,
		answerer: answerer,
	}
}

func (fx *fixture) serve(conn *fakeConn, sessionID string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		ServeWs(fx.hub, conn, sessionID)
		close(done)
	}()
	return done
}

func waitForEvents(t *testing.T, conn *fakeConn, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(conn.events()) >= n }, 2*time.Second, 5*time.Millisecond)
}

func TestSessionEmitsStagedEventsInOrder(t *testing.T) {
	fx := newFixture()
	conn := newFakeConn()
	done := fx.serve(conn, "s1")

	conn.send(t, dto.InboundFrame{Type: dto.InboundPing})
	conn.send(t, dto.InboundFrame{Type: dto.InboundMessage, Content: "o que é dano moral?"})
	waitForEvents(t, conn, 6)

	assert.Equal(t, []string{"connected", "pong", "status", "status", "status", "answer"}, conn.types())
	evs := conn.events()
	assert.Equal(t, "processing", evs[2].Stage)
	assert.Equal(t, "searching", evs[3].Stage)
	assert.Equal(t, "generating", evs[4].Stage)
	for _, e := range evs {
		assert.Equal(t, "s1", e.SessionId)
	}

	state, ok := fx.sessions.Get("s1")
	require.True(t, ok)
	assert.Equal(t, 1, state.Len())
	assert.Equal(t, store.SessionIdle, state.Status())

	conn.Close()
	<-done
	_, ok = fx.sessions.Get("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, fx.hub.Count())
}

func TestSessionCarriesHistoryBetweenMessages(t *testing.T) {
	fx := newFixture()
	conn := newFakeConn()
	done := fx.serve(conn, "s1")

	conn.send(t, dto.InboundFrame{Type: dto.InboundMessage, Content: "primeira"})
	conn.send(t, dto.InboundFrame{Type: dto.InboundMessage, Content: "segunda"})
	waitForEvents(t, conn, 9)

	fx.answerer.mu.Lock()
	assert.Equal(t, []int{0, 1}, fx.answerer.historySeen)
	fx.answerer.mu.Unlock()

	conn.Close()
	<-done
}

func TestSecondConnectionIsRefused(t *testing.T) {
	fx := newFixture()
	first := newFakeConn()
	done := fx.serve(first, "s1")
	waitForEvents(t, first, 1)

	second := newFakeConn()
	ServeWs(fx.hub, second, "s1")

	require.Len(t, second.events(), 1)
	assert.Equal(t, dto.EventError, second.events()[0].Type)
	assert.Equal(t, MsgSessionActive, second.events()[0].Message)
	assert.Equal(t, 1, fx.hub.Count())

	first.Close()
	<-done
}

func TestFailuresKeepSessionOpen(t *testing.T) {
	fx := newFixture()
	fx.answerer.fail = true
	conn := newFakeConn()
	done := fx.serve(conn, "s1")

	conn.send(t, dto.InboundFrame{Type: dto.InboundMessage, Content: "   "})
	conn.in <- []byte("not json")
	conn.send(t, dto.InboundFrame{Type: dto.InboundMessage, Content: "pergunta"})
	waitForEvents(t, conn, 6)

	assert.Equal(t, []string{"connected", "error", "error", "status", "status", "error"}, conn.types())
	evs := conn.events()
	assert.Equal(t, MsgEmptyMessage, evs[1].Message)
	assert.Equal(t, MsgInvalidFrame, evs[2].Message)
	assert.Equal(t, MsgQueryFailed, evs[5].Message)

	state, ok := fx.sessions.Get("s1")
	require.True(t, ok)
	assert.Equal(t, store.SessionIdle, state.Status())
	assert.Equal(t, 0, state.Len())

	conn.Close()
	<-done
}

func TestHubDisconnectEndsSession(t *testing.T) {
	fx := newFixture()
	conn := newFakeConn()
	done := fx.serve(conn, "s1")
	waitForEvents(t, conn, 1)

	fx.hub.Disconnect("s1")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session loop did not exit")
	}
	_, ok := fx.sessions.Get("s1")
	assert.False(t, ok)
}

func TestExpiredSessionIdClosesOldConnectionOnReuse(t *testing.T) {
	fx := newFixtureWithTTL(30 * time.Millisecond)
	first := newFakeConn()
	firstDone := fx.serve(first, "s1")
	waitForEvents(t, first, 1)

	time.Sleep(50 * time.Millisecond)

	second := newFakeConn()
	secondDone := fx.serve(second, "s1")
	waitForEvents(t, second, 1)
	assert.Equal(t, dto.EventConnected, second.events()[0].Type)

	select {
	case <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatal("expired connection was left open")
	}
	assert.Equal(t, 1, fx.hub.Count())

	// The old loop's cleanup must not remove the new session.
	state, ok := fx.sessions.Get("s1")
	require.True(t, ok)
	assert.NotEqual(t, store.SessionClosed, state.Status())

	second.send(t, dto.InboundFrame{Type: dto.InboundMessage, Content: "pergunta"})
	waitForEvents(t, second, 5)
	assert.Equal(t, 1, state.Len())

	second.Close()
	<-secondDone
	assert.Equal(t, 0, fx.hub.Count())
}

func TestEvictClosesOnlyTheMatchingConnection(t *testing.T) {
	fx := newFixture()
	conn := newFakeConn()
	done := fx.serve(conn, "s1")
	waitForEvents(t, conn, 1)

	fx.hub.Evict(store.NewSessionState("s1", 10))
	select {
	case <-done:
		t.Fatal("connection closed for foreign state")
	case <-time.After(50 * time.Millisecond):
	}

	state, ok := fx.sessions.Get("s1")
	require.True(t, ok)
	fx.hub.Evict(state)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session loop did not exit")
	}
}
