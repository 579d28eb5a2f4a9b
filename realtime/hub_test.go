package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newTestClient registers a connection-less client directly against the
// registry, bypassing the websocket transport.
func newTestClient(h *Hub) *Client {
	c := &Client{hub: h, send: make(chan []byte, 16)}
	h.registerClient(c)
	return c
}

// receive drains exactly one queued frame or fails the test. Emission is
// synchronous, so no waiting is involved.
func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data := <-c.send:
		return data
	default:
		t.Fatal("expected a queued message, got none")
		return nil
	}
}

func receiveUpdate(t *testing.T, c *Client) UpdateEvent {
	t.Helper()
	var evt UpdateEvent
	require.NoError(t, json.Unmarshal(receive(t, c), &evt))
	return evt
}

func assertNothingQueued(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("expected no message, got %s", data)
	default:
	}
}

// drainAck discards the joined-event acknowledgment queued by joinRoom.
func join(t *testing.T, h *Hub, c *Client, eventID int) {
	t.Helper()
	h.joinRoom(c, eventID)
	var ack joinedEvent
	require.NoError(t, json.Unmarshal(receive(t, c), &ack))
	require.Equal(t, msgJoinedEvent, ack.Type)
	require.Equal(t, eventID, ack.EventID)
	require.Equal(t, RoomKey(eventID), ack.Room)
}

func TestRoomKey(t *testing.T) {
	assert.Equal(t, "event-7", RoomKey(7))
	assert.Equal(t, "event-123", RoomKey(123))
}

func TestEmitReachesOnlySubscribers(t *testing.T) {
	h := newTestHub()
	x := newTestClient(h)
	y := newTestClient(h)

	join(t, h, x, 7)

	h.Emit(7, KindMatchUpdate, MatchUpdate{
		MatchID: 42,
		Updates: map[string]interface{}{"status": "finished", "score_team1": 2},
	})

	evt := receiveUpdate(t, x)
	assert.Equal(t, KindMatchUpdate, evt.Type)
	assert.Equal(t, 7, evt.EventID)
	assert.False(t, evt.Timestamp.IsZero())

	payload, ok := evt.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(42), payload["match_id"])
	updates, ok := payload["updates"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "finished", updates["status"])
	assert.Equal(t, float64(2), updates["score_team1"])

	assertNothingQueued(t, x)
	assertNothingQueued(t, y)
}

func TestJoinIsIdempotent(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)

	join(t, h, c, 7)
	join(t, h, c, 7)
	require.Equal(t, 1, h.RoomSubscribers(7))

	h.Emit(7, KindStageUpdate, StageUpdate{StageID: 3, Updates: map[string]string{"name": "Playoffs"}})

	evt := receiveUpdate(t, c)
	assert.Equal(t, KindStageUpdate, evt.Type)
	// A double join must not produce a double delivery.
	assertNothingQueued(t, c)
}

func TestLeaveUnknownRoomIsNoop(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)

	join(t, h, c, 7)
	h.leaveRoom(c, 9)

	assert.Equal(t, 1, h.RoomSubscribers(7))
	assert.Equal(t, 0, h.RoomSubscribers(9))
}

func TestLeaveStopsDelivery(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)

	join(t, h, c, 7)
	h.leaveRoom(c, 7)

	h.Emit(7, KindBracketUpdate, nil)
	assertNothingQueued(t, c)
	assert.Equal(t, 0, h.RoomSubscribers(7))
}

func TestMultipleRoomsAreIndependent(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)

	join(t, h, c, 7)
	join(t, h, c, 9)

	h.Emit(9, KindMatchUpdate, MatchUpdate{MatchID: 1, Updates: map[string]string{"status": "live"}})
	evt := receiveUpdate(t, c)
	assert.Equal(t, 9, evt.EventID)
	assertNothingQueued(t, c)

	h.Emit(7, KindMatchUpdate, MatchUpdate{MatchID: 2, Updates: map[string]string{"status": "live"}})
	evt = receiveUpdate(t, c)
	assert.Equal(t, 7, evt.EventID)
	assertNothingQueued(t, c)
}

func TestEmitIsolatedBetweenEvents(t *testing.T) {
	h := newTestHub()
	a := newTestClient(h)
	b := newTestClient(h)

	join(t, h, a, 1)
	join(t, h, b, 2)

	h.Emit(1, KindBracketUpdate, nil)

	evt := receiveUpdate(t, a)
	assert.Equal(t, 1, evt.EventID)
	assertNothingQueued(t, b)
}

func TestDisconnectRemovesAllSubscriptions(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)

	join(t, h, c, 7)
	join(t, h, c, 9)

	h.unregisterClient(c)

	assert.Equal(t, 0, h.ClientCount())
	assert.Equal(t, 0, h.RoomSubscribers(7))
	assert.Equal(t, 0, h.RoomSubscribers(9))

	// A late emission to a room the client had joined must not error.
	h.Emit(7, KindMatchUpdate, MatchUpdate{MatchID: 5, Updates: map[string]string{"status": "finished"}})

	// Double unregister is a no-op.
	h.unregisterClient(c)
	assert.Equal(t, 0, h.ClientCount())
}

func TestEmissionOrderPreservedPerRoom(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)
	join(t, h, c, 7)

	h.Emit(7, KindMatchUpdate, MatchUpdate{MatchID: 1, Updates: map[string]string{"status": "live"}})
	h.Emit(7, KindMatchUpdate, MatchUpdate{MatchID: 1, Updates: map[string]string{"status": "finished"}})

	first := receiveUpdate(t, c)
	second := receiveUpdate(t, c)

	firstUpdates := first.Payload.(map[string]interface{})["updates"].(map[string]interface{})
	secondUpdates := second.Payload.(map[string]interface{})["updates"].(map[string]interface{})
	assert.Equal(t, "live", firstUpdates["status"])
	assert.Equal(t, "finished", secondUpdates["status"])
}

func TestEmitSnapshotExcludesLateJoiners(t *testing.T) {
	h := newTestHub()
	early := newTestClient(h)
	late := newTestClient(h)

	join(t, h, early, 7)
	h.Emit(7, KindBracketUpdate, nil)
	join(t, h, late, 7)

	receiveUpdate(t, early)
	assertNothingQueued(t, late)
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	h := newTestHub()
	stalled := &Client{hub: h, send: make(chan []byte, 1)}
	h.registerClient(stalled)
	h.joinRoom(stalled, 7) // ack fills the 1-slot buffer

	healthy := newTestClient(h)
	join(t, h, healthy, 7)

	// Must return immediately even though the stalled client cannot take
	// the frame, and the healthy subscriber still gets it.
	h.Emit(7, KindBracketUpdate, nil)

	evt := receiveUpdate(t, healthy)
	assert.Equal(t, KindBracketUpdate, evt.Type)
}

func TestEmitSkipsClosedSubscriber(t *testing.T) {
	h := newTestHub()
	gone := newTestClient(h)
	alive := newTestClient(h)

	join(t, h, gone, 7)
	join(t, h, alive, 7)

	// Simulate a disconnect landing between the snapshot and the send:
	// the client's channel is closed while it still sits in the room.
	gone.closeSend()

	h.Emit(7, KindMatchUpdate, MatchUpdate{MatchID: 1, Updates: map[string]string{"status": "live"}})

	evt := receiveUpdate(t, alive)
	assert.Equal(t, KindMatchUpdate, evt.Type)
}

func TestEmitDuringSubscriberChurn(t *testing.T) {
	h := newTestHub()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				h.Emit(7, KindBracketUpdate, nil)
			}
		}
	}()

	// Register, join and tear down subscribers while broadcasts are in
	// flight. A disconnect racing a send must never panic the emitter.
	for i := 0; i < 200; i++ {
		batch := make([]*Client, 0, 5)
		for j := 0; j < 5; j++ {
			c := &Client{hub: h, send: make(chan []byte, 1)}
			h.registerClient(c)
			h.joinRoom(c, 7)
			batch = append(batch, c)
		}
		for _, c := range batch {
			h.unregisterClient(c)
		}
	}

	close(stop)
	wg.Wait()
	assert.Equal(t, 0, h.RoomSubscribers(7))
}

func TestMalformedClientMessagesAreDropped(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)

	c.handleMessage([]byte("not json"))
	c.handleMessage([]byte(`{"type":"join-event","event_id":"seven"}`))
	c.handleMessage([]byte(`{"type":"join-event"}`))
	c.handleMessage([]byte(`{"type":"join-event","event_id":-1}`))
	c.handleMessage([]byte(`{"type":"teleport","event_id":7}`))

	assert.Equal(t, 0, h.RoomSubscribers(7))
	assertNothingQueued(t, c)
}

func TestJoinViaClientMessage(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)

	c.handleMessage([]byte(`{"type":"join-event","event_id":7}`))
	require.Equal(t, 1, h.RoomSubscribers(7))

	var ack joinedEvent
	require.NoError(t, json.Unmarshal(receive(t, c), &ack))
	assert.Equal(t, "joined-event", ack.Type)
	assert.Equal(t, "event-7", ack.Room)

	c.handleMessage([]byte(`{"type":"leave-event","event_id":7}`))
	assert.Equal(t, 0, h.RoomSubscribers(7))
}

func TestShutdownClosesAllClients(t *testing.T) {
	h := newTestHub()
	go h.Run()

	c := &Client{hub: h, send: make(chan []byte, 16)}
	h.Register <- c

	join(t, h, c, 7)

	h.Shutdown()
	h.Shutdown() // second call must be safe

	// The send channel is closed once the run loop drains the done signal.
	for range c.send {
	}
	assert.Equal(t, 0, h.ClientCount())
}

func TestConnectionAfterShutdownIsRejected(t *testing.T) {
	h := newTestHub()
	h.Shutdown()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		// Must return promptly instead of blocking on a dead run loop.
		h.HandleConnection(conn)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Equal(t, 0, h.ClientCount())
}
