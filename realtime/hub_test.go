package realtime

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	go hub.Run()
	srv := httptest.NewServer(Handler(hub))
	t.Cleanup(func() {
		srv.Close()
		hub.Shutdown()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeEvent(t *testing.T, conn *websocket.Conn, eventType string, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	data, err := json.Marshal(Event{Type: eventType, Payload: raw})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func readEvent(conn *websocket.Conn, timeout time.Duration) (Event, bool) {
	conn.SetReadDeadline(time.Now().Add(timeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return Event{}, false
	}
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, false
	}
	return event, true
}

// waitForStatus reads events until a user_status for userID/status arrives.
func waitForStatus(t *testing.T, conn *websocket.Conn, userID, status string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		event, ok := readEvent(conn, time.Until(deadline))
		if !ok {
			break
		}
		if event.Type != EventUserStatus {
			continue
		}
		var payload StatusPayload
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		if payload.UserID == userID && payload.Status == status {
			return
		}
	}
	t.Fatalf("never saw user_status %s/%s", userID, status)
}

func identify(t *testing.T, hub *Hub, conn *websocket.Conn, userID string) {
	t.Helper()
	writeEvent(t, conn, EventUserOnline, userID)
	require.Eventually(t, func() bool { return hub.Online(userID) },
		2*time.Second, 10*time.Millisecond)
}

func TestIdentifySetsPresence(t *testing.T) {
	hub, srv := startHub(t)

	assert.False(t, hub.Online("u1"))

	conn := dial(t, srv)
	identify(t, hub, conn, "u1")

	assert.True(t, hub.Online("u1"))
	waitForStatus(t, conn, "u1", "online")
}

func TestLastRegistrationWins(t *testing.T) {
	hub, srv := startHub(t)

	first := dial(t, srv)
	identify(t, hub, first, "u1")

	sender := dial(t, srv)
	identify(t, hub, sender, "peer")

	second := dial(t, srv)
	writeEvent(t, second, EventUserOnline, "u1")
	// The sender sees u1 go online again once the re-registration landed.
	waitForStatus(t, sender, "u1", "online")

	writeEvent(t, sender, EventSendMessage, map[string]string{
		"recipientId": "u1",
		"content":     "ping",
	})

	// Only the most recent connection for u1 gets the relayed event.
	deadline := time.Now().Add(2 * time.Second)
	for {
		event, ok := readEvent(second, time.Until(deadline))
		require.True(t, ok, "second connection never received the message")
		if event.Type != EventReceiveMessage {
			continue
		}
		var payload map[string]string
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		assert.Equal(t, "ping", payload["content"])
		break
	}

	for {
		event, ok := readEvent(first, 300*time.Millisecond)
		if !ok {
			break
		}
		assert.NotEqual(t, EventReceiveMessage, event.Type,
			"stale connection must not receive relayed messages")
	}
}

func TestDisconnectBroadcastsOffline(t *testing.T) {
	hub, srv := startHub(t)

	watcher := dial(t, srv)
	identify(t, hub, watcher, "watcher")

	conn := dial(t, srv)
	identify(t, hub, conn, "u1")

	conn.Close()

	require.Eventually(t, func() bool { return !hub.Online("u1") },
		2*time.Second, 10*time.Millisecond)
	waitForStatus(t, watcher, "u1", "offline")
}

func TestSendToOfflineRecipientIsDropped(t *testing.T) {
	hub, srv := startHub(t)

	conn := dial(t, srv)
	identify(t, hub, conn, "u1")

	writeEvent(t, conn, EventSendMessage, map[string]string{
		"recipientId": "nobody",
		"content":     "into the void",
	})

	// No error frame, no echo; the connection stays usable.
	for {
		event, ok := readEvent(conn, 300*time.Millisecond)
		if !ok {
			break
		}
		assert.NotEqual(t, EventReceiveMessage, event.Type)
	}
	assert.True(t, hub.Online("u1"))
}

func TestReidentifyReleasesPreviousUser(t *testing.T) {
	hub, srv := startHub(t)

	watcher := dial(t, srv)
	identify(t, hub, watcher, "watcher")

	conn := dial(t, srv)
	identify(t, hub, conn, "a")
	identify(t, hub, conn, "b")

	// Switching identity gives up the old entry rather than leaving a
	// second one pointing at the same connection.
	require.Eventually(t, func() bool { return !hub.Online("a") },
		2*time.Second, 10*time.Millisecond)
	assert.True(t, hub.Online("b"))
	waitForStatus(t, watcher, "a", "offline")

	conn.Close()
	require.Eventually(t, func() bool { return !hub.Online("b") },
		2*time.Second, 10*time.Millisecond)

	// Forwards to either former identity must be plain drops; the hub
	// keeps serving afterwards.
	writeEvent(t, watcher, EventSendMessage, map[string]string{
		"recipientId": "a",
		"content":     "after disconnect",
	})
	writeEvent(t, watcher, EventSendMessage, map[string]string{
		"recipientId": "b",
		"content":     "after disconnect",
	})

	require.Eventually(t, func() bool { return hub.Online("watcher") },
		2*time.Second, 10*time.Millisecond)
}

func TestUnidentifiedConnectionCannotBeLookedUp(t *testing.T) {
	hub, srv := startHub(t)

	dial(t, srv)

	// Connected but never sent user_online.
	time.Sleep(50 * time.Millisecond)
	assert.False(t, hub.Online(""))
	assert.False(t, hub.Online("u1"))
}
