package transports

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbo-tracker/src/config"
	"bbo-tracker/src/logger"
	"bbo-tracker/src/models"
)

var upgrader = websocket.Upgrader{}

// newTestServer runs a websocket server that writes the given frames to
// every client that connects, then keeps the connection open.
func newTestServer(t *testing.T, frames [][]byte) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}

		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))

	t.Cleanup(server.Close)
	return server
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	cfg := &config.Config{MConfig: &models.MConfig{Name: "test", LogLevel: "error"}}
	return logger.NewLogger(cfg, "test")
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestWebSocketClient_DeliversFrames(t *testing.T) {
	frames := [][]byte{
		[]byte(`{"eventId": 1}`),
		[]byte(`{"eventId": 2}`),
	}
	server := newTestServer(t, frames)

	received := make(chan []byte, 10)
	client := NewWebSocketClient(&models.MFeedConfig{Name: "test", Type: "websocket"}, testLogger(t), "test", wsURL(server), func(data []byte) {
		received <- data
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, client.Connect(ctx))
	defer client.Disconnect()
	assert.True(t, client.IsRunning())

	for _, want := range frames {
		select {
		case got := <-received:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for frame")
		}
	}
}

func TestWebSocketClient_FiltersEmptyFrames(t *testing.T) {
	frames := [][]byte{
		[]byte(``),
		[]byte(`{"eventId": 3}`),
	}
	server := newTestServer(t, frames)

	received := make(chan []byte, 10)
	client := NewWebSocketClient(&models.MFeedConfig{Name: "test", Type: "websocket"}, testLogger(t), "test", wsURL(server), func(data []byte) {
		received <- data
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, client.Connect(ctx))
	defer client.Disconnect()

	// The empty frame must never reach the callback; the first delivered
	// frame is the non-empty one.
	select {
	case got := <-received:
		assert.Equal(t, []byte(`{"eventId": 3}`), got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}

	select {
	case got := <-received:
		t.Fatalf("unexpected extra frame: %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWebSocketClient_ConnectFailure(t *testing.T) {
	client := NewWebSocketClient(&models.MFeedConfig{Name: "test", Type: "websocket"}, testLogger(t), "test", "ws://127.0.0.1:1/nope", func([]byte) {})

	err := client.Connect(context.Background())
	require.Error(t, err)
	assert.False(t, client.IsRunning())
}

func TestWebSocketClient_SendMessage(t *testing.T) {
	echoed := make(chan []byte, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		echoed <- msg
	}))
	t.Cleanup(server.Close)

	client := NewWebSocketClient(&models.MFeedConfig{Name: "test", Type: "websocket"}, testLogger(t), "test", wsURL(server), func([]byte) {})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, client.Connect(ctx))
	defer client.Disconnect()

	require.NoError(t, client.SendMessage([]byte("ping")))

	select {
	case got := <-echoed:
		assert.Equal(t, []byte("ping"), got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echo")
	}
}

func TestWebSocketClient_SendWithoutConnection(t *testing.T) {
	client := NewWebSocketClient(&models.MFeedConfig{Name: "test", Type: "websocket"}, testLogger(t), "test", "ws://unused", func([]byte) {})
	assert.Error(t, client.SendMessage([]byte("x")))
}
