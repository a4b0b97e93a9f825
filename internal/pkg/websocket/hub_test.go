package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, 42, 7)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastReachesRoom(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)

	require.Eventually(t, func() bool { return hub.ClientsCount(42) == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(&Message{Type: TypeStatus, RequestID: 42, Data: "in_progress"})
	hub.Broadcast(&Message{Type: TypeStatus, RequestID: 99, Data: "elsewhere"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Message
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, TypeStatus, got.Type)
	assert.Equal(t, int64(42), got.RequestID)
	assert.Equal(t, "in_progress", got.Data)
}

func TestHub_InboundMessagesReachHandler(t *testing.T) {
	hub, srv := startHub(t)

	var mu sync.Mutex
	var gotRequest, gotUser int64
	var gotContent string
	hub.SetInbound(func(_ context.Context, requestID, userID int64, content string) error {
		mu.Lock()
		defer mu.Unlock()
		gotRequest, gotUser, gotContent = requestID, userID, content
		return nil
	})

	conn := dial(t, srv)
	require.NoError(t, conn.WriteJSON(map[string]string{"content": "Vòi nước vẫn rò rỉ"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotContent != ""
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int64(42), gotRequest)
	assert.Equal(t, int64(7), gotUser)
	assert.Equal(t, "Vòi nước vẫn rò rỉ", gotContent)
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv)
	require.Eventually(t, func() bool { return hub.ClientsCount(42) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientsCount(42) == 0 }, 2*time.Second, 10*time.Millisecond)
}
