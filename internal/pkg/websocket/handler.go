package websocket

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SetAllowedOrigins restricts browser origins. An empty list allows all.
func SetAllowedOrigins(origins []string) {
	if len(origins) == 0 {
		upgrader.CheckOrigin = func(*http.Request) bool { return true }
		return
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// Serve upgrades the request and subscribes the caller to a service request.
// Authorization must already have been checked.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, requestID, userID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 64),
		userID:    userID,
		requestID: requestID,
		logger:    h.logger,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return fmt.Errorf("hub is shut down")
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("requestID", requestID).
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
	return nil
}
