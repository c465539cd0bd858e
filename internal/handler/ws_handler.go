package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"lobbychat/internal/app/chat"
	"lobbychat/internal/pkg/logx"
)

// HandleWebSocket upgrades the request and runs the connection until it closes.
// The handler goroutine becomes the connection's read loop.
func HandleWebSocket(manager *chat.Manager, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		client, err := manager.Attach(conn)
		if err != nil {
			logx.Warn("WebSocket connection refused during shutdown", "error", err.Error())
			closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = conn.WriteMessage(websocket.CloseMessage, closeMsg)
			_ = conn.Close()
			return
		}

		go client.WritePump()

		client.ReadPump()
	}
}
