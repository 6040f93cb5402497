package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/DryKillLogic/stremio-account-bootstrapper/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const pingInterval = 30 * time.Second

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("WS upgrade failed", "err", err)
		return
	}

	client := &Client{conn: conn, send: make(chan WSMessage, 256)}
	s.AddClient(client)
	defer func() {
		s.RemoveClient(client)
		conn.Close()
	}()

	logger.Debug("WS client connected", "remote", r.RemoteAddr)

	// Replay the log history so a late client sees what happened.
	s.sendLogHistory(client)

	// Read loop (Client -> Server). The frontend only sends commands;
	// a read error means the peer is gone and we close the connection
	// to unblock the write loop.
	go func() {
		for {
			var msg WSMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Debug("WS read error", "err", err)
				}
				conn.Close()
				return
			}

			switch msg.Type {
			case "get_log_history":
				s.sendLogHistory(client)
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	// Write loop (Server -> Client)
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case msg, ok := <-client.send:
			if !ok {
				// Channel closed by RemoveClient
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

func (s *Server) sendLogHistory(client *Client) {
	history := logger.GetHistory()
	payload, _ := json.Marshal(history)

	select {
	case client.send <- WSMessage{Type: "log_history", Payload: payload}:
	default:
	}
}
