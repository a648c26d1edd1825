package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/practice-engine/internal/channels"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// pongWait bounds how long a silent subscriber is kept
const pongWait = 60 * time.Second

// StreamMessage is a control frame on the room event stream
type StreamMessage struct {
	Type string `json:"type"`
	Room string `json:"room,omitempty"`
	Data string `json:"data,omitempty"`
}

// handleRoomEvents subscribes a UI client to the room's data channel.
// While connected the websocket replaces the room's default channel.
func (s *Server) handleRoomEvents(w http.ResponseWriter, r *http.Request) {
	room := pathParam(r, "name")
	if _, err := s.manager.GetRoom(room); err != nil {
		respondServiceError(w, err, "open room events", "room", room)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err, "room", room)
		return
	}

	ch := channels.NewWebSocketChannel(conn)
	defer ch.Close()

	if err := s.manager.AttachChannel(room, ch); err != nil {
		// room removed between the check and the upgrade
		s.sendStreamMessage(r, ch, StreamMessage{Type: "error", Room: room, Data: "room not found"})
		return
	}
	defer s.manager.DetachChannel(room, ch)

	slog.Info("room events websocket connected", "room", room)
	s.sendStreamMessage(r, ch, StreamMessage{Type: "connected", Room: room})

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// the stream is one-way; reads only detect disconnects and answer pings
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err, "room", room)
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg StreamMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			slog.Debug("invalid message format", "error", err)
			continue
		}
		if msg.Type == "ping" {
			s.sendStreamMessage(r, ch, StreamMessage{Type: "pong", Room: room})
		}
	}

	slog.Info("room events websocket disconnected", "room", room)
}

func (s *Server) sendStreamMessage(r *http.Request, ch *channels.WebSocketChannel, msg StreamMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal stream message", "error", err)
		return
	}
	if err := ch.Publish(r.Context(), data); err != nil {
		slog.Debug("failed to send stream message", "error", err)
	}
}
