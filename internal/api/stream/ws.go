package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientMessage is a message sent by a WebSocket client
type ClientMessage struct {
	Type string `json:"type"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Client message types
const (
	ClientPing = "ping"
	ClientMove = "move"
)

// ServeWS upgrades the request and streams sub over a WebSocket. Inbound
// ping and move messages are forwarded to h on behalf of the subscriber;
// a rejected or malformed message is answered with an error event to this
// client only. The subscription is always closed on return.
func ServeWS(w http.ResponseWriter, r *http.Request, h *session.Handler, sub *session.Subscription, logger *slog.Logger) {
	defer sub.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	logger = logger.With(
		slog.String("room_id", string(sub.RoomID)),
		slog.String("player_id", string(sub.PlayerID)))

	// replies to this client only, written by the writer loop below
	replies := make(chan model.RoomEvent, 8)
	readerDone := make(chan struct{})

	go func() {
		defer close(readerDone)
		readPump(conn, h, sub, replies, logger)
	}()

	writePump(conn, sub, replies, readerDone, logger)
}

func readPump(conn *websocket.Conn, h *session.Handler, sub *session.Subscription, replies chan<- model.RoomEvent, logger *slog.Logger) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctx := context.Background()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			reply(replies, "malformed message")
			continue
		}

		var env session.Envelope
		switch msg.Type {
		case ClientPing:
			env = h.Ping(ctx, sub.RoomID, sub.PlayerID)
		case ClientMove:
			env = h.Move(ctx, sub.RoomID, sub.PlayerID, msg.From, msg.To)
		default:
			reply(replies, "unknown message type "+msg.Type)
			continue
		}
		if !env.Success {
			reply(replies, env.Error.Message)
		}
	}
}

// reply queues an error event for this client, dropping it if the client is not reading
func reply(replies chan<- model.RoomEvent, message string) {
	select {
	case replies <- model.ErrorEvent{Message: message}:
	default:
	}
}

func writePump(conn *websocket.Conn, sub *session.Subscription, replies <-chan model.RoomEvent, readerDone <-chan struct{}, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(e model.RoomEvent) bool {
		data, err := model.MarshalEvent(e)
		if err != nil {
			logger.Error("failed to encode event", slog.String("error", err.Error()))
			return true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Debug("websocket write failed", slog.String("error", err.Error()))
			return false
		}
		return true
	}

	for {
		select {
		case e := <-sub.Events():
			if !write(e) {
				return
			}

		case e := <-replies:
			if !write(e) {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-sub.Done():
			reason := "subscription ended"
			if err := sub.Err(); err != nil {
				reason = err.Error()
			}
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
				time.Now().Add(writeWait))
			return

		case <-readerDone:
			return
		}
	}
}
