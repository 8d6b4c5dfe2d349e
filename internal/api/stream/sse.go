// Package stream delivers a room subscription to a client over
// server-sent events or a WebSocket.
package stream

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Time allowed to read the next pong from a WebSocket peer
	pongWait = 60 * time.Second

	// Largest inbound WebSocket message
	maxMessageSize = 4096

	// Reconnect delay suggested to SSE clients, in milliseconds
	retryMillis = 3000
)

// WriteSSE writes one event in SSE framing. The data line carries the
// tagged {"type","payload"} form.
func WriteSSE(w http.ResponseWriter, e model.RoomEvent) error {
	data, err := model.MarshalEvent(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.EventType(), data)
	return err
}

// ServeSSE streams sub to the client until the subscription ends or the
// client disconnects. The subscription is always closed on return.
func ServeSSE(w http.ResponseWriter, r *http.Request, sub *session.Subscription, logger *slog.Logger) {
	defer sub.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	_, _ = fmt.Fprintf(w, "retry: %d\n: connected\n\n", retryMillis)
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e := <-sub.Events():
			if err := WriteSSE(w, e); err != nil {
				logger.Debug("sse write failed",
					slog.String("room_id", string(sub.RoomID)),
					slog.String("error", err.Error()))
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-sub.Done():
			return

		case <-r.Context().Done():
			return
		}
	}
}
