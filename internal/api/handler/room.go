package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/benmooo/ll-xq/internal/api/request"
	"github.com/benmooo/ll-xq/internal/api/response"
	"github.com/benmooo/ll-xq/internal/api/stream"
	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/session"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	session *session.Handler
	logger  *slog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(s *session.Handler, logger *slog.Logger) *RoomHandler {
	return &RoomHandler{
		session: s,
		logger:  logger,
	}
}

func roomID(r *http.Request) model.RoomID {
	return model.RoomID(mux.Vars(r)["room_id"])
}

// playerID reads the player_id query parameter
func playerID(r *http.Request) (model.PlayerID, error) {
	id := r.URL.Query().Get("player_id")
	if id == "" {
		return "", NewInvalidRequestError("player_id is required")
	}
	return model.PlayerID(id), nil
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	response.Envelope(w, h.session.CreateRoom(r.Context(), req.CreatorName))
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	response.Envelope(w, h.session.ListRooms(r.Context()))
}

// Join handles POST /api/v1/rooms/{room_id}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRoomRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	response.Envelope(w, h.session.JoinRoom(r.Context(), roomID(r), req.PlayerName, model.PlayerID(req.PlayerID)))
}

// Move handles POST /api/v1/rooms/{room_id}/move
func (h *RoomHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req request.MoveRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	response.Envelope(w, h.session.Move(r.Context(), roomID(r), model.PlayerID(req.PlayerID), req.From, req.To))
}

// Ping handles POST /api/v1/rooms/{room_id}/ping
func (h *RoomHandler) Ping(w http.ResponseWriter, r *http.Request) {
	var req request.PingRequest
	if err := request.Decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	response.Envelope(w, h.session.Ping(r.Context(), roomID(r), model.PlayerID(req.PlayerID)))
}

// State handles GET /api/v1/rooms/{room_id}/state
func (h *RoomHandler) State(w http.ResponseWriter, r *http.Request) {
	pid, err := playerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Envelope(w, h.session.RoomState(r.Context(), roomID(r), pid))
}

// LegalMoves handles GET /api/v1/rooms/{room_id}/legal-moves
func (h *RoomHandler) LegalMoves(w http.ResponseWriter, r *http.Request) {
	pid, err := playerID(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Envelope(w, h.session.LegalMoves(r.Context(), roomID(r), pid, r.URL.Query().Get("square")))
}

// Events handles the SSE event stream for a room
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.subscribe(w, r)
	if !ok {
		return
	}
	stream.ServeSSE(w, r, sub, h.logger)
}

// WebSocket handles the WebSocket event stream for a room
func (h *RoomHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.subscribe(w, r)
	if !ok {
		return
	}
	stream.ServeWS(w, r, h.session, sub, h.logger)
}

// subscribe validates the caller before any stream is opened, so
// failures are reported as ordinary JSON errors
func (h *RoomHandler) subscribe(w http.ResponseWriter, r *http.Request) (*session.Subscription, bool) {
	pid, err := playerID(r)
	if err != nil {
		WriteError(w, err)
		return nil, false
	}
	sub, err := h.session.Subscribe(r.Context(), roomID(r), pid)
	if err != nil {
		WriteError(w, err)
		return nil, false
	}
	return sub, true
}
