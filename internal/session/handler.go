// Package session exposes the room manager as a set of boundary calls
// returning uniform envelopes, plus live event subscriptions.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/services/room"
	"github.com/benmooo/ll-xq/internal/storage"
)

// DefaultSubscriberBuffer is the event queue size of a subscription when none is configured
const DefaultSubscriberBuffer = 64

// Handler translates boundary calls into room manager operations
type Handler struct {
	rooms   *room.Manager
	bus     *room.Bus
	archive storage.Storage
	buffer  int
	logger  *slog.Logger
}

// NewHandler creates a new session Handler. buffer is the per-subscription
// event queue size.
func NewHandler(rooms *room.Manager, bus *room.Bus, archive storage.Storage, buffer int, logger *slog.Logger) *Handler {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Handler{
		rooms:   rooms,
		bus:     bus,
		archive: archive,
		buffer:  buffer,
		logger:  logger.With(slog.String("component", "session")),
	}
}

// CreateRoom creates a room and returns its id
func (h *Handler) CreateRoom(ctx context.Context, creatorName string) Envelope {
	r, err := h.rooms.CreateRoom(ctx, creatorName)
	if err != nil {
		return fail(err)
	}
	return created(CreateRoomData{RoomID: string(r.ID)})
}

// ListRooms returns every live room
func (h *Handler) ListRooms(ctx context.Context) Envelope {
	return ok(h.rooms.ListRooms(ctx))
}

// JoinRoom seats or reconnects a player. A failed join on an existing room
// is also announced to the room as joinError.
func (h *Handler) JoinRoom(ctx context.Context, roomID model.RoomID, playerName string, playerID model.PlayerID) Envelope {
	p, err := h.rooms.JoinRoom(ctx, roomID, playerName, playerID)
	if err != nil {
		env := fail(err)
		if !errors.Is(err, model.ErrRoomNotFound) {
			h.bus.Publish(room.Topic(roomID), model.JoinError{Reason: env.Error.Message})
		}
		h.logger.Debug("join rejected",
			slog.String("room_id", string(roomID)),
			slog.String("error", err.Error()))
		return env
	}
	return ok(p)
}

// Move submits a move on behalf of a player
func (h *Handler) Move(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, from, to string) Envelope {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return fail(fmt.Errorf("%w: from and to are required", model.ErrInvalidInput))
	}
	record, err := h.rooms.Move(ctx, roomID, playerID, from, to)
	if err != nil {
		return fail(err)
	}
	return ok(record)
}

// Ping records liveness for a player
func (h *Handler) Ping(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) Envelope {
	if err := h.rooms.Ping(ctx, roomID, playerID); err != nil {
		return fail(err)
	}
	return ok(PingData{OK: true})
}

// RoomState returns the board and roster
func (h *Handler) RoomState(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) Envelope {
	state, err := h.rooms.RoomState(ctx, roomID, playerID)
	if err != nil {
		return fail(err)
	}
	return ok(state)
}

// LegalMoves lists the destinations of the piece on square
func (h *Handler) LegalMoves(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, square string) Envelope {
	square = strings.TrimSpace(square)
	if square == "" {
		return fail(fmt.Errorf("%w: square is required", model.ErrInvalidInput))
	}
	moves, err := h.rooms.LegalMoves(ctx, roomID, playerID, square)
	if err != nil {
		return fail(err)
	}
	return ok(LegalMovesData{Square: square, Moves: moves})
}

// ListResults returns archived results, newest first
func (h *Handler) ListResults(ctx context.Context, limit int) Envelope {
	results, err := h.archive.ListResults(ctx, limit)
	if err != nil {
		h.logger.Error("failed to list results", slog.String("error", err.Error()))
		return fail(err)
	}
	if results == nil {
		results = []*model.GameResult{}
	}
	return ok(results)
}

// GetResult returns the archived result of a room
func (h *Handler) GetResult(ctx context.Context, roomID model.RoomID) Envelope {
	result, err := h.archive.GetResult(ctx, roomID)
	if err != nil {
		return fail(err)
	}
	return ok(result)
}
