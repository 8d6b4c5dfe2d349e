package room

import (
	"sort"
	"sync"
	"time"

	"github.com/benmooo/ll-xq/internal/engine"
	"github.com/benmooo/ll-xq/internal/model"
)

type player struct {
	id           model.PlayerID
	name         string
	side         model.Side
	online       bool
	lastActiveAt time.Time
	streams      int // open subscriptions
}

func (p *player) snapshot() model.Player {
	return model.Player{
		ID:           p.id,
		Name:         p.name,
		Side:         p.side,
		Online:       p.online,
		LastActiveAt: p.lastActiveAt,
	}
}

// room is the mutable state behind a model.Room. Every field is guarded by mu.
type room struct {
	mu sync.Mutex

	id        model.RoomID
	players   map[model.PlayerID]*player
	order     []model.PlayerID // seating order
	engine    engine.Engine
	createdAt time.Time
	createdBy string
	moves     int
	over      bool
	// deleted is set by the sweep before the room leaves the table, so
	// callers that looked the room up earlier see it as gone
	deleted bool
}

func (r *room) sideTaken(side model.Side) bool {
	for _, p := range r.players {
		if p.side == side {
			return true
		}
	}
	return false
}

func (r *room) status() model.RoomStatus {
	switch {
	case r.over:
		return model.RoomStatusOver
	case len(r.players) < model.MaxPlayers:
		return model.RoomStatusWaiting
	default:
		return model.RoomStatusPlaying
	}
}

func (r *room) seatedPlayers() []model.SeatedPlayer {
	out := make([]model.SeatedPlayer, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		out = append(out, model.SeatedPlayer{Name: p.name, Side: p.side, Online: p.online})
	}
	return out
}

func (r *room) gamePlayers() []model.GamePlayer {
	out := make([]model.GamePlayer, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		out = append(out, model.GamePlayer{Name: p.name, Side: p.side})
	}
	return out
}

func (r *room) snapshot() model.Room {
	return model.Room{
		ID:        r.id,
		CreatedBy: r.createdBy,
		CreatedAt: r.createdAt,
		Status:    r.status(),
		Players:   r.seatedPlayers(),
		FEN:       r.engine.FEN(),
		Turn:      r.engine.Turn(),
	}
}

// idle reports whether the room may be destroyed at now
func (r *room) idle(now time.Time, destroyDelay time.Duration) bool {
	if len(r.players) == 0 {
		return now.Sub(r.createdAt) > destroyDelay
	}
	for _, p := range r.players {
		if p.online || now.Sub(p.lastActiveAt) <= destroyDelay {
			return false
		}
	}
	return true
}

func sortRooms(rooms []model.Room) {
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
	})
}
