package room

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/benmooo/ll-xq/internal/dependencies/clock"
	"github.com/benmooo/ll-xq/internal/dependencies/idgen"
	"github.com/benmooo/ll-xq/internal/engine"
	"github.com/benmooo/ll-xq/internal/eventbus"
	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/storage"
)

// Config holds presence and garbage-collection timings
type Config struct {
	// PresenceTimeout is how long a player may stay silent before being marked offline
	PresenceTimeout time.Duration
	// DestroyDelay is how long every player must be offline and idle before the room is removed
	DestroyDelay time.Duration
	// SweepInterval is the period of the background sweep started by Run
	SweepInterval time.Duration
}

// DefaultConfig returns the standard presence timings
func DefaultConfig() Config {
	return Config{
		PresenceTimeout: 60 * time.Second,
		DestroyDelay:    120 * time.Second,
		SweepInterval:   10 * time.Second,
	}
}

// Bus is the event bus rooms publish on
type Bus = eventbus.Bus[model.RoomEvent]

// Topic returns the bus topic carrying a room's events
func Topic(id model.RoomID) string {
	return "roomEvent:" + string(id)
}

// Manager owns every live room. All reads and writes of a room happen
// under that room's lock; the table lock only guards membership of the table.
type Manager struct {
	mu    sync.RWMutex
	rooms map[model.RoomID]*room

	engines engine.Factory
	bus     *Bus
	archive storage.Storage
	clock   clock.Clock
	ids     idgen.Generator
	cfg     Config
	logger  *slog.Logger
}

// NewManager creates a new room Manager. archive may be nil, in which case
// finished games are not recorded.
func NewManager(
	engines engine.Factory,
	bus *Bus,
	archive storage.Storage,
	clock clock.Clock,
	ids idgen.Generator,
	cfg Config,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		rooms:   make(map[model.RoomID]*room),
		engines: engines,
		bus:     bus,
		archive: archive,
		clock:   clock,
		ids:     ids,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "room_manager")),
	}
}

// Config returns the manager's timings
func (m *Manager) Config() Config {
	return m.cfg
}

// CreateRoom creates an empty room. The creator is not seated.
func (m *Manager) CreateRoom(ctx context.Context, creatorName string) (*model.Room, error) {
	creatorName = strings.TrimSpace(creatorName)
	if creatorName == "" {
		return nil, fmt.Errorf("%w: creator name is required", model.ErrInvalidInput)
	}

	r := &room{
		id:        model.RoomID(m.ids.NewID()),
		players:   make(map[model.PlayerID]*player),
		engine:    m.engines(),
		createdAt: m.clock.Now(),
		createdBy: creatorName,
	}

	// Hold the room lock across insertion so roomCreated precedes any join event
	r.mu.Lock()
	defer r.mu.Unlock()

	m.mu.Lock()
	m.rooms[r.id] = r
	total := len(m.rooms)
	m.mu.Unlock()

	m.publish(r.id, model.RoomCreated{RoomID: r.id, CreatorName: creatorName})
	m.logger.Info("room created",
		slog.String("room_id", string(r.id)),
		slog.String("created_by", creatorName),
		slog.Int("total_rooms", total))

	snap := r.snapshot()
	return &snap, nil
}

// JoinRoom seats a player, or reconnects them when playerID already belongs
// to the room. Reconnection keeps the original name and side.
func (m *Manager) JoinRoom(ctx context.Context, roomID model.RoomID, playerName string, playerID model.PlayerID) (*model.Player, error) {
	r, err := m.lockRoom(roomID)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	now := m.clock.Now()

	if p, ok := r.players[playerID]; ok && playerID != "" {
		p.online = true
		p.lastActiveAt = now

		m.logger.Info("player reconnected",
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(p.id)),
			slog.String("side", string(p.side)))

		m.announceJoin(r, p)
		snap := p.snapshot()
		return &snap, nil
	}

	if len(r.players) >= model.MaxPlayers {
		return nil, model.ErrRoomFull
	}

	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return nil, fmt.Errorf("%w: player name is required", model.ErrInvalidInput)
	}

	side := model.SideRed
	if r.sideTaken(model.SideRed) {
		side = model.SideBlack
	}

	p := &player{
		id:           model.PlayerID(m.ids.NewID()),
		name:         playerName,
		side:         side,
		online:       true,
		lastActiveAt: now,
	}
	r.players[p.id] = p
	r.order = append(r.order, p.id)

	m.logger.Info("player joined",
		slog.String("room_id", string(roomID)),
		slog.String("player_id", string(p.id)),
		slog.String("side", string(side)),
		slog.Int("players", len(r.players)))

	m.announceJoin(r, p)
	snap := p.snapshot()
	return &snap, nil
}

// announceJoin publishes joinSuccess, followed by gameStart when both seats are filled
func (m *Manager) announceJoin(r *room, p *player) {
	m.publish(r.id, model.JoinSuccess{RoomID: r.id, PlayerName: p.name, Side: p.side})

	if len(r.players) == model.MaxPlayers {
		m.publish(r.id, model.GameStart{
			FEN:     r.engine.FEN(),
			Turn:    r.engine.Turn(),
			Players: r.gamePlayers(),
		})
	}
}

// Move submits a move for playerID. On success moveMade is published,
// followed by at most one of gameOver or inCheck. A finished game is
// archived after the room lock is released.
func (m *Manager) Move(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, from, to string) (*model.MoveRecord, error) {
	record, result, err := m.applyMove(roomID, playerID, from, to)
	if err != nil {
		return nil, err
	}
	if result != nil {
		m.archiveResult(ctx, result)
	}
	return record, nil
}

// applyMove validates and plays a move under the room lock. The returned
// result is non-nil when the move ended the game.
func (m *Manager) applyMove(roomID model.RoomID, playerID model.PlayerID, from, to string) (*model.MoveRecord, *model.GameResult, error) {
	r, err := m.lockRoom(roomID)
	if err != nil {
		return nil, nil, err
	}
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return nil, nil, model.ErrPlayerNotFound
	}
	if r.over {
		return nil, nil, fmt.Errorf("%w: game is over", model.ErrIllegalMove)
	}
	if r.status() == model.RoomStatusWaiting {
		return nil, nil, fmt.Errorf("%w: waiting for opponent", model.ErrIllegalMove)
	}
	if p.side != r.engine.Turn() {
		return nil, nil, model.ErrNotYourTurn
	}
	if !r.engine.Move(from, to, "q") {
		return nil, nil, fmt.Errorf("%w: %s-%s", model.ErrIllegalMove, from, to)
	}

	now := m.clock.Now()
	p.lastActiveAt = now
	p.online = true
	r.moves++

	record := model.MoveRecord{
		Side: p.side,
		From: from,
		To:   to,
		FEN:  r.engine.FEN(),
		Turn: r.engine.Turn(),
	}
	m.publish(roomID, model.MoveMade(record))

	var over *model.GameOver
	switch {
	case r.engine.InCheckmate():
		over = &model.GameOver{Winner: string(p.side), Reason: model.ReasonCheckmate}
	case r.engine.InStalemate():
		// the stalemated side has no move and loses
		over = &model.GameOver{Winner: string(p.side), Reason: model.ReasonStalemate}
	case r.engine.InDraw():
		over = &model.GameOver{Winner: model.WinnerDraw, Reason: model.ReasonDraw}
	case r.engine.InCheck():
		m.publish(roomID, model.InCheck{SideInCheck: p.side.Opponent()})
	}

	if over == nil {
		return &record, nil, nil
	}

	r.over = true
	m.publish(roomID, *over)
	m.logger.Info("game over",
		slog.String("room_id", string(roomID)),
		slog.String("winner", over.Winner),
		slog.String("reason", string(over.Reason)),
		slog.Int("moves", r.moves))

	result := &model.GameResult{
		RoomID:   r.id,
		Players:  r.seatedPlayers(),
		Winner:   over.Winner,
		Reason:   over.Reason,
		FinalFEN: r.engine.FEN(),
		Moves:    r.moves,
		EndedAt:  now,
	}
	return &record, result, nil
}

// archiveResult records a finished game. Failures are logged, not returned,
// since the move itself has already been applied and broadcast.
func (m *Manager) archiveResult(ctx context.Context, result *model.GameResult) {
	if m.archive == nil {
		return
	}
	if err := m.archive.SaveResult(context.WithoutCancel(ctx), result); err != nil {
		m.logger.Error("failed to archive game result",
			slog.String("room_id", string(result.RoomID)),
			slog.String("error", err.Error()))
	}
}

// Ping records activity from a player and marks them online
func (m *Manager) Ping(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	return m.withPlayer(roomID, playerID, func(r *room, p *player) {
		p.online = true
		p.lastActiveAt = m.clock.Now()
	})
}

// MarkOnline marks a player online when a live subscription starts. Each
// call must be paired with one MarkOffline.
func (m *Manager) MarkOnline(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	return m.withPlayer(roomID, playerID, func(r *room, p *player) {
		p.streams++
		p.online = true
		p.lastActiveAt = m.clock.Now()
		m.logger.Debug("player online",
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(playerID)))
	})
}

// MarkOffline ends one live subscription of a player. The player goes
// offline only once no other subscription of theirs is open. The seat is kept.
func (m *Manager) MarkOffline(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) error {
	return m.withPlayer(roomID, playerID, func(r *room, p *player) {
		if p.streams > 0 {
			p.streams--
		}
		if p.streams > 0 {
			return
		}
		p.online = false
		m.logger.Debug("player offline",
			slog.String("room_id", string(roomID)),
			slog.String("player_id", string(playerID)))
	})
}

// LegalMoves lists destinations of the piece on square. Any seated player may
// ask about any piece regardless of turn.
func (m *Manager) LegalMoves(ctx context.Context, roomID model.RoomID, playerID model.PlayerID, square string) ([]string, error) {
	var moves []string
	err := m.withPlayer(roomID, playerID, func(r *room, p *player) {
		moves = r.engine.Moves(square)
	})
	if err != nil {
		return nil, err
	}
	if moves == nil {
		moves = []string{}
	}
	return moves, nil
}

// RoomState returns the board and roster as seen by a seated player
func (m *Manager) RoomState(ctx context.Context, roomID model.RoomID, playerID model.PlayerID) (*model.RoomState, error) {
	var state model.RoomState
	err := m.withPlayer(roomID, playerID, func(r *room, p *player) {
		state = model.RoomState{
			RoomID:  r.id,
			Status:  r.status(),
			FEN:     r.engine.FEN(),
			Turn:    r.engine.Turn(),
			InCheck: r.engine.InCheck(),
			Players: r.seatedPlayers(),
		}
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// GetRoom returns a snapshot of a room
func (m *Manager) GetRoom(ctx context.Context, roomID model.RoomID) (*model.Room, error) {
	r, err := m.lockRoom(roomID)
	if err != nil {
		return nil, err
	}
	defer r.mu.Unlock()

	snap := r.snapshot()
	return &snap, nil
}

// ListRooms returns snapshots of every live room, oldest first
func (m *Manager) ListRooms(ctx context.Context) []model.Room {
	rooms := m.allRooms()

	out := make([]model.Room, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		if !r.deleted {
			out = append(out, r.snapshot())
		}
		r.mu.Unlock()
	}
	sortRooms(out)
	return out
}

// Close removes every room and ends every subscription
func (m *Manager) Close() {
	m.mu.Lock()
	rooms := m.rooms
	m.rooms = make(map[model.RoomID]*room)
	m.mu.Unlock()

	for id, r := range rooms {
		r.mu.Lock()
		r.deleted = true
		r.mu.Unlock()
		m.bus.CloseTopic(Topic(id))
	}
	m.logger.Info("room manager closed", slog.Int("rooms", len(rooms)))
}

func (m *Manager) publish(roomID model.RoomID, event model.RoomEvent) {
	m.bus.Publish(Topic(roomID), event)
}

// lockRoom looks up a room and returns it locked
func (m *Manager) lockRoom(roomID model.RoomID) (*room, error) {
	m.mu.RLock()
	r, ok := m.rooms[roomID]
	m.mu.RUnlock()
	if !ok {
		return nil, model.ErrRoomNotFound
	}

	r.mu.Lock()
	if r.deleted {
		r.mu.Unlock()
		return nil, model.ErrRoomNotFound
	}
	return r, nil
}

// withPlayer runs fn with the room locked and the player resolved
func (m *Manager) withPlayer(roomID model.RoomID, playerID model.PlayerID, fn func(*room, *player)) error {
	r, err := m.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return model.ErrPlayerNotFound
	}
	fn(r, p)
	return nil
}

func (m *Manager) allRooms() []*room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rooms := make([]*room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}
