package model

import "time"

// RoomID is the opaque identifier of a room
type RoomID string

// MaxPlayers is the seat capacity of a room
const MaxPlayers = 2

// RoomStatus describes where a room is in its lifecycle
type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting"
	RoomStatusPlaying RoomStatus = "playing"
	RoomStatusOver    RoomStatus = "over"
)

// Room is a point-in-time snapshot of a room. It is listed publicly, so
// players appear without their ids.
type Room struct {
	ID        RoomID         `json:"id"`
	CreatedBy string         `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	Status    RoomStatus     `json:"status"`
	Players   []SeatedPlayer `json:"players"`
	FEN       string         `json:"fen"`
	Turn      Side           `json:"turn"`
}

// RoomState is the board and roster view returned to a participant
type RoomState struct {
	RoomID  RoomID         `json:"room_id"`
	Status  RoomStatus     `json:"status"`
	FEN     string         `json:"fen"`
	Turn    Side           `json:"turn"`
	InCheck bool           `json:"in_check"`
	Players []SeatedPlayer `json:"players"`
}

// MoveRecord echoes an accepted move
type MoveRecord struct {
	Side Side   `json:"side"`
	From string `json:"from"`
	To   string `json:"to"`
	FEN  string `json:"fen"`
	Turn Side   `json:"turn"`
}

// GameOverReason explains why a game ended
type GameOverReason string

const (
	ReasonCheckmate GameOverReason = "checkmate"
	ReasonStalemate GameOverReason = "stalemate"
	ReasonDraw      GameOverReason = "draw"
)

// WinnerDraw is the winner value reported for drawn games
const WinnerDraw = "draw"

// GameResult summarises a finished game for the archive
type GameResult struct {
	RoomID   RoomID         `json:"room_id"`
	Players  []SeatedPlayer `json:"players"`
	Winner   string         `json:"winner"`
	Reason   GameOverReason `json:"reason"`
	FinalFEN string         `json:"final_fen"`
	Moves    int            `json:"moves"`
	EndedAt  time.Time      `json:"ended_at"`
}
