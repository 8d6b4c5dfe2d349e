package model

import "time"

// PlayerID is the opaque identifier issued to a player on first join
type PlayerID string

// Side is the colour a player controls for the whole game
type Side string

const (
	// SideRed is seated first and moves first
	SideRed Side = "r"
	// SideBlack is seated second
	SideBlack Side = "b"
)

// Opponent returns the other side
func (s Side) Opponent() Side {
	if s == SideRed {
		return SideBlack
	}
	return SideRed
}

// Valid reports whether s is one of the two playable sides
func (s Side) Valid() bool {
	return s == SideRed || s == SideBlack
}

// Player is a snapshot of a seated participant
type Player struct {
	ID           PlayerID  `json:"id"`
	Name         string    `json:"name"`
	Side         Side      `json:"side"`
	Online       bool      `json:"online"`
	LastActiveAt time.Time `json:"last_active_at"`
}

// SeatedPlayer is the public view of a player shared with the whole room
type SeatedPlayer struct {
	Name   string `json:"name"`
	Side   Side   `json:"side"`
	Online bool   `json:"online"`
}
