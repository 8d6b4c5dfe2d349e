// Package engine defines the rules-engine capability a room depends on and
// its xiangqi implementation.
package engine

import (
	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/xiangqi"
)

// Engine is the game state owned by a room
type Engine interface {
	// Turn returns the side to move
	Turn() model.Side
	// Move applies a move for the side to move and reports whether it was legal.
	// promotion is accepted for interface compatibility and ignored by xiangqi.
	Move(from, to, promotion string) bool
	FEN() string
	// Moves lists legal destinations of the piece on square
	Moves(square string) []string
	InCheck() bool
	InCheckmate() bool
	InStalemate() bool
	InDraw() bool
}

// Factory creates a fresh engine at the starting position
type Factory func() Engine

// Xiangqi adapts xiangqi.Game to Engine
type Xiangqi struct {
	game *xiangqi.Game
}

// Ensure Xiangqi implements Engine
var _ Engine = (*Xiangqi)(nil)

// NewXiangqi creates an engine at the standard opening position
func NewXiangqi() *Xiangqi {
	return &Xiangqi{game: xiangqi.NewGame()}
}

// NewXiangqiFromFEN creates an engine at an arbitrary position
func NewXiangqiFromFEN(fen string) (*Xiangqi, error) {
	g, err := xiangqi.NewGameFromFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Xiangqi{game: g}, nil
}

// XiangqiFactory returns a Factory producing standard games
func XiangqiFactory() Factory {
	return func() Engine { return NewXiangqi() }
}

func (x *Xiangqi) Turn() model.Side {
	return sideOf(x.game.Turn())
}

func (x *Xiangqi) Move(from, to, _ string) bool {
	_, err := x.game.Move(from, to)
	return err == nil
}

func (x *Xiangqi) FEN() string {
	return x.game.FEN()
}

func (x *Xiangqi) Moves(square string) []string {
	return x.game.Moves(square)
}

func (x *Xiangqi) InCheck() bool {
	return x.game.InCheck()
}

func (x *Xiangqi) InCheckmate() bool {
	return x.game.InCheckmate()
}

func (x *Xiangqi) InStalemate() bool {
	return x.game.InStalemate()
}

func (x *Xiangqi) InDraw() bool {
	return x.game.InDraw()
}

func sideOf(c xiangqi.Color) model.Side {
	if c == xiangqi.Red {
		return model.SideRed
	}
	return model.SideBlack
}
