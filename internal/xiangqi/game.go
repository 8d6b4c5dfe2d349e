package xiangqi

import (
	"errors"
	"fmt"
)

// Move errors
var (
	ErrNoPiece     = errors.New("no piece on square")
	ErrWrongColor  = errors.New("piece does not belong to the side to move")
	ErrIllegalMove = errors.New("illegal move")
)

// Draw thresholds
const (
	// NoCaptureLimit is the number of half-moves without a capture that draws the game
	NoCaptureLimit = 100
	// RepetitionLimit is the number of occurrences of a position that draws the game
	RepetitionLimit = 3
)

// Game tracks a position together with the history needed for draw detection
type Game struct {
	pos        Position
	repetition map[string]int
	history    []Move
}

// NewGame starts a game from the standard opening position
func NewGame() *Game {
	g, err := NewGameFromFEN(StartFEN)
	if err != nil {
		panic(fmt.Sprintf("xiangqi: start position: %v", err))
	}
	return g
}

// NewGameFromFEN starts a game from an arbitrary position
func NewGameFromFEN(fen string) (*Game, error) {
	pos, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	g := &Game{
		pos:        *pos,
		repetition: make(map[string]int),
	}
	g.repetition[g.pos.repetitionKey()]++
	return g, nil
}

// Turn returns the side to move
func (g *Game) Turn() Color {
	return g.pos.Turn
}

// FEN returns the current position
func (g *Game) FEN() string {
	return g.pos.FEN()
}

// Position returns a copy of the current position
func (g *Game) Position() Position {
	return g.pos
}

// History returns the moves played so far
func (g *Game) History() []Move {
	return append([]Move(nil), g.history...)
}

// PieceAt returns the piece on the named square
func (g *Game) PieceAt(square string) (Piece, error) {
	sq, err := ParseSquare(square)
	if err != nil {
		return NoPiece, err
	}
	return g.pos.Board[sq], nil
}

// Move plays from→to for the side to move
func (g *Game) Move(from, to string) (Move, error) {
	fromSq, err := ParseSquare(from)
	if err != nil {
		return Move{}, err
	}
	toSq, err := ParseSquare(to)
	if err != nil {
		return Move{}, err
	}

	piece := g.pos.Board[fromSq]
	if piece == NoPiece {
		return Move{}, fmt.Errorf("%w: %s", ErrNoPiece, from)
	}
	if piece.Color() != g.pos.Turn {
		return Move{}, fmt.Errorf("%w: %s", ErrWrongColor, from)
	}

	for _, m := range g.pos.legalFrom(fromSq) {
		if m.To == toSq {
			g.pos.apply(m)
			g.history = append(g.history, m)
			g.repetition[g.pos.repetitionKey()]++
			return m, nil
		}
	}
	return Move{}, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
}

// Moves returns the destinations reachable by the piece on square for its
// own side. It does not require the piece's side to be on move. An empty
// or invalid square yields no moves.
func (g *Game) Moves(square string) []string {
	sq, err := ParseSquare(square)
	if err != nil {
		return nil
	}
	moves := g.pos.legalFrom(sq)
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.To.String())
	}
	return out
}

// LegalMoves returns every legal move for the side to move
func (g *Game) LegalMoves() []Move {
	return g.pos.legalMoves()
}

// InCheck reports whether the side to move is in check
func (g *Game) InCheck() bool {
	gen := g.pos.generalSquare(g.pos.Turn)
	return gen >= 0 && g.pos.attacked(gen, g.pos.Turn.Opponent())
}

// InCheckmate reports whether the side to move is in check with no legal move
func (g *Game) InCheckmate() bool {
	return g.InCheck() && !g.pos.hasLegalMove()
}

// InStalemate reports whether the side to move has no legal move but is not
// in check. Under xiangqi rules this is a loss for the stalemated side.
func (g *Game) InStalemate() bool {
	return !g.InCheck() && !g.pos.hasLegalMove()
}

// InDraw reports whether the game is drawn by the no-capture limit,
// threefold repetition, or lack of attacking material.
func (g *Game) InDraw() bool {
	return g.pos.HalfMoves >= NoCaptureLimit ||
		g.InThreefoldRepetition() ||
		g.InsufficientMaterial()
}

// InThreefoldRepetition reports whether the current position has occurred
// RepetitionLimit times
func (g *Game) InThreefoldRepetition() bool {
	return g.repetition[g.pos.repetitionKey()] >= RepetitionLimit
}

// InsufficientMaterial reports whether neither side has a piece able to
// cross the river (chariot, horse, cannon or soldier)
func (g *Game) InsufficientMaterial() bool {
	for _, piece := range g.pos.Board {
		switch piece.Kind() {
		case Chariot, Horse, Cannon, Soldier:
			return false
		}
	}
	return true
}

// GameOver reports whether no further play is possible
func (g *Game) GameOver() bool {
	return !g.pos.hasLegalMove() || g.InDraw()
}
