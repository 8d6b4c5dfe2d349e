// Package xiangqi implements the rules of Chinese chess: board
// representation, FEN encoding, move generation and end-of-game detection.
package xiangqi

import (
	"errors"
	"fmt"
)

// Board dimensions. Files run a..i from red's left, ranks 0..9 from red's side.
const (
	Files   = 9
	Ranks   = 10
	Squares = Files * Ranks
)

// Color identifies a side
type Color byte

const (
	Red   Color = 'r'
	Black Color = 'b'
)

// Opponent returns the other colour
func (c Color) Opponent() Color {
	if c == Red {
		return Black
	}
	return Red
}

func (c Color) String() string {
	return string(c)
}

// Piece is a FEN piece letter, uppercase for red and lowercase for black.
// The zero value is an empty square.
type Piece byte

const (
	NoPiece Piece = 0

	General  = 'k'
	Advisor  = 'a'
	Elephant = 'b'
	Horse    = 'n'
	Chariot  = 'r'
	Cannon   = 'c'
	Soldier  = 'p'
)

// Color returns the side owning the piece
func (p Piece) Color() Color {
	if p >= 'A' && p <= 'Z' {
		return Red
	}
	return Black
}

// Kind returns the lowercase piece letter regardless of colour
func (p Piece) Kind() byte {
	if p >= 'A' && p <= 'Z' {
		return byte(p) + ('a' - 'A')
	}
	return byte(p)
}

func pieceOf(c Color, kind byte) Piece {
	if c == Red {
		return Piece(kind - ('a' - 'A'))
	}
	return Piece(kind)
}

func validPiece(ch byte) bool {
	switch ch {
	case 'k', 'a', 'b', 'n', 'r', 'c', 'p', 'K', 'A', 'B', 'N', 'R', 'C', 'P':
		return true
	}
	return false
}

// ErrInvalidSquare is returned for square names outside a0..i9
var ErrInvalidSquare = errors.New("invalid square")

// Square indexes the board as rank*Files + file
type Square int

// ParseSquare converts a name such as "e0" into a Square
func ParseSquare(name string) (Square, error) {
	if len(name) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSquare, name)
	}
	file := int(name[0] - 'a')
	rank := int(name[1] - '0')
	if !onBoard(file, rank) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSquare, name)
	}
	return squareAt(file, rank), nil
}

func squareAt(file, rank int) Square {
	return Square(rank*Files + file)
}

func onBoard(file, rank int) bool {
	return file >= 0 && file < Files && rank >= 0 && rank < Ranks
}

// File returns the 0-based file index
func (s Square) File() int { return int(s) % Files }

// Rank returns the 0-based rank index
func (s Square) Rank() int { return int(s) / Files }

func (s Square) String() string {
	return string([]byte{byte('a' + s.File()), byte('0' + s.Rank())})
}

// Board holds the piece on every square
type Board [Squares]Piece

// Move is a piece moving between two squares
type Move struct {
	From     Square
	To       Square
	Piece    Piece
	Captured Piece
}

func (m Move) String() string {
	return m.From.String() + m.To.String()
}

// inPalace reports whether file/rank lie inside c's palace
func inPalace(c Color, file, rank int) bool {
	if file < 3 || file > 5 {
		return false
	}
	if c == Red {
		return rank >= 0 && rank <= 2
	}
	return rank >= 7 && rank <= 9
}

// ownHalf reports whether rank is on c's side of the river
func ownHalf(c Color, rank int) bool {
	if c == Red {
		return rank <= 4
	}
	return rank >= 5
}

func forward(c Color) int {
	if c == Red {
		return 1
	}
	return -1
}
