package xiangqi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard opening position
const StartFEN = "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR r - - 0 1"

// ErrInvalidFEN is returned when a FEN string cannot be parsed
var ErrInvalidFEN = errors.New("invalid FEN")

// Position is a board together with the side to move and move counters
type Position struct {
	Board     Board
	Turn      Color
	HalfMoves int
	FullMoves int
}

// ParseFEN decodes a FEN string. The side-to-move field accepts "r" or "w"
// for red and "b" for black; the counters default to 0 and 1.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidFEN)
	}

	pos := &Position{Turn: Red, FullMoves: 1}

	rows := strings.Split(fields[0], "/")
	if len(rows) != Ranks {
		return nil, fmt.Errorf("%w: expected %d ranks, got %d", ErrInvalidFEN, Ranks, len(rows))
	}
	for i, row := range rows {
		rank := Ranks - 1 - i
		file := 0
		for j := 0; j < len(row); j++ {
			ch := row[j]
			switch {
			case ch >= '1' && ch <= '9':
				file += int(ch - '0')
			case validPiece(ch):
				if file >= Files {
					return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, rank)
				}
				pos.Board[squareAt(file, rank)] = Piece(ch)
				file++
			default:
				return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidFEN, ch)
			}
		}
		if file != Files {
			return nil, fmt.Errorf("%w: rank %d has %d files", ErrInvalidFEN, rank, file)
		}
	}

	if len(fields) > 1 {
		switch fields[1] {
		case "r", "w":
			pos.Turn = Red
		case "b":
			pos.Turn = Black
		default:
			return nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
		}
	}
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: half-move clock %q", ErrInvalidFEN, fields[4])
		}
		pos.HalfMoves = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: move number %q", ErrInvalidFEN, fields[5])
		}
		pos.FullMoves = n
	}

	if pos.generalSquare(Red) < 0 || pos.generalSquare(Black) < 0 {
		return nil, fmt.Errorf("%w: both generals must be on the board", ErrInvalidFEN)
	}
	return pos, nil
}

// FEN encodes the position
func (p *Position) FEN() string {
	var sb strings.Builder
	sb.WriteString(p.placement())
	sb.WriteByte(' ')
	sb.WriteByte(byte(p.Turn))
	sb.WriteString(" - - ")
	sb.WriteString(strconv.Itoa(p.HalfMoves))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoves))
	return sb.String()
}

// placement encodes only the piece placement field
func (p *Position) placement() string {
	var sb strings.Builder
	for rank := Ranks - 1; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < Files; file++ {
			piece := p.Board[squareAt(file, rank)]
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(byte(piece))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// repetitionKey identifies a position for repetition detection
func (p *Position) repetitionKey() string {
	return p.placement() + " " + string(p.Turn)
}
