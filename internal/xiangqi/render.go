package xiangqi

import "strings"

// Render draws the position as text with red at the bottom. Red pieces are
// uppercase, black lowercase, empty points are dots.
func (p *Position) Render() string {
	var sb strings.Builder
	for rank := Ranks - 1; rank >= 0; rank-- {
		sb.WriteByte(byte('0' + rank))
		sb.WriteByte(' ')
		for file := 0; file < Files; file++ {
			if file > 0 {
				sb.WriteByte(' ')
			}
			piece := p.Board[squareAt(file, rank)]
			if piece == NoPiece {
				sb.WriteByte('.')
			} else {
				sb.WriteByte(byte(piece))
			}
		}
		sb.WriteByte('\n')
		if rank == 5 {
			sb.WriteString("  ~~~~~~~~~~~~~~~~~\n")
		}
	}
	sb.WriteString("  a b c d e f g h i\n")
	return sb.String()
}

// RenderFEN parses fen and renders its board
func RenderFEN(fen string) (string, error) {
	pos, err := ParseFEN(fen)
	if err != nil {
		return "", err
	}
	return pos.Render(), nil
}
