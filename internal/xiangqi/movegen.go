package xiangqi

type delta struct{ df, dr int }

var (
	orthogonal = [4]delta{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	diagonal   = [4]delta{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// horseMoves pairs each leg with the two destinations it can block
var horseMoves = [4]struct {
	leg   delta
	dests [2]delta
}{
	{delta{0, 1}, [2]delta{{1, 2}, {-1, 2}}},
	{delta{0, -1}, [2]delta{{1, -2}, {-1, -2}}},
	{delta{1, 0}, [2]delta{{2, 1}, {2, -1}}},
	{delta{-1, 0}, [2]delta{{-2, 1}, {-2, -1}}},
}

// pseudoMoves appends every move of the piece on from that obeys its
// movement rules, ignoring whether its own general ends up exposed.
func (p *Position) pseudoMoves(from Square, dst []Move) []Move {
	piece := p.Board[from]
	if piece == NoPiece {
		return dst
	}
	c := piece.Color()
	file, rank := from.File(), from.Rank()

	add := func(f, r int) {
		to := squareAt(f, r)
		target := p.Board[to]
		if target != NoPiece && target.Color() == c {
			return
		}
		dst = append(dst, Move{From: from, To: to, Piece: piece, Captured: target})
	}

	switch piece.Kind() {
	case General:
		for _, d := range orthogonal {
			f, r := file+d.df, rank+d.dr
			if inPalace(c, f, r) {
				add(f, r)
			}
		}

	case Advisor:
		for _, d := range diagonal {
			f, r := file+d.df, rank+d.dr
			if inPalace(c, f, r) {
				add(f, r)
			}
		}

	case Elephant:
		for _, d := range diagonal {
			f, r := file+2*d.df, rank+2*d.dr
			if !onBoard(f, r) || !ownHalf(c, r) {
				continue
			}
			if p.Board[squareAt(file+d.df, rank+d.dr)] != NoPiece {
				continue
			}
			add(f, r)
		}

	case Horse:
		for _, h := range horseMoves {
			lf, lr := file+h.leg.df, rank+h.leg.dr
			if !onBoard(lf, lr) || p.Board[squareAt(lf, lr)] != NoPiece {
				continue
			}
			for _, d := range h.dests {
				f, r := file+d.df, rank+d.dr
				if onBoard(f, r) {
					add(f, r)
				}
			}
		}

	case Chariot:
		for _, d := range orthogonal {
			for f, r := file+d.df, rank+d.dr; onBoard(f, r); f, r = f+d.df, r+d.dr {
				add(f, r)
				if p.Board[squareAt(f, r)] != NoPiece {
					break
				}
			}
		}

	case Cannon:
		for _, d := range orthogonal {
			f, r := file+d.df, rank+d.dr
			for ; onBoard(f, r) && p.Board[squareAt(f, r)] == NoPiece; f, r = f+d.df, r+d.dr {
				add(f, r)
			}
			// f, r is the screen (or off the board); look for the first piece beyond it
			for f, r = f+d.df, r+d.dr; onBoard(f, r); f, r = f+d.df, r+d.dr {
				if target := p.Board[squareAt(f, r)]; target != NoPiece {
					if target.Color() != c {
						add(f, r)
					}
					break
				}
			}
		}

	case Soldier:
		fwd := forward(c)
		if onBoard(file, rank+fwd) {
			add(file, rank+fwd)
		}
		if !ownHalf(c, rank) {
			for _, df := range [2]int{-1, 1} {
				if onBoard(file+df, rank) {
					add(file+df, rank)
				}
			}
		}
	}

	return dst
}

// generalSquare returns the square of c's general, or -1
func (p *Position) generalSquare(c Color) Square {
	want := pieceOf(c, General)
	for sq := Square(0); sq < Squares; sq++ {
		if p.Board[sq] == want {
			return sq
		}
	}
	return -1
}

// attacked reports whether any piece of colour by could capture on sq
func (p *Position) attacked(sq Square, by Color) bool {
	var buf [32]Move
	for from := Square(0); from < Squares; from++ {
		piece := p.Board[from]
		if piece == NoPiece || piece.Color() != by {
			continue
		}
		for _, m := range p.pseudoMoves(from, buf[:0]) {
			if m.To == sq {
				return true
			}
		}
	}
	return false
}

// generalsFacing reports whether the two generals share a file with
// nothing between them
func (p *Position) generalsFacing() bool {
	red, black := p.generalSquare(Red), p.generalSquare(Black)
	if red < 0 || black < 0 || red.File() != black.File() {
		return false
	}
	for r := red.Rank() + 1; r < black.Rank(); r++ {
		if p.Board[squareAt(red.File(), r)] != NoPiece {
			return false
		}
	}
	return true
}

// exposed reports whether c's general is attacked or facing the enemy general
func (p *Position) exposed(c Color) bool {
	gen := p.generalSquare(c)
	if gen < 0 {
		return true
	}
	return p.generalsFacing() || p.attacked(gen, c.Opponent())
}

// legalFrom returns the legal moves of the piece on from for its own side,
// whether or not it is that side's turn.
func (p *Position) legalFrom(from Square) []Move {
	piece := p.Board[from]
	if piece == NoPiece {
		return nil
	}
	c := piece.Color()

	var legal []Move
	for _, m := range p.pseudoMoves(from, nil) {
		next := *p
		next.Board[m.To] = m.Piece
		next.Board[m.From] = NoPiece
		if !next.exposed(c) {
			legal = append(legal, m)
		}
	}
	return legal
}

// legalMoves returns every legal move for the side to move
func (p *Position) legalMoves() []Move {
	var moves []Move
	for from := Square(0); from < Squares; from++ {
		piece := p.Board[from]
		if piece == NoPiece || piece.Color() != p.Turn {
			continue
		}
		moves = append(moves, p.legalFrom(from)...)
	}
	return moves
}

func (p *Position) hasLegalMove() bool {
	for from := Square(0); from < Squares; from++ {
		piece := p.Board[from]
		if piece != NoPiece && piece.Color() == p.Turn && len(p.legalFrom(from)) > 0 {
			return true
		}
	}
	return false
}

// apply plays m, updating the side to move and counters
func (p *Position) apply(m Move) {
	p.Board[m.To] = m.Piece
	p.Board[m.From] = NoPiece
	if m.Captured != NoPiece {
		p.HalfMoves = 0
	} else {
		p.HalfMoves++
	}
	if p.Turn == Black {
		p.FullMoves++
	}
	p.Turn = p.Turn.Opponent()
}
