package xiangqi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// fenFrom builds a FEN string from a sparse piece map
func fenFrom(t *testing.T, turn Color, pieces map[string]Piece) string {
	t.Helper()
	pos := Position{Turn: turn, FullMoves: 1}
	for name, piece := range pieces {
		sq, err := ParseSquare(name)
		require.NoError(t, err)
		pos.Board[sq] = piece
	}
	return pos.FEN()
}

func TestStartPositionRoundTrips(t *testing.T) {
	pos, err := ParseFEN(StartFEN)
	require.NoError(t, err)
	assert.Equal(t, StartFEN, pos.FEN())
	assert.Equal(t, Red, pos.Turn)
}

func TestStartPositionHas44Moves(t *testing.T) {
	g := NewGame()
	assert.Len(t, g.LegalMoves(), 44)
	assert.False(t, g.InCheck())
	assert.False(t, g.InCheckmate())
	assert.False(t, g.InStalemate())
	assert.False(t, g.InDraw())
}

func TestParseFENErrors(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"too few ranks", "rnbakabnr/9/9 r"},
		{"rank too long", "rnbakabnr1/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR r"},
		{"rank too short", "rnbakabn/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR r"},
		{"bad piece", "rnbakabnx/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR r"},
		{"bad side", "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR x"},
		{"bad clock", "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR r - - x 1"},
		{"missing general", "rnbaaabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFEN(tt.fen)
			assert.ErrorIs(t, err, ErrInvalidFEN)
		})
	}
}

func TestParseFENAcceptsWForRed(t *testing.T) {
	pos, err := ParseFEN("rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR w - - 0 1")
	require.NoError(t, err)
	assert.Equal(t, Red, pos.Turn)
}

func TestParseSquare(t *testing.T) {
	sq, err := ParseSquare("e0")
	require.NoError(t, err)
	assert.Equal(t, 4, sq.File())
	assert.Equal(t, 0, sq.Rank())
	assert.Equal(t, "e0", sq.String())

	for _, bad := range []string{"", "j0", "a", "a10", "A0"} {
		_, err := ParseSquare(bad)
		assert.ErrorIs(t, err, ErrInvalidSquare, bad)
	}
}

func TestMoveUpdatesFEN(t *testing.T) {
	g := NewGame()

	m, err := g.Move("h2", "e2")
	require.NoError(t, err)

	assert.Equal(t, Piece('C'), m.Piece)
	assert.Equal(t, NoPiece, m.Captured)
	assert.Equal(t, Black, g.Turn())
	assert.Equal(t, "rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C2C4/9/RNBAKABNR b - - 1 1", g.FEN())
	assert.Len(t, g.History(), 1)
}

func TestMoveErrors(t *testing.T) {
	g := NewGame()

	_, err := g.Move("e5", "e6")
	assert.ErrorIs(t, err, ErrNoPiece)

	_, err = g.Move("b9", "c7")
	assert.ErrorIs(t, err, ErrWrongColor)

	_, err = g.Move("a0", "a5")
	assert.ErrorIs(t, err, ErrIllegalMove)

	_, err = g.Move("z0", "a1")
	assert.ErrorIs(t, err, ErrInvalidSquare)

	assert.Equal(t, StartFEN, g.FEN())
}

func TestHorseLegBlocked(t *testing.T) {
	g := NewGame()
	assert.ElementsMatch(t, []string{"a2", "c2"}, g.Moves("b0"))
}

func TestCannonNeedsScreenToCapture(t *testing.T) {
	g := NewGame()
	moves := g.Moves("b2")

	assert.Len(t, moves, 12)
	assert.Contains(t, moves, "b9")
	assert.NotContains(t, moves, "b7")
	assert.NotContains(t, moves, "b8")
	assert.Contains(t, moves, "b6")
}

func TestElephantCannotCrossRiver(t *testing.T) {
	g, err := NewGameFromFEN(fenFrom(t, Red, map[string]Piece{
		"e0": 'K', "d9": 'k', "c4": 'B',
	}))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a2", "e2"}, g.Moves("c4"))
}

func TestElephantEyeBlocked(t *testing.T) {
	g, err := NewGameFromFEN(fenFrom(t, Red, map[string]Piece{
		"e0": 'K', "d9": 'k', "c0": 'B', "d1": 'P',
	}))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a2"}, g.Moves("c0"))
}

func TestSoldierMovesSidewaysOnlyAfterRiver(t *testing.T) {
	g, err := NewGameFromFEN(fenFrom(t, Red, map[string]Piece{
		"e0": 'K', "d9": 'k', "e4": 'P', "g5": 'P', "c6": 'p',
	}))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"e5"}, g.Moves("e4"))
	assert.ElementsMatch(t, []string{"g6", "f5", "h5"}, g.Moves("g5"))
	// black soldier on its own half only moves forward
	assert.ElementsMatch(t, []string{"c5"}, g.Moves("c6"))
}

func TestGeneralAndAdvisorConfinedToPalace(t *testing.T) {
	g, err := NewGameFromFEN(fenFrom(t, Red, map[string]Piece{
		"d0": 'K', "e9": 'k', "f2": 'A',
	}))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"e1"}, g.Moves("f2"))
	// d0 general: d1 and e0; e-file is open to the black general so e0 is illegal
	assert.ElementsMatch(t, []string{"d1"}, g.Moves("d0"))
}

func TestFlyingGeneralPinsBlocker(t *testing.T) {
	g, err := NewGameFromFEN(fenFrom(t, Red, map[string]Piece{
		"e0": 'K', "e9": 'k', "e5": 'R',
	}))
	require.NoError(t, err)

	moves := g.Moves("e5")
	require.NotEmpty(t, moves)
	for _, to := range moves {
		assert.Equal(t, byte('e'), to[0], "chariot left the file: %s", to)
	}
}

func TestMovesForOpponentPiece(t *testing.T) {
	g := NewGame()
	assert.ElementsMatch(t, []string{"a7", "c7"}, g.Moves("b9"))
}

func TestMovesForEmptyOrInvalidSquare(t *testing.T) {
	g := NewGame()
	assert.Empty(t, g.Moves("e5"))
	assert.Empty(t, g.Moves("zz"))
}

func TestCheckmate(t *testing.T) {
	g, err := NewGameFromFEN("4k4/R8/9/9/9/9/9/9/9/1R1K5 r - - 0 1")
	require.NoError(t, err)

	_, err = g.Move("b0", "b9")
	require.NoError(t, err)

	assert.True(t, g.InCheck())
	assert.True(t, g.InCheckmate())
	assert.False(t, g.InStalemate())
	assert.True(t, g.GameOver())
	assert.Empty(t, g.LegalMoves())
}

func TestCheckWithEscape(t *testing.T) {
	g, err := NewGameFromFEN("4k4/9/9/9/9/9/9/9/9/3K1R3 r - - 0 1")
	require.NoError(t, err)

	_, err = g.Move("f0", "e0")
	require.NoError(t, err)

	assert.True(t, g.InCheck())
	assert.False(t, g.InCheckmate())
	// d9 faces the red general, so only f9 is available
	assert.ElementsMatch(t, []string{"f9"}, g.Moves("e9"))
}

func TestStalemate(t *testing.T) {
	g, err := NewGameFromFEN("3k5/R8/9/9/9/9/9/9/4R4/5K3 b - - 0 1")
	require.NoError(t, err)

	assert.False(t, g.InCheck())
	assert.True(t, g.InStalemate())
	assert.False(t, g.InCheckmate())
	assert.True(t, g.GameOver())
}

func TestInsufficientMaterialIsDraw(t *testing.T) {
	g, err := NewGameFromFEN("3k5/4a4/9/9/9/9/9/9/9/4KA3 r - - 0 1")
	require.NoError(t, err)

	assert.True(t, g.InsufficientMaterial())
	assert.True(t, g.InDraw())
}

func TestNoCaptureLimitIsDraw(t *testing.T) {
	g, err := NewGameFromFEN("rnbakabnr/9/1c5c1/p1p1p1p1p/9/9/P1P1P1P1P/1C5C1/9/RNBAKABNR r - - 100 60")
	require.NoError(t, err)

	assert.True(t, g.InDraw())
	assert.False(t, g.InsufficientMaterial())
}

func TestThreefoldRepetitionIsDraw(t *testing.T) {
	g := NewGame()
	shuffle := [][2]string{{"b0", "c2"}, {"b9", "c7"}, {"c2", "b0"}, {"c7", "b9"}}

	for round := 0; round < 2; round++ {
		assert.False(t, g.InThreefoldRepetition())
		for _, mv := range shuffle {
			_, err := g.Move(mv[0], mv[1])
			require.NoError(t, err)
		}
	}

	assert.True(t, g.InThreefoldRepetition())
	assert.True(t, g.InDraw())
}

func TestRenderFEN(t *testing.T) {
	out, err := RenderFEN(StartFEN)
	require.NoError(t, err)
	assert.Contains(t, out, "9 r n b a k a b n r")
	assert.Contains(t, out, "0 R N B A K A B N R")
	assert.Contains(t, out, "a b c d e f g h i")
}

func TestRandomPlayRoundTripsFEN(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := NewGame()
		steps := rapid.IntRange(0, 40).Draw(t, "steps")

		for i := 0; i < steps; i++ {
			moves := g.LegalMoves()
			if len(moves) == 0 {
				break
			}
			m := moves[rapid.IntRange(0, len(moves)-1).Draw(t, "move")]
			mover := g.Turn()

			if _, err := g.Move(m.From.String(), m.To.String()); err != nil {
				t.Fatalf("legal move %s rejected: %v", m, err)
			}
			if g.Turn() != mover.Opponent() {
				t.Fatalf("turn did not pass after %s", m)
			}

			fen := g.FEN()
			parsed, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("parse %q: %v", fen, err)
			}
			if got := parsed.FEN(); got != fen {
				t.Fatalf("round trip mismatch: %q != %q", got, fen)
			}
		}
	})
}
