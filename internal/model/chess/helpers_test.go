package chess

import (
	"testing"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

func sq(row, col int) Square {
	return Square{Row: row, Col: col}
}

func mv(fromRow, fromCol, toRow, toCol int) Move {
	return Move{From: sq(fromRow, fromCol), To: sq(toRow, toCol)}
}

func white(t PieceType) Piece { return Piece{Type: t, Color: model.White} }
func black(t PieceType) Piece { return Piece{Type: t, Color: model.Black} }

// position builds a game from a sparse piece placement.
func position(t *testing.T, side model.Color, pieces map[Square]Piece) *Game {
	t.Helper()
	var b Board
	for s, p := range pieces {
		b.Set(s, p)
	}
	g, err := FromState(State{Board: b, SideToMove: side, FullmoveNumber: 1})
	if err != nil {
		t.Fatalf("FromState: %v", err)
	}
	return g
}

func mustApply(t *testing.T, g *Game, moves ...Move) State {
	t.Helper()
	var s State
	for _, m := range moves {
		var err error
		s, err = g.Apply(m)
		if err != nil {
			t.Fatalf("Apply(%s-%s): %v", m.From, m.To, err)
		}
	}
	return s
}
