package shogi

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

func sq(r, c int) Square { return Square{Row: r, Col: c} }

func mv(fr, fc, tr, tc int) Move { return Move{From: sq(fr, fc), To: sq(tr, tc)} }

func drop(t PieceType, r, c int) Move { return Move{To: sq(r, c), Drop: t} }

func w(t PieceType) Piece { return Piece{Type: t, Color: model.White} }
func b(t PieceType) Piece { return Piece{Type: t, Color: model.Black} }

func position(t *testing.T, side model.Color, whiteHand Hand, pieces map[Square]Piece) *Game {
	t.Helper()
	var board Board
	for s, p := range pieces {
		board.Set(s, p)
	}
	hands := newHands()
	for k, n := range whiteHand {
		hands.White[k] = n
	}
	g, err := FromState(State{Board: board, SideToMove: side, Hands: hands, MoveNumber: 1})
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
		if s, err = g.Apply(m); err != nil {
			t.Fatalf("Apply(%+v): %v", m, err)
		}
	}
	return s
}

func TestInitialPosition(t *testing.T) {
	g := NewGame()
	s := g.State()
	if s.SideToMove != model.White {
		t.Errorf("side to move = %s, want white", s.SideToMove)
	}
	if got := len(g.LegalMoves()); got != 30 {
		t.Errorf("opening moves = %d, want 30", got)
	}
	if got := s.Board.At(sq(7, 7)); got != w(Rook) {
		t.Errorf("white rook square holds %+v", got)
	}
	s = mustApply(t, g, mv(6, 2, 5, 2))
	if s.SideToMove != model.Black || s.MoveNumber != 2 {
		t.Errorf("after first move side=%s move=%d", s.SideToMove, s.MoveNumber)
	}
}

func TestPromotion(t *testing.T) {
	kings := func(extra map[Square]Piece) map[Square]Piece {
		m := map[Square]Piece{sq(8, 8): w(King), sq(0, 0): b(King)}
		for k, v := range extra {
			m[k] = v
		}
		return m
	}

	t.Run("optional on entering the zone", func(t *testing.T) {
		g := position(t, model.White, nil, kings(map[Square]Piece{sq(3, 4): w(Pawn)}))
		s := mustApply(t, g, Move{From: sq(3, 4), To: sq(2, 4), Promote: true})
		if p := s.Board.At(sq(2, 4)); !p.Promoted {
			t.Errorf("piece = %+v, want promoted pawn", p)
		}

		g = position(t, model.White, nil, kings(map[Square]Piece{sq(3, 4): w(Pawn)}))
		s = mustApply(t, g, mv(3, 4, 2, 4))
		if p := s.Board.At(sq(2, 4)); p.Promoted {
			t.Error("pawn promoted without being asked")
		}
	})

	t.Run("forced on the last row", func(t *testing.T) {
		g := position(t, model.White, nil, kings(map[Square]Piece{sq(1, 4): w(Pawn)}))
		s := mustApply(t, g, mv(1, 4, 0, 4))
		if p := s.Board.At(sq(0, 4)); !p.Promoted {
			t.Errorf("piece = %+v, want forced promotion", p)
		}
		if !g.Actions()[0].Promote {
			t.Error("recorded action does not show the promotion")
		}
	})

	t.Run("leaving the zone", func(t *testing.T) {
		g := position(t, model.White, nil, kings(map[Square]Piece{sq(2, 4): w(Silver)}))
		if !g.Validate(Move{From: sq(2, 4), To: sq(3, 5), Promote: true}) {
			t.Error("silver leaving the zone could not promote")
		}
	})

	rejections := []struct {
		name  string
		piece Piece
		move  Move
	}{
		{"gold never promotes", w(Gold), Move{From: sq(3, 4), To: sq(2, 4), Promote: true}},
		{"outside the zone", w(Pawn), Move{From: sq(5, 4), To: sq(4, 4), Promote: true}},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			g := position(t, model.White, nil, kings(map[Square]Piece{tt.move.From: tt.piece}))
			if err := g.Check(tt.move); !errors.Is(err, model.ErrIllegalMove) {
				t.Errorf("Check = %v, want ErrIllegalMove", err)
			}
		})
	}
}

func TestCaptureGoesToHandUnpromoted(t *testing.T) {
	g := position(t, model.White, nil, map[Square]Piece{
		sq(8, 8): w(King),
		sq(0, 0): b(King),
		sq(5, 4): w(Rook),
		sq(2, 4): {Type: Bishop, Color: model.Black, Promoted: true},
	})
	s := mustApply(t, g, mv(5, 4, 2, 4))

	if diff := cmp.Diff(Hand{Bishop: 1}, s.Hands.White); diff != "" {
		t.Errorf("white hand mismatch (-want +got):\n%s", diff)
	}
	act := g.Actions()[0]
	if act.Captured == nil || !act.Captured.Promoted {
		t.Errorf("captured = %+v, want the promoted bishop", act.Captured)
	}

	mustApply(t, g, mv(0, 0, 0, 1))
	s = mustApply(t, g, drop(Bishop, 4, 4))
	if p := s.Board.At(sq(4, 4)); p != w(Bishop) {
		t.Errorf("dropped piece = %+v, want unpromoted white bishop", p)
	}
	if len(s.Hands.White) != 0 {
		t.Errorf("hand after drop = %v, want empty", s.Hands.White)
	}
}

func TestDropRules(t *testing.T) {
	base := map[Square]Piece{
		sq(8, 8): w(King),
		sq(0, 0): b(King),
		sq(6, 4): w(Pawn),
		sq(5, 5): {Type: Pawn, Color: model.White, Promoted: true},
	}
	hand := Hand{Pawn: 1, Lance: 1, Knight: 1}
	tests := []struct {
		name  string
		move  Move
		legal bool
	}{
		{"pawn on open file", drop(Pawn, 4, 3), true},
		{"nifu", drop(Pawn, 4, 4), false},
		{"promoted pawn does not count", drop(Pawn, 4, 5), true},
		{"pawn on last row", drop(Pawn, 0, 3), false},
		{"lance on last row", drop(Lance, 0, 3), false},
		{"lance on second row", drop(Lance, 1, 3), true},
		{"knight on second row", drop(Knight, 1, 3), false},
		{"knight on third row", drop(Knight, 2, 3), true},
		{"not in hand", drop(Gold, 4, 3), false},
		{"king", drop(King, 4, 3), false},
		{"occupied", drop(Knight, 6, 4), false},
		{"off board", drop(Pawn, 9, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := position(t, model.White, hand, base)
			err := g.Check(tt.move)
			if tt.legal && err != nil {
				t.Errorf("Check = %v, want legal", err)
			}
			if !tt.legal && !errors.Is(err, model.ErrIllegalMove) {
				t.Errorf("Check = %v, want ErrIllegalMove", err)
			}
		})
	}
}

// mateNet surrounds the black king in the corner: the gold guards (1,0) and
// (1,1), the silver guards (0,1).
func mateNet(withSilver bool) map[Square]Piece {
	m := map[Square]Piece{
		sq(0, 0): b(King),
		sq(2, 1): w(Gold),
		sq(8, 8): w(King),
	}
	if withSilver {
		m[sq(1, 2)] = w(Silver)
	}
	return m
}

func TestPawnDropMate(t *testing.T) {
	g := position(t, model.White, Hand{Pawn: 1, Gold: 1}, mateNet(true))

	err := g.Check(drop(Pawn, 1, 0))
	if !errors.Is(err, model.ErrIllegalMove) {
		t.Fatalf("mating pawn drop = %v, want ErrIllegalMove", err)
	}

	s := mustApply(t, g, drop(Gold, 1, 0))
	want := model.Won(model.White, model.StatusCheckmate, "")
	if diff := cmp.Diff(want, s.Terminal); diff != "" {
		t.Errorf("terminal mismatch (-want +got):\n%s", diff)
	}
}

func TestPawnDropCheckThatIsNotMate(t *testing.T) {
	g := position(t, model.White, Hand{Pawn: 1}, mateNet(false))
	s := mustApply(t, g, drop(Pawn, 1, 0))
	if !s.InCheck || s.Terminal.Over {
		t.Errorf("in check = %v, terminal = %+v; want check with an escape", s.InCheck, s.Terminal)
	}
}

func TestCannotIgnoreCheck(t *testing.T) {
	g := position(t, model.White, nil, map[Square]Piece{
		sq(8, 4): w(King),
		sq(8, 0): w(Lance),
		sq(2, 4): b(Rook),
		sq(0, 0): b(King),
	})
	if !g.State().InCheck {
		t.Fatal("white king should be in check from the rook")
	}
	if g.Validate(mv(8, 0, 7, 0)) {
		t.Error("lance move ignored the check")
	}
	if !g.Validate(mv(8, 4, 8, 3)) {
		t.Error("king could not step out of check")
	}
}

func TestSennichite(t *testing.T) {
	g := position(t, model.White, nil, map[Square]Piece{sq(8, 4): w(King), sq(0, 4): b(King)})
	cycle := []Move{mv(8, 4, 8, 3), mv(0, 4, 0, 3), mv(8, 3, 8, 4), mv(0, 3, 0, 4)}

	for i := 0; i < 2; i++ {
		mustApply(t, g, cycle...)
	}
	s := mustApply(t, g, cycle[:3]...)
	if s.Terminal.Over {
		t.Fatalf("game over before the fourth repetition: %+v", s.Terminal)
	}
	s = mustApply(t, g, cycle[3])
	want := model.Drawn(model.StatusDraw, model.ReasonRepetition)
	if diff := cmp.Diff(want, s.Terminal); diff != "" {
		t.Errorf("terminal mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine(t *testing.T) {
	e := NewEngine()
	if err := e.Validate(json.RawMessage(`{"drop":"pawn"}`)); !errors.Is(err, model.ErrMalformedMove) {
		t.Errorf("Validate(drop without to) = %v, want ErrMalformedMove", err)
	}
	if err := e.Validate(json.RawMessage(`{"drop":"pawn","to":{"row":4,"col":4}}`)); !errors.Is(err, model.ErrIllegalMove) {
		t.Errorf("drop from an empty hand = %v, want ErrIllegalMove", err)
	}

	rec, err := e.Apply(json.RawMessage(`{"from":{"row":6,"col":6},"to":{"row":5,"col":6}}`))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	restored := NewEngine()
	if err := restored.Restore(rec.Snapshot); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if diff := cmp.Diff(e.Snapshot(), restored.Snapshot()); diff != "" {
		t.Errorf("restore mismatch (-want +got):\n%s", diff)
	}
	if err := restored.Restore(json.RawMessage(`{"board":[],"sideToMove":"white","moveNumber":1}`)); !errors.Is(err, model.ErrCorruptState) {
		t.Errorf("Restore(bad board) = %v, want ErrCorruptState", err)
	}
}
