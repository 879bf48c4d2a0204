// Package chess implements the chess rule set: pseudo-legal move generation,
// attack detection, the check-safety filter, castling, en passant, promotion
// and terminal-state evaluation, behind a single-writer turn state machine.
package chess

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

// State is a complete snapshot of a chess game.
type State struct {
	Board          Board          `json:"board"`
	SideToMove     model.Color    `json:"sideToMove"`
	EnPassant      *Square        `json:"enPassantTarget"`
	HalfmoveClock  int            `json:"halfmoveClock"`
	FullmoveNumber int            `json:"fullmoveNumber"`
	InCheck        bool           `json:"inCheck"`
	Terminal       model.Terminal `json:"terminal"`
}

func (s State) clone() State {
	if s.EnPassant != nil {
		ep := *s.EnPassant
		s.EnPassant = &ep
	}
	return s
}

// Game owns one chess game. It performs no locking; callers serialize access.
type Game struct {
	state State
	plies []Ply
}

func NewGame() *Game {
	g := &Game{state: State{
		Board:          NewBoard(),
		SideToMove:     model.White,
		FullmoveNumber: 1,
	}}
	g.refresh()
	return g
}

// FromState starts a game from an arbitrary position. InCheck and Terminal
// are recomputed from the position and counters.
func FromState(s State) (*Game, error) {
	if !s.SideToMove.Valid() {
		return nil, model.Corrupt("side to move %q", s.SideToMove)
	}
	if s.HalfmoveClock < 0 || s.FullmoveNumber < 1 {
		return nil, model.Corrupt("counters halfmove=%d fullmove=%d", s.HalfmoveClock, s.FullmoveNumber)
	}
	for _, c := range []model.Color{model.White, model.Black} {
		if n := s.Board.countKings(c); n > 1 {
			return nil, model.Corrupt("%s has %d kings", c, n)
		}
	}
	if s.EnPassant != nil && !validEnPassant(&s.Board, *s.EnPassant, s.SideToMove) {
		return nil, model.Corrupt("en passant target %s", *s.EnPassant)
	}
	g := &Game{state: s.clone()}
	g.refresh()
	return g, nil
}

// validEnPassant reports whether target can follow a two-square advance by
// the opponent of side: the target and the pawn's start square are empty and
// the enemy pawn stands just past the target.
func validEnPassant(b *Board, target Square, side model.Color) bool {
	if !target.InBounds() {
		return false
	}
	row, dir := 5, -1
	if side == model.Black {
		row, dir = 2, 1
	}
	if target.Row != row {
		return false
	}
	pawn := Square{Row: row + dir, Col: target.Col}
	start := Square{Row: row - dir, Col: target.Col}
	p := b.At(pawn)
	return p.Type == Pawn && p.Color == side.Opponent() && b.At(target).Empty() && b.At(start).Empty()
}

// Replay plays moves from the initial position.
func Replay(moves []Move) (*Game, error) {
	g := NewGame()
	for i, m := range moves {
		if _, err := g.play(m); err != nil {
			return nil, fmt.Errorf("replay move %d (%s-%s): %w", i+1, m.From, m.To, err)
		}
	}
	return g, nil
}

func (g *Game) State() State {
	return g.state.clone()
}

// Plies returns the moves accepted by this Game value, oldest first.
func (g *Game) Plies() []Ply {
	return append([]Ply(nil), g.plies...)
}

func (g *Game) IsInCheck(color model.Color) bool {
	return isInCheck(&g.state.Board, color)
}

func isInCheck(b *Board, color model.Color) bool {
	king, ok := b.FindKing(color)
	if !ok {
		return false
	}
	return IsSquareAttacked(b, king, color.Opponent())
}

// Validate reports whether m is legal for the side to move. It never mutates
// the game.
func (g *Game) Validate(m Move) bool {
	return g.Check(m) == nil
}

// Check is Validate with the reason: nil, ErrTerminalState, or a
// *model.LegalityError.
func (g *Game) Check(m Move) error {
	if g.state.Terminal.Over {
		return model.ErrTerminalState
	}
	_, err := g.legalize(m)
	return err
}

// Apply validates and executes m and returns the resulting snapshot.
func (g *Game) Apply(m Move) (State, error) {
	if _, err := g.play(m); err != nil {
		return State{}, err
	}
	return g.State(), nil
}

// legalize runs the full pipeline for m and returns it with resolved flags.
func (g *Game) legalize(m Move) (Move, error) {
	s := &g.state
	if !m.From.InBounds() || !m.To.InBounds() {
		return Move{}, model.OutOfBounds("%s to %s is off the board", m.From, m.To)
	}
	if m.From == m.To {
		return Move{}, model.Illegal("piece must leave %s", m.From)
	}
	p := s.Board.At(m.From)
	if p.Empty() {
		return Move{}, model.Illegal("no piece at %s", m.From)
	}
	if p.Color != s.SideToMove {
		return Move{}, model.Illegal("it is %s's turn", s.SideToMove)
	}

	resolved := resolve(&s.Board, m)
	if reason := m.contradicts(resolved); reason != "" {
		return Move{}, model.Illegal("%s", reason)
	}
	if resolved.Castling {
		if err := checkCastling(&s.Board, resolved, p.Color); err != nil {
			return Move{}, err
		}
		return resolved, nil
	}
	if !containsSquare(PseudoLegalDestinations(&s.Board, m.From, s.EnPassant), m.To) {
		return Move{}, model.Illegal("%s on %s cannot move to %s", p.Type, m.From, m.To)
	}
	if WouldExposeKing(&s.Board, resolved, p.Color) {
		return Move{}, model.Illegal("move would leave the %s king in check", p.Color)
	}
	return resolved, nil
}

func (g *Game) play(m Move) (Ply, error) {
	if g.state.Terminal.Over {
		return Ply{}, model.ErrTerminalState
	}
	mv, err := g.legalize(m)
	if err != nil {
		return Ply{}, err
	}

	s := &g.state
	piece := s.Board.At(mv.From)
	ply := g.makePly(mv)

	s.EnPassant = nil
	relocate(&s.Board, mv)
	s.EnPassant = nextEnPassantTarget(piece, mv)

	if piece.Type == Pawn || ply.Captured != nil {
		s.HalfmoveClock = 0
	} else {
		s.HalfmoveClock++
	}
	if s.SideToMove == model.Black {
		s.FullmoveNumber++
	}
	s.SideToMove = s.SideToMove.Opponent()
	g.refresh()

	switch {
	case s.Terminal.Status == model.StatusCheckmate:
		ply.Notation += "#"
	case s.InCheck:
		ply.Notation += "+"
	}
	g.plies = append(g.plies, ply)
	return ply, nil
}

func (g *Game) refresh() {
	g.state.InCheck = g.IsInCheck(g.state.SideToMove)
	g.state.Terminal = evaluate(&g.state)
}

// LegalMoves lists every legal move for the side to move.
func (g *Game) LegalMoves() []Move {
	if g.state.Terminal.Over {
		return nil
	}
	return legalMoves(&g.state)
}

// LegalMovesFrom lists the legal moves of the piece on from.
func (g *Game) LegalMovesFrom(from Square) []Move {
	if g.state.Terminal.Over || !from.InBounds() {
		return nil
	}
	return legalMovesFrom(&g.state, from)
}

func legalMoves(s *State) []Move {
	var out []Move
	s.Board.each(func(sq Square, p Piece) {
		if p.Color == s.SideToMove {
			out = append(out, legalMovesFrom(s, sq)...)
		}
	})
	return out
}

func legalMovesFrom(s *State, from Square) []Move {
	p := s.Board.At(from)
	if p.Empty() || p.Color != s.SideToMove {
		return nil
	}
	var out []Move
	for _, to := range PseudoLegalDestinations(&s.Board, from, s.EnPassant) {
		mv := resolve(&s.Board, Move{From: from, To: to})
		if !WouldExposeKing(&s.Board, mv, p.Color) {
			out = append(out, mv)
		}
	}
	if p.Type == King {
		for _, dc := range []int{2, -2} {
			to := Square{Row: from.Row, Col: from.Col + dc}
			if !to.InBounds() {
				continue
			}
			mv := Move{From: from, To: to, Castling: true}
			if checkCastling(&s.Board, mv, p.Color) == nil {
				out = append(out, mv)
			}
		}
	}
	return out
}

// makePly records m before it is carried out.
func (g *Game) makePly(m Move) Ply {
	b := &g.state.Board
	ply := Ply{
		Move:     m,
		Piece:    b.At(m.From).Type,
		Notation: g.notation(m),
	}
	victim := m.To
	if m.EnPassant {
		victim = enPassantVictim(m)
	}
	if captured := b.At(victim); !captured.Empty() {
		ply.Captured = &captured
	}
	if m.Castling {
		rook := castleRook(m)
		ply.CastleRookMove = &rook
	}
	return ply
}

func (g *Game) notation(m Move) string {
	b := &g.state.Board
	if m.Castling {
		if m.To.Col > m.From.Col {
			return "O-O"
		}
		return "O-O-O"
	}
	piece := b.At(m.From)
	capture := m.EnPassant || !b.At(m.To).Empty()

	var sb strings.Builder
	sb.WriteString(piece.Type.notation())
	if piece.Type == Pawn {
		if capture {
			sb.WriteString(m.From.file())
		}
	} else {
		sb.WriteString(g.disambiguation(m, piece))
	}
	if capture {
		sb.WriteString("x")
	}
	sb.WriteString(m.To.String())
	if m.Promotion {
		sb.WriteString("=Q")
	}
	return sb.String()
}

// disambiguation returns the file and/or rank needed when another piece of
// the same type could also legally reach m.To.
func (g *Game) disambiguation(m Move, piece Piece) string {
	var rivals []Square
	g.state.Board.each(func(sq Square, p Piece) {
		if sq == m.From || p.Type != piece.Type || p.Color != piece.Color {
			return
		}
		for _, mv := range legalMovesFrom(&g.state, sq) {
			if mv.To == m.To {
				rivals = append(rivals, sq)
				return
			}
		}
	})
	if len(rivals) == 0 {
		return ""
	}
	sameFile, sameRow := false, false
	for _, r := range rivals {
		sameFile = sameFile || r.Col == m.From.Col
		sameRow = sameRow || r.Row == m.From.Row
	}
	switch {
	case !sameFile:
		return m.From.file()
	case !sameRow:
		return fmt.Sprintf("%d", m.From.Row+1)
	}
	return m.From.String()
}
