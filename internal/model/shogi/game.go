// Package shogi implements Japanese chess with drops, optional and forced
// promotion, the check-safety filter and sennichite.
package shogi

import (
	"encoding/json"
	"errors"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

// RepetitionLimit is the number of occurrences of one position that draws
// the game.
const RepetitionLimit = 4

type State struct {
	Board       Board          `json:"board"`
	SideToMove  model.Color    `json:"sideToMove"`
	Hands       Hands          `json:"hands"`
	MoveNumber  int            `json:"moveNumber"`
	InCheck     bool           `json:"inCheck"`
	Repetitions map[string]int `json:"repetitions"`
	Terminal    model.Terminal `json:"terminal"`
}

func (s State) clone() State {
	s.Hands = s.Hands.clone()
	reps := make(map[string]int, len(s.Repetitions))
	for k, v := range s.Repetitions {
		reps[k] = v
	}
	s.Repetitions = reps
	return s
}

// Move is a board move, or a drop from hand when Drop is set. From is
// ignored for drops.
type Move struct {
	From    Square    `json:"from"`
	To      Square    `json:"to"`
	Promote bool      `json:"promote,omitempty"`
	Drop    PieceType `json:"drop,omitempty"`
}

// Action is an accepted move as recorded in history. Promote reports whether
// the piece actually promoted, including forced promotions. A captured piece
// enters the hand unpromoted.
type Action struct {
	Move
	Piece    PieceType `json:"piece"`
	Captured *Piece    `json:"capturedPiece,omitempty"`
}

type Game struct {
	state   State
	actions []Action
}

func NewGame() *Game {
	g := &Game{state: State{
		Board:       NewBoard(),
		SideToMove:  model.White,
		Hands:       newHands(),
		MoveNumber:  1,
		Repetitions: map[string]int{},
	}}
	g.state.Repetitions[positionKey(&g.state)] = 1
	g.refresh()
	return g
}

func FromState(s State) (*Game, error) {
	if !s.SideToMove.Valid() {
		return nil, model.Corrupt("side to move %q", s.SideToMove)
	}
	if s.MoveNumber < 1 {
		return nil, model.Corrupt("move number %d", s.MoveNumber)
	}
	for _, h := range []Hand{s.Hands.Black, s.Hands.White} {
		for t, n := range h {
			if !t.droppable() || n < 0 {
				return nil, model.Corrupt("hand holds %d %s", n, t)
			}
		}
	}
	g := &Game{state: s.clone()}
	if len(g.state.Repetitions) == 0 {
		g.state.Repetitions[positionKey(&g.state)] = 1
	}
	g.refresh()
	return g, nil
}

func (g *Game) State() State {
	return g.state.clone()
}

func (g *Game) Actions() []Action {
	return append([]Action(nil), g.actions...)
}

func (g *Game) Check(m Move) error {
	if g.state.Terminal.Over {
		return model.ErrTerminalState
	}
	_, err := legalize(&g.state, m, true)
	return err
}

func (g *Game) Validate(m Move) bool {
	return g.Check(m) == nil
}

func (g *Game) Apply(m Move) (State, error) {
	if _, err := g.play(m); err != nil {
		return State{}, err
	}
	return g.State(), nil
}

func (g *Game) play(m Move) (Action, error) {
	if g.state.Terminal.Over {
		return Action{}, model.ErrTerminalState
	}
	act, err := legalize(&g.state, m, true)
	if err != nil {
		return Action{}, err
	}
	s := &g.state
	perform(s, act)
	s.SideToMove = s.SideToMove.Opponent()
	s.MoveNumber++
	s.Repetitions[positionKey(s)]++
	g.refresh()
	g.actions = append(g.actions, act)
	return act, nil
}

func (g *Game) refresh() {
	g.state.InCheck = isInCheck(&g.state.Board, g.state.SideToMove)
	g.state.Terminal = evaluate(&g.state)
}

// perform executes a legalized action for the side to move. It does not
// flip the turn.
func perform(s *State, act Action) {
	c := s.SideToMove
	if act.Drop != "" {
		s.Board.Set(act.To, Piece{Type: act.Drop, Color: c})
		s.Hands.of(c).take(act.Drop)
		return
	}
	if act.Captured != nil {
		s.Hands.of(c)[act.Captured.Type]++
	}
	relocate(&s.Board, act)
}

func relocate(b *Board, act Action) {
	if act.Drop != "" {
		return
	}
	p := b.At(act.From)
	b.Clear(act.From)
	if act.Promote {
		p.Promoted = true
	}
	b.Set(act.To, p)
}

// legalize checks m for the side to move. deep enables the pawn-drop-mate
// rule, which needs a nested search of the opponent's replies.
func legalize(s *State, m Move, deep bool) (Action, error) {
	if m.Drop != "" {
		return legalizeDrop(s, m, deep)
	}
	if !m.From.InBounds() || !m.To.InBounds() {
		return Action{}, model.OutOfBounds("%s to %s is off the board", m.From, m.To)
	}
	p := s.Board.At(m.From)
	if p.Empty() {
		return Action{}, model.Illegal("no piece at %s", m.From)
	}
	if p.Color != s.SideToMove {
		return Action{}, model.Illegal("it is %s's turn", s.SideToMove)
	}
	if !containsSquare(Destinations(&s.Board, m.From), m.To) {
		return Action{}, model.Illegal("%s on %s cannot move to %s", p.Type, m.From, m.To)
	}

	canPromote := p.Type.promotable() && !p.Promoted && (inZone(p.Color, m.From.Row) || inZone(p.Color, m.To.Row))
	if m.Promote && !canPromote {
		return Action{}, model.Illegal("%s cannot promote on this move", p.Type)
	}
	act := Action{Move: Move{From: m.From, To: m.To}, Piece: p.Type}
	act.Promote = m.Promote || (!p.Promoted && stuck(p.Type, p.Color, m.To.Row))
	if target := s.Board.At(m.To); !target.Empty() {
		act.Captured = &target
	}

	after := s.Board
	relocate(&after, act)
	if isInCheck(&after, p.Color) {
		return Action{}, model.Illegal("move would leave the %s king in check", p.Color)
	}
	return act, nil
}

func legalizeDrop(s *State, m Move, deep bool) (Action, error) {
	c := s.SideToMove
	if !m.To.InBounds() {
		return Action{}, model.OutOfBounds("drop on %s is off the board", m.To)
	}
	if !m.Drop.droppable() {
		return Action{}, model.Illegal("%q cannot be dropped", m.Drop)
	}
	if s.Hands.of(c)[m.Drop] <= 0 {
		return Action{}, model.Illegal("no %s in hand", m.Drop)
	}
	if !s.Board.At(m.To).Empty() {
		return Action{}, model.Illegal("%s is occupied", m.To)
	}
	if stuck(m.Drop, c, m.To.Row) {
		return Action{}, model.Illegal("a %s dropped on %s could never move", m.Drop, m.To)
	}
	if m.Drop == Pawn && pawnOnFile(&s.Board, c, m.To.Col) {
		return Action{}, model.Illegal("nifu: an unpromoted %s pawn is already on file %d", c, m.To.Col)
	}

	act := Action{Move: Move{To: m.To, Drop: m.Drop}, Piece: m.Drop}
	after := s.Board
	after.Set(m.To, Piece{Type: m.Drop, Color: c})
	if isInCheck(&after, c) {
		return Action{}, model.Illegal("drop would leave the %s king in check", c)
	}
	if deep && m.Drop == Pawn && dropMates(s, act) {
		return Action{}, model.Illegal("uchifuzume: a pawn drop may not give checkmate")
	}
	return act, nil
}

func pawnOnFile(b *Board, c model.Color, col int) bool {
	for r := 0; r < Size; r++ {
		if p := b[r][col]; p.Type == Pawn && p.Color == c && !p.Promoted {
			return true
		}
	}
	return false
}

func dropMates(s *State, act Action) bool {
	next := s.clone()
	perform(&next, act)
	next.SideToMove = next.SideToMove.Opponent()
	if !isInCheck(&next.Board, next.SideToMove) {
		return false
	}
	return !hasLegalMove(&next, false)
}

// candidates lists board moves and drops for the side to move before the
// legality filter.
func candidates(s *State) []Move {
	var out []Move
	s.Board.each(func(from Square, p Piece) {
		if p.Color != s.SideToMove {
			return
		}
		for _, to := range Destinations(&s.Board, from) {
			out = append(out, Move{From: from, To: to})
			optional := p.Type.promotable() && !p.Promoted && !stuck(p.Type, p.Color, to.Row) &&
				(inZone(p.Color, from.Row) || inZone(p.Color, to.Row))
			if optional {
				out = append(out, Move{From: from, To: to, Promote: true})
			}
		}
	})
	for _, t := range handOrder {
		if s.Hands.of(s.SideToMove)[t] <= 0 {
			continue
		}
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				if s.Board[r][c].Empty() {
					out = append(out, Move{To: Square{Row: r, Col: c}, Drop: t})
				}
			}
		}
	}
	return out
}

func hasLegalMove(s *State, deep bool) bool {
	for _, m := range candidates(s) {
		if _, err := legalize(s, m, deep); err == nil {
			return true
		}
	}
	return false
}

// LegalMoves lists every legal move and drop for the side to move.
func (g *Game) LegalMoves() []Move {
	if g.state.Terminal.Over {
		return nil
	}
	var out []Move
	for _, m := range candidates(&g.state) {
		if _, err := legalize(&g.state, m, true); err == nil {
			out = append(out, m)
		}
	}
	return out
}

var errMissingSquare = errors.New(`move needs "from" and "to", or "drop" and "to"`)

func DecodeMove(data []byte) (Move, error) {
	var d struct {
		From    *Square   `json:"from"`
		To      *Square   `json:"to"`
		Promote bool      `json:"promote"`
		Drop    PieceType `json:"drop"`
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return Move{}, err
	}
	if d.To == nil || (d.Drop == "" && d.From == nil) {
		return Move{}, errMissingSquare
	}
	if d.Drop != "" {
		return Move{To: *d.To, Drop: d.Drop}, nil
	}
	return Move{From: *d.From, To: *d.To, Promote: d.Promote}, nil
}
