// Package checkers implements 8x8 draughts with mandatory capture and
// multi-jump continuation.
package checkers

import (
	"encoding/json"
	"errors"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

// Captures counts the enemy pieces each side has taken.
type Captures struct {
	Black int `json:"black"`
	White int `json:"white"`
}

func (c *Captures) add(color model.Color) {
	if color == model.Black {
		c.Black++
	} else {
		c.White++
	}
}

// State is a checkers snapshot. ContinueFrom is set while a multi-jump is in
// progress: only the piece on it may move, and only by capturing.
type State struct {
	Board        Board          `json:"board"`
	SideToMove   model.Color    `json:"sideToMove"`
	ContinueFrom *Square        `json:"continueFrom"`
	Captured     Captures       `json:"captured"`
	Terminal     model.Terminal `json:"terminal"`
}

func (s State) clone() State {
	if s.ContinueFrom != nil {
		c := *s.ContinueFrom
		s.ContinueFrom = &c
	}
	return s
}

type Move struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

// Step is an accepted move as recorded in history.
type Step struct {
	Move
	Captured  *Square `json:"captured,omitempty"`
	Crowned   bool    `json:"crowned,omitempty"`
	Continues bool    `json:"continues,omitempty"`
}

type Game struct {
	state State
	steps []Step
}

func NewGame() *Game {
	g := &Game{state: State{Board: NewBoard(), SideToMove: model.Black}}
	g.state.Terminal = evaluate(&g.state)
	return g
}

func FromState(s State) (*Game, error) {
	if !s.SideToMove.Valid() {
		return nil, model.Corrupt("side to move %q", s.SideToMove)
	}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			sq := Square{Row: row, Col: col}
			p := s.Board.At(sq)
			if p.Empty() {
				continue
			}
			if !p.Color.Valid() || !sq.Dark() {
				return nil, model.Corrupt("piece %q on %s", p.Color, sq)
			}
		}
	}
	if s.ContinueFrom != nil {
		if !s.ContinueFrom.InBounds() || s.Board.At(*s.ContinueFrom).Color != s.SideToMove {
			return nil, model.Corrupt("continuation square %s", *s.ContinueFrom)
		}
	}
	g := &Game{state: s.clone()}
	g.state.Terminal = evaluate(&g.state)
	return g, nil
}

func (g *Game) State() State {
	return g.state.clone()
}

func (g *Game) Steps() []Step {
	return append([]Step(nil), g.steps...)
}

// Check returns nil if m is legal, ErrTerminalState after the game ended, or
// a *model.LegalityError.
func (g *Game) Check(m Move) error {
	if g.state.Terminal.Over {
		return model.ErrTerminalState
	}
	_, err := legalize(&g.state, m)
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

func (g *Game) play(m Move) (Step, error) {
	if g.state.Terminal.Over {
		return Step{}, model.ErrTerminalState
	}
	step, err := legalize(&g.state, m)
	if err != nil {
		return Step{}, err
	}

	s := &g.state
	p := s.Board.At(m.From)
	s.Board.Clear(m.From)
	if step.Captured != nil {
		s.Board.Clear(*step.Captured)
		s.Captured.add(p.Color)
	}
	if !p.King && m.To.Row == crownRow(p.Color) {
		p.King = true
		step.Crowned = true
	}
	s.Board.Set(m.To, p)

	s.ContinueFrom = nil
	if step.Captured != nil && !step.Crowned && len(jumpsFrom(&s.Board, m.To)) > 0 {
		to := m.To
		s.ContinueFrom = &to
		step.Continues = true
	} else {
		s.SideToMove = s.SideToMove.Opponent()
	}
	s.Terminal = evaluate(s)
	g.steps = append(g.steps, step)
	return step, nil
}

func legalize(s *State, m Move) (Step, error) {
	if !m.From.InBounds() || !m.To.InBounds() {
		return Step{}, model.OutOfBounds("%s to %s is off the board", m.From, m.To)
	}
	p := s.Board.At(m.From)
	if p.Empty() {
		return Step{}, model.Illegal("no piece at %s", m.From)
	}
	if p.Color != s.SideToMove {
		return Step{}, model.Illegal("it is %s's turn", s.SideToMove)
	}
	if s.ContinueFrom != nil && m.From != *s.ContinueFrom {
		return Step{}, model.Illegal("must continue jumping with the piece on %s", *s.ContinueFrom)
	}
	if !m.To.Dark() || !s.Board.At(m.To).Empty() {
		return Step{}, model.Illegal("%s is not an empty dark square", m.To)
	}

	dr, dc := m.To.Row-m.From.Row, m.To.Col-m.From.Col
	if abs(dr) != abs(dc) || abs(dr) > 2 || dr == 0 {
		return Step{}, model.Illegal("pieces move one or two squares diagonally")
	}
	if !p.King && sign(dr) != forward(p.Color) {
		return Step{}, model.Illegal("only kings move backwards")
	}

	if abs(dr) == 2 {
		over := Square{Row: m.From.Row + dr/2, Col: m.From.Col + dc/2}
		victim := s.Board.At(over)
		if victim.Empty() || victim.Color == p.Color {
			return Step{}, model.Illegal("no enemy piece to jump on %s", over)
		}
		return Step{Move: m, Captured: &over}, nil
	}

	if s.ContinueFrom != nil {
		return Step{}, model.Illegal("a multi-jump must continue with a capture")
	}
	if mustCapture(s) {
		return Step{}, model.Illegal("capture is mandatory")
	}
	return Step{Move: m}, nil
}

// LegalMoves lists every move available to the side to move.
func (g *Game) LegalMoves() []Move {
	if g.state.Terminal.Over {
		return nil
	}
	return legalMoves(&g.state)
}

func legalMoves(s *State) []Move {
	if s.ContinueFrom != nil {
		return jumpsFrom(&s.Board, *s.ContinueFrom)
	}
	var jumps, slides []Move
	eachPiece(&s.Board, s.SideToMove, func(from Square) {
		jumps = append(jumps, jumpsFrom(&s.Board, from)...)
		if len(jumps) == 0 {
			slides = append(slides, slidesFrom(&s.Board, from)...)
		}
	})
	if len(jumps) > 0 {
		return jumps
	}
	return slides
}

func mustCapture(s *State) bool {
	found := false
	eachPiece(&s.Board, s.SideToMove, func(from Square) {
		found = found || len(jumpsFrom(&s.Board, from)) > 0
	})
	return found
}

func eachPiece(b *Board, color model.Color, fn func(Square)) {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			sq := Square{Row: row, Col: col}
			if b.At(sq).Color == color {
				fn(sq)
			}
		}
	}
}

func jumpsFrom(b *Board, from Square) []Move {
	p := b.At(from)
	var out []Move
	for _, d := range directions(p) {
		over := Square{Row: from.Row + d[0], Col: from.Col + d[1]}
		to := Square{Row: from.Row + 2*d[0], Col: from.Col + 2*d[1]}
		if !to.InBounds() || !b.At(to).Empty() {
			continue
		}
		if v := b.At(over); !v.Empty() && v.Color != p.Color {
			out = append(out, Move{From: from, To: to})
		}
	}
	return out
}

func slidesFrom(b *Board, from Square) []Move {
	var out []Move
	for _, d := range directions(b.At(from)) {
		to := Square{Row: from.Row + d[0], Col: from.Col + d[1]}
		if to.InBounds() && b.At(to).Empty() {
			out = append(out, Move{From: from, To: to})
		}
	}
	return out
}

func directions(p Piece) [][2]int {
	if p.King {
		return [][2]int{{1, -1}, {1, 1}, {-1, -1}, {-1, 1}}
	}
	f := forward(p.Color)
	return [][2]int{{f, -1}, {f, 1}}
}

// forward is the row direction men of color advance in. Black starts on the
// low rows.
func forward(color model.Color) int {
	if color == model.Black {
		return 1
	}
	return -1
}

func crownRow(color model.Color) int {
	if color == model.Black {
		return Size - 1
	}
	return 0
}

// evaluate: a side without pieces loses; a side with pieces but no move
// draws.
func evaluate(s *State) model.Terminal {
	for _, c := range []model.Color{s.SideToMove, s.SideToMove.Opponent()} {
		if s.Board.Count(c) == 0 {
			return model.Won(c.Opponent(), model.StatusWin, model.ReasonNoPieces)
		}
	}
	if len(legalMoves(s)) == 0 {
		return model.Drawn(model.StatusDraw, model.ReasonNoMoves)
	}
	return model.InProgress()
}

var errMissingSquare = errors.New(`move needs "from" and "to"`)

func DecodeMove(data []byte) (Move, error) {
	var d struct {
		From *Square `json:"from"`
		To   *Square `json:"to"`
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return Move{}, err
	}
	if d.From == nil || d.To == nil {
		return Move{}, errMissingSquare
	}
	return Move{From: *d.From, To: *d.To}, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
