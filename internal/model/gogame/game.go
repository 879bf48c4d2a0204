// Package gogame implements the game of Go. Games end after two consecutive
// passes and are scored as territory plus prisoners, with komi for white.
package gogame

import (
	"encoding/json"
	"errors"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

const (
	DefaultSize = 19
	DefaultKomi = 7.5
)

// Options configure a new game.
type Options struct {
	Size int
	Komi float64
}

// ValidSize reports whether n is one of the supported board sizes.
func ValidSize(n int) bool {
	return n == 9 || n == 13 || n == 19
}

type Prisoners struct {
	Black int `json:"black"`
	White int `json:"white"`
}

func (p *Prisoners) add(c model.Color, n int) {
	if c == model.Black {
		p.Black += n
	} else {
		p.White += n
	}
}

type Score struct {
	Black float64 `json:"black"`
	White float64 `json:"white"`
}

// State is a Go snapshot. Previous is the board before the last move, kept
// for the ko check.
type State struct {
	Board      Board          `json:"board"`
	SideToMove model.Color    `json:"sideToMove"`
	Prisoners  Prisoners      `json:"prisoners"`
	Komi       float64        `json:"komi"`
	Passes     int            `json:"consecutivePasses"`
	MoveNumber int            `json:"moveNumber"`
	Previous   *Board         `json:"previousBoard,omitempty"`
	Score      *Score         `json:"score,omitempty"`
	Terminal   model.Terminal `json:"terminal"`
}

func (s State) clone() State {
	s.Board = s.Board.clone()
	if s.Previous != nil {
		p := s.Previous.clone()
		s.Previous = &p
	}
	if s.Score != nil {
		sc := *s.Score
		s.Score = &sc
	}
	return s
}

// Move places a stone on Point, or passes.
type Move struct {
	Point
	Pass bool `json:"pass,omitempty"`
}

// Placement is an accepted move as recorded in history.
type Placement struct {
	Move
	Color    model.Color `json:"color"`
	Captured []Point     `json:"captured,omitempty"`
}

type Game struct {
	state State
}

func NewGame(opts Options) *Game {
	if !ValidSize(opts.Size) {
		opts.Size = DefaultSize
	}
	return &Game{state: State{
		Board:      NewBoard(opts.Size),
		SideToMove: model.Black,
		Komi:       opts.Komi,
		MoveNumber: 1,
		Terminal:   model.InProgress(),
	}}
}

func FromState(s State) (*Game, error) {
	if !ValidSize(s.Board.Size()) {
		return nil, model.Corrupt("board size %d", s.Board.Size())
	}
	if !s.SideToMove.Valid() {
		return nil, model.Corrupt("side to move %q", s.SideToMove)
	}
	if s.Previous != nil && s.Previous.Size() != s.Board.Size() {
		return nil, model.Corrupt("previous board size %d", s.Previous.Size())
	}
	if s.Passes < 0 || s.MoveNumber < 1 {
		return nil, model.Corrupt("counters passes=%d move=%d", s.Passes, s.MoveNumber)
	}
	g := &Game{state: s.clone()}
	if g.state.Passes >= 2 {
		g.finish()
	} else {
		g.state.Score = nil
		g.state.Terminal = model.InProgress()
	}
	return g, nil
}

func (g *Game) State() State {
	return g.state.clone()
}

func (g *Game) Validate(m Move) bool {
	return g.Check(m) == nil
}

func (g *Game) Check(m Move) error {
	if g.state.Terminal.Over {
		return model.ErrTerminalState
	}
	if m.Pass {
		return nil
	}
	_, _, err := g.place(m.Point)
	return err
}

func (g *Game) Apply(m Move) (State, error) {
	if _, err := g.play(m); err != nil {
		return State{}, err
	}
	return g.State(), nil
}

func (g *Game) play(m Move) (Placement, error) {
	s := &g.state
	if s.Terminal.Over {
		return Placement{}, model.ErrTerminalState
	}
	rec := Placement{Move: m, Color: s.SideToMove}
	if m.Pass {
		rec.Point = Point{}
		prev := s.Board.clone()
		s.Previous = &prev
		s.Passes++
	} else {
		next, captured, err := g.place(m.Point)
		if err != nil {
			return Placement{}, err
		}
		prev := s.Board
		s.Previous = &prev
		s.Board = next
		s.Prisoners.add(s.SideToMove, len(captured))
		s.Passes = 0
		rec.Captured = captured
	}
	s.SideToMove = s.SideToMove.Opponent()
	s.MoveNumber++
	if s.Passes >= 2 {
		g.finish()
	}
	return rec, nil
}

// place returns the board after the side to move plays at p, with the
// stones it captured. The current board is not modified.
func (g *Game) place(p Point) (Board, []Point, error) {
	s := &g.state
	if !s.Board.InBounds(p) {
		return Board{}, nil, model.OutOfBounds("%s is off the %dx%d board", p, s.Board.Size(), s.Board.Size())
	}
	if s.Board.At(p) != Empty {
		return Board{}, nil, model.Illegal("%s is occupied", p)
	}

	stone := stoneOf(s.SideToMove)
	next := s.Board.clone()
	next.Set(p, stone)

	var captured []Point
	for _, n := range next.neighbors(p) {
		if next.At(n) != stone.opponent() {
			continue
		}
		chain, liberties := next.group(n)
		if liberties > 0 {
			continue
		}
		for _, q := range chain {
			next.Set(q, Empty)
		}
		captured = append(captured, chain...)
	}

	if _, liberties := next.group(p); liberties == 0 {
		return Board{}, nil, model.Illegal("suicide at %s", p)
	}
	if s.Previous != nil && next.Equal(*s.Previous) {
		return Board{}, nil, model.Illegal("ko: %s recreates the previous position", p)
	}
	return next, captured, nil
}

func (g *Game) finish() {
	sc := score(&g.state)
	g.state.Score = &sc
	switch {
	case sc.Black > sc.White:
		g.state.Terminal = model.Won(model.Black, model.StatusWin, model.ReasonScore)
	case sc.White > sc.Black:
		g.state.Terminal = model.Won(model.White, model.StatusWin, model.ReasonScore)
	default:
		g.state.Terminal = model.Drawn(model.StatusDraw, model.ReasonScore)
	}
}

// score counts territory (empty regions bordered by one color only) plus
// prisoners, and komi for white.
func score(s *State) Score {
	b := s.Board
	sc := Score{
		Black: float64(s.Prisoners.Black),
		White: float64(s.Prisoners.White) + s.Komi,
	}
	seen := make(map[Point]bool)
	for r := 0; r < b.Size(); r++ {
		for c := 0; c < b.Size(); c++ {
			p := Point{Row: r, Col: c}
			if b.At(p) != Empty || seen[p] {
				continue
			}
			region, borders := emptyRegion(b, p, seen)
			switch borders {
			case 1 << BlackStone:
				sc.Black += float64(region)
			case 1 << WhiteStone:
				sc.White += float64(region)
			}
		}
	}
	return sc
}

// emptyRegion flood-fills the empty area containing start. borders is a bit
// set of the stone colors touching it.
func emptyRegion(b Board, start Point, seen map[Point]bool) (size int, borders int) {
	seen[start] = true
	stack := []Point{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++
		for _, n := range b.neighbors(cur) {
			st := b.At(n)
			if st != Empty {
				borders |= 1 << st
				continue
			}
			if !seen[n] {
				seen[n] = true
				stack = append(stack, n)
			}
		}
	}
	return size, borders
}

var errMissingPoint = errors.New(`move needs "row" and "col", or "pass": true`)

func DecodeMove(data []byte) (Move, error) {
	var d struct {
		Row  *int `json:"row"`
		Col  *int `json:"col"`
		Pass bool `json:"pass"`
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return Move{}, err
	}
	if d.Pass {
		return Move{Pass: true}, nil
	}
	if d.Row == nil || d.Col == nil {
		return Move{}, errMissingPoint
	}
	return Move{Point: Point{Row: *d.Row, Col: *d.Col}}, nil
}
