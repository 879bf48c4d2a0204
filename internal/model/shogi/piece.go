package shogi

import "github.com/benbeisheim/arcade-backend/internal/model"

type PieceType string

const (
	King   PieceType = "king"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Gold   PieceType = "gold"
	Silver PieceType = "silver"
	Knight PieceType = "knight"
	Lance  PieceType = "lance"
	Pawn   PieceType = "pawn"
)

// handOrder lists the piece types that can be held in hand.
var handOrder = []PieceType{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}

func (t PieceType) valid() bool {
	return t == King || t.droppable()
}

func (t PieceType) droppable() bool {
	for _, h := range handOrder {
		if t == h {
			return true
		}
	}
	return false
}

func (t PieceType) promotable() bool {
	return t != King && t != Gold && t.valid()
}

func (t PieceType) letter() byte {
	switch t {
	case King:
		return 'K'
	case Rook:
		return 'R'
	case Bishop:
		return 'B'
	case Gold:
		return 'G'
	case Silver:
		return 'S'
	case Knight:
		return 'N'
	case Lance:
		return 'L'
	case Pawn:
		return 'P'
	}
	return '?'
}

type Piece struct {
	Type     PieceType   `json:"type"`
	Color    model.Color `json:"color"`
	Promoted bool        `json:"promoted,omitempty"`
}

func (p Piece) Empty() bool {
	return p.Type == ""
}

type vec struct{ dr, dc int }

var (
	orthogonal = []vec{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal   = []vec{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	allAround  = append(append([]vec{}, orthogonal...), diagonal...)
)

// moveSet returns the single steps and the sliding rays of p.
func moveSet(p Piece) (steps, slides []vec) {
	f := forward(p.Color)
	gold := []vec{{f, -1}, {f, 0}, {f, 1}, {0, -1}, {0, 1}, {-f, 0}}
	switch {
	case p.Type == King:
		return allAround, nil
	case p.Type == Rook:
		if p.Promoted {
			steps = diagonal
		}
		return steps, orthogonal
	case p.Type == Bishop:
		if p.Promoted {
			steps = orthogonal
		}
		return steps, diagonal
	case p.Type == Gold || p.Promoted:
		return gold, nil
	case p.Type == Silver:
		return []vec{{f, -1}, {f, 0}, {f, 1}, {-f, -1}, {-f, 1}}, nil
	case p.Type == Knight:
		return []vec{{2 * f, -1}, {2 * f, 1}}, nil
	case p.Type == Lance:
		return nil, []vec{{f, 0}}
	case p.Type == Pawn:
		return []vec{{f, 0}}, nil
	}
	return nil, nil
}

// forward is the row direction color advances in. White starts on the high
// rows and moves toward row 0.
func forward(c model.Color) int {
	if c == model.White {
		return -1
	}
	return 1
}

// inZone reports whether row is in color's promotion zone, the far three
// rows.
func inZone(c model.Color, row int) bool {
	if c == model.White {
		return row <= 2
	}
	return row >= Size-3
}

// stuck reports whether an unpromoted piece of type t on row would have no
// further move: pawn or lance on the last row, knight on the last two.
func stuck(t PieceType, c model.Color, row int) bool {
	depth := row
	if c == model.Black {
		depth = Size - 1 - row
	}
	switch t {
	case Pawn, Lance:
		return depth == 0
	case Knight:
		return depth <= 1
	}
	return false
}
