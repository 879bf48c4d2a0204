package shogi

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

const Size = 9

type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

func (s Square) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

type Board [Size][Size]Piece

var backRank = [Size]PieceType{Lance, Knight, Silver, Gold, King, Gold, Silver, Knight, Lance}

// NewBoard returns the standard opening: black on rows 0-2, white on rows
// 6-8, each side's rook on its own right.
func NewBoard() Board {
	var b Board
	for col, t := range backRank {
		b[0][col] = Piece{Type: t, Color: model.Black}
		b[Size-1][col] = Piece{Type: t, Color: model.White}
		b[2][col] = Piece{Type: Pawn, Color: model.Black}
		b[Size-3][col] = Piece{Type: Pawn, Color: model.White}
	}
	b[1][1] = Piece{Type: Rook, Color: model.Black}
	b[1][7] = Piece{Type: Bishop, Color: model.Black}
	b[Size-2][1] = Piece{Type: Bishop, Color: model.White}
	b[Size-2][7] = Piece{Type: Rook, Color: model.White}
	return b
}

func (b *Board) At(s Square) Piece {
	return b[s.Row][s.Col]
}

func (b *Board) Set(s Square, p Piece) {
	b[s.Row][s.Col] = p
}

func (b *Board) Clear(s Square) {
	b[s.Row][s.Col] = Piece{}
}

func (b *Board) FindKing(c model.Color) (Square, bool) {
	for r := range b {
		for col, p := range b[r] {
			if p.Type == King && p.Color == c {
				return Square{Row: r, Col: col}, true
			}
		}
	}
	return Square{}, false
}

func (b *Board) each(fn func(Square, Piece)) {
	for r := range b {
		for c, p := range b[r] {
			if !p.Empty() {
				fn(Square{Row: r, Col: c}, p)
			}
		}
	}
}

// Destinations lists the squares the piece on from attacks or can move to,
// ignoring check. Squares held by its own side are excluded.
func Destinations(b *Board, from Square) []Square {
	p := b.At(from)
	if p.Empty() {
		return nil
	}
	steps, slides := moveSet(p)
	var out []Square
	for _, v := range steps {
		to := Square{Row: from.Row + v.dr, Col: from.Col + v.dc}
		if to.InBounds() && b.At(to).Color != p.Color {
			out = append(out, to)
		}
	}
	for _, v := range slides {
		for to := from; ; {
			to = Square{Row: to.Row + v.dr, Col: to.Col + v.dc}
			if !to.InBounds() {
				break
			}
			occupant := b.At(to)
			if occupant.Color == p.Color {
				break
			}
			out = append(out, to)
			if !occupant.Empty() {
				break
			}
		}
	}
	return out
}

func IsSquareAttacked(b *Board, target Square, by model.Color) bool {
	attacked := false
	b.each(func(from Square, p Piece) {
		if attacked || p.Color != by {
			return
		}
		attacked = containsSquare(Destinations(b, from), target)
	})
	return attacked
}

func isInCheck(b *Board, c model.Color) bool {
	king, ok := b.FindKing(c)
	return ok && IsSquareAttacked(b, king, c.Opponent())
}

func containsSquare(list []Square, s Square) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([][]*Piece, Size)
	for r := range b {
		rows[r] = make([]*Piece, Size)
		for c := range b[r] {
			if p := b[r][c]; !p.Empty() {
				rows[r][c] = &p
			}
		}
	}
	return json.Marshal(rows)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]*Piece
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != Size {
		return fmt.Errorf("board has %d rows, want %d", len(rows), Size)
	}
	var out Board
	for r, cells := range rows {
		if len(cells) != Size {
			return fmt.Errorf("board row %d has %d cells, want %d", r, len(cells), Size)
		}
		for c, p := range cells {
			if p == nil {
				continue
			}
			if !p.Type.valid() || !p.Color.Valid() || (p.Promoted && !p.Type.promotable()) {
				return fmt.Errorf("invalid piece %+v at %s", *p, Square{Row: r, Col: c})
			}
			out[r][c] = *p
		}
	}
	*b = out
	return nil
}

// Hand maps a piece type to how many of it a side holds.
type Hand map[PieceType]int

type Hands struct {
	Black Hand `json:"black"`
	White Hand `json:"white"`
}

func newHands() Hands {
	return Hands{Black: Hand{}, White: Hand{}}
}

func (h Hands) of(c model.Color) Hand {
	if c == model.Black {
		return h.Black
	}
	return h.White
}

func (h Hands) clone() Hands {
	out := newHands()
	for t, n := range h.Black {
		out.Black[t] = n
	}
	for t, n := range h.White {
		out.White[t] = n
	}
	return out
}

func (h Hand) take(t PieceType) {
	if h[t]--; h[t] <= 0 {
		delete(h, t)
	}
}
