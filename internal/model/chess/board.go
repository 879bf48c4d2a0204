package chess

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

const Size = 8

// Square is a (row, col) coordinate. Row 0 is white's back rank.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

func (s Square) add(d offset) Square {
	return Square{Row: s.Row + d.row, Col: s.Col + d.col}
}

// String renders the square in algebraic form, e.g. (1,4) is "e2".
func (s Square) String() string {
	if !s.InBounds() {
		return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+s.Col, s.Row+1)
}

func (s Square) file() string {
	return fmt.Sprintf("%c", 'a'+s.Col)
}

func (s Square) light() bool {
	return (s.Row+s.Col)%2 == 1
}

// Board is an 8x8 grid of piece values. Assigning a Board copies it.
type Board [Size][Size]Piece

func (b *Board) At(s Square) Piece {
	return b[s.Row][s.Col]
}

func (b *Board) Set(s Square, p Piece) {
	b[s.Row][s.Col] = p
}

func (b *Board) Clear(s Square) {
	b[s.Row][s.Col] = Piece{}
}

// FindKing returns the square of color's king.
func (b *Board) FindKing(color model.Color) (Square, bool) {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			p := b[row][col]
			if p.Type == King && p.Color == color {
				return Square{Row: row, Col: col}, true
			}
		}
	}
	return Square{}, false
}

func (b *Board) countKings(color model.Color) int {
	n := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if p := b[row][col]; p.Type == King && p.Color == color {
				n++
			}
		}
	}
	return n
}

// each calls fn for every occupied square.
func (b *Board) each(fn func(Square, Piece)) {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if p := b[row][col]; !p.Empty() {
				fn(Square{Row: row, Col: col}, p)
			}
		}
	}
}

func (b *Board) count(fn func(Piece) bool) int {
	n := 0
	b.each(func(_ Square, p Piece) {
		if fn(p) {
			n++
		}
	})
	return n
}

var backRank = [Size]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position.
func NewBoard() Board {
	var b Board
	for col := 0; col < Size; col++ {
		b[0][col] = Piece{Type: backRank[col], Color: model.White}
		b[1][col] = Piece{Type: Pawn, Color: model.White}
		b[6][col] = Piece{Type: Pawn, Color: model.Black}
		b[7][col] = Piece{Type: backRank[col], Color: model.Black}
	}
	return b
}

// MarshalJSON encodes the board as rows of piece objects with null for empty
// cells.
func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([][]*Piece, Size)
	for row := 0; row < Size; row++ {
		rows[row] = make([]*Piece, Size)
		for col := 0; col < Size; col++ {
			if p := b[row][col]; !p.Empty() {
				rows[row][col] = &p
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
	for row, cells := range rows {
		if len(cells) != Size {
			return fmt.Errorf("board row %d has %d cells, want %d", row, len(cells), Size)
		}
		for col, p := range cells {
			if p == nil {
				continue
			}
			if !p.Type.valid() || !p.Color.Valid() {
				return fmt.Errorf("invalid piece %q/%q at %s", p.Type, p.Color, Square{Row: row, Col: col})
			}
			out[row][col] = *p
		}
	}
	*b = out
	return nil
}
