package checkers

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

const Size = 8

// Piece is a man or a king. The zero Piece is an empty square.
type Piece struct {
	Color model.Color `json:"color"`
	King  bool        `json:"king,omitempty"`
}

func (p Piece) Empty() bool {
	return p.Color == ""
}

type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s Square) InBounds() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

// Dark reports whether s is a playable square. Pieces never leave the dark
// squares.
func (s Square) Dark() bool {
	return (s.Row+s.Col)%2 == 1
}

func (s Square) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

type Board [Size][Size]Piece

// NewBoard places black on the dark squares of rows 0-2 and white on rows 5-7.
func NewBoard() Board {
	var b Board
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			sq := Square{Row: row, Col: col}
			switch {
			case !sq.Dark():
			case row < 3:
				b.Set(sq, Piece{Color: model.Black})
			case row >= Size-3:
				b.Set(sq, Piece{Color: model.White})
			}
		}
	}
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

// Count returns how many pieces color has on the board.
func (b *Board) Count(color model.Color) int {
	n := 0
	for _, row := range b {
		for _, p := range row {
			if p.Color == color {
				n++
			}
		}
	}
	return n
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
	for row, cells := range rows {
		if len(cells) != Size {
			return fmt.Errorf("board row %d has %d cells, want %d", row, len(cells), Size)
		}
		for col, p := range cells {
			if p == nil {
				continue
			}
			sq := Square{Row: row, Col: col}
			if !p.Color.Valid() || !sq.Dark() {
				return fmt.Errorf("invalid piece %q at %s", p.Color, sq)
			}
			out[row][col] = *p
		}
	}
	*b = out
	return nil
}
