package gogame

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

// Stone is the content of one intersection.
type Stone byte

const (
	Empty Stone = iota
	BlackStone
	WhiteStone
)

func stoneOf(c model.Color) Stone {
	if c == model.Black {
		return BlackStone
	}
	return WhiteStone
}

func (s Stone) color() model.Color {
	switch s {
	case BlackStone:
		return model.Black
	case WhiteStone:
		return model.White
	}
	return ""
}

func (s Stone) opponent() Stone {
	switch s {
	case BlackStone:
		return WhiteStone
	case WhiteStone:
		return BlackStone
	}
	return Empty
}

type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Board is a square grid of intersections. Its JSON form is one string per
// row using '.', 'B' and 'W'.
type Board struct {
	size  int
	cells []Stone
}

func NewBoard(size int) Board {
	return Board{size: size, cells: make([]Stone, size*size)}
}

func (b Board) Size() int {
	return b.size
}

func (b Board) InBounds(p Point) bool {
	return p.Row >= 0 && p.Row < b.size && p.Col >= 0 && p.Col < b.size
}

func (b Board) At(p Point) Stone {
	return b.cells[p.Row*b.size+p.Col]
}

func (b Board) Set(p Point, s Stone) {
	b.cells[p.Row*b.size+p.Col] = s
}

func (b Board) clone() Board {
	return Board{size: b.size, cells: append([]Stone(nil), b.cells...)}
}

// Equal reports whether two boards hold the same stones.
func (b Board) Equal(o Board) bool {
	if b.size != o.size {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

func (b Board) neighbors(p Point) []Point {
	out := make([]Point, 0, 4)
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		n := Point{Row: p.Row + d[0], Col: p.Col + d[1]}
		if b.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// group returns the chain of same-colored stones containing p and its
// number of distinct liberties.
func (b Board) group(p Point) ([]Point, int) {
	color := b.At(p)
	seen := map[Point]bool{p: true}
	liberties := map[Point]bool{}
	stack := []Point{p}
	var chain []Point
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		chain = append(chain, cur)
		for _, n := range b.neighbors(cur) {
			switch b.At(n) {
			case Empty:
				liberties[n] = true
			case color:
				if !seen[n] {
					seen[n] = true
					stack = append(stack, n)
				}
			}
		}
	}
	return chain, len(liberties)
}

func (b Board) MarshalJSON() ([]byte, error) {
	rows := make([]string, b.size)
	for r := 0; r < b.size; r++ {
		var sb strings.Builder
		for c := 0; c < b.size; c++ {
			switch b.At(Point{Row: r, Col: c}) {
			case BlackStone:
				sb.WriteByte('B')
			case WhiteStone:
				sb.WriteByte('W')
			default:
				sb.WriteByte('.')
			}
		}
		rows[r] = sb.String()
	}
	return json.Marshal(rows)
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	out := NewBoard(len(rows))
	for r, row := range rows {
		if len(row) != len(rows) {
			return fmt.Errorf("board row %d has %d points, want %d", r, len(row), len(rows))
		}
		for c, ch := range row {
			p := Point{Row: r, Col: c}
			switch ch {
			case '.':
			case 'B':
				out.Set(p, BlackStone)
			case 'W':
				out.Set(p, WhiteStone)
			default:
				return fmt.Errorf("unknown point %q at %s", ch, p)
			}
		}
	}
	*b = out
	return nil
}
