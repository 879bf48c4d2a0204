package chess

import "github.com/benbeisheim/arcade-backend/internal/model"

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

func (p PieceType) valid() bool {
	switch p {
	case King, Queen, Rook, Bishop, Knight, Pawn:
		return true
	}
	return false
}

func (p PieceType) notation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

func (p PieceType) isMinor() bool {
	return p == Bishop || p == Knight
}

// Piece is stored by value in a board cell. The zero Piece is an empty cell.
type Piece struct {
	Type     PieceType   `json:"type"`
	Color    model.Color `json:"color"`
	HasMoved bool        `json:"hasMoved"`
}

func (p Piece) Empty() bool {
	return p.Type == ""
}

// moved returns the value that lands on the destination square.
func (p Piece) moved() Piece {
	p.HasMoved = true
	return p
}
