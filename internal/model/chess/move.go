package chess

import (
	"encoding/json"
	"errors"
)

// Move is a value; it is never mutated after creation. The flags are optional
// on input: the engine derives them from the board and rejects a move whose
// supplied flag contradicts the derivation.
type Move struct {
	From      Square `json:"from"`
	To        Square `json:"to"`
	Castling  bool   `json:"castling,omitempty"`
	EnPassant bool   `json:"enPassant,omitempty"`
	Promotion bool   `json:"promotion,omitempty"`
}

type CastleRookMove struct {
	From Square `json:"from"`
	To   Square `json:"to"`
}

// Ply is an accepted move as recorded in history.
type Ply struct {
	Move
	Piece          PieceType       `json:"piece"`
	Captured       *Piece          `json:"capturedPiece,omitempty"`
	CastleRookMove *CastleRookMove `json:"castleRookMove,omitempty"`
	Notation       string          `json:"notation"`
}

type moveDescriptor struct {
	From      *Square `json:"from"`
	To        *Square `json:"to"`
	Castling  bool    `json:"castling"`
	EnPassant bool    `json:"enPassant"`
	Promotion bool    `json:"promotion"`
}

var errMissingSquare = errors.New(`move needs "from" and "to"`)

// DecodeMove parses a move descriptor. Extra fields, such as those of a
// recorded Ply, are ignored.
func DecodeMove(data []byte) (Move, error) {
	var d moveDescriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return Move{}, err
	}
	if d.From == nil || d.To == nil {
		return Move{}, errMissingSquare
	}
	return Move{
		From:      *d.From,
		To:        *d.To,
		Castling:  d.Castling,
		EnPassant: d.EnPassant,
		Promotion: d.Promotion,
	}, nil
}

// resolve fills in the special-move flags implied by the board geometry.
// Callers must have checked that a piece stands on m.From.
func resolve(b *Board, m Move) Move {
	p := b.At(m.From)
	out := Move{From: m.From, To: m.To}
	switch p.Type {
	case King:
		out.Castling = m.From.Row == m.To.Row && abs(m.To.Col-m.From.Col) == 2
	case Pawn:
		out.EnPassant = m.From.Col != m.To.Col && b.At(m.To).Empty()
		out.Promotion = m.To.Row == lastRow(p.Color)
	}
	return out
}

// contradicts reports whether a caller-supplied flag disagrees with the
// resolved move.
func (m Move) contradicts(resolved Move) string {
	switch {
	case m.Castling && !resolved.Castling:
		return "move is not a castling move"
	case m.EnPassant && !resolved.EnPassant:
		return "move is not an en passant capture"
	case m.Promotion && !resolved.Promotion:
		return "move does not promote"
	}
	return ""
}
