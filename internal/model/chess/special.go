package chess

import "github.com/benbeisheim/arcade-backend/internal/model"

const kingHomeCol = 4

// castleRook returns the rook relocation that accompanies a castling king move.
func castleRook(m Move) CastleRookMove {
	row := m.From.Row
	if m.To.Col > m.From.Col {
		return CastleRookMove{From: Square{Row: row, Col: Size - 1}, To: Square{Row: row, Col: 5}}
	}
	return CastleRookMove{From: Square{Row: row, Col: 0}, To: Square{Row: row, Col: 3}}
}

// checkCastling enforces every castling precondition. The unmoved checks run
// before any safety simulation; the king must then be safe on its start
// square, the square it passes and its destination.
func checkCastling(b *Board, m Move, color model.Color) *model.LegalityError {
	king := b.At(m.From)
	if king.Type != King || king.HasMoved {
		return model.Illegal("king has already moved")
	}
	if m.From != (Square{Row: homeRow(color), Col: kingHomeCol}) {
		return model.Illegal("king is not on its home square")
	}
	rook := castleRook(m)
	r := b.At(rook.From)
	if r.Type != Rook || r.Color != color || r.HasMoved {
		return model.Illegal("castling rook on %s is missing or has moved", rook.From)
	}
	lo, hi := rook.From.Col, m.From.Col
	if lo > hi {
		lo, hi = hi, lo
	}
	for col := lo + 1; col < hi; col++ {
		if !b[m.From.Row][col].Empty() {
			return model.Illegal("castling path is blocked at %s", Square{Row: m.From.Row, Col: col})
		}
	}
	dir := sign(m.To.Col - m.From.Col)
	for step := 0; step <= 2; step++ {
		sq := Square{Row: m.From.Row, Col: m.From.Col + dir*step}
		if kingAttackedOn(b, m.From, sq, color) {
			if step == 0 {
				return model.Illegal("cannot castle out of check")
			}
			return model.Illegal("king would castle through or into check at %s", sq)
		}
	}
	return nil
}

// kingAttackedOn reports whether the king standing on from would be attacked
// if it stood on sq instead.
func kingAttackedOn(b *Board, from, sq Square, color model.Color) bool {
	scratch := *b
	king := scratch.At(from)
	scratch.Clear(from)
	scratch.Set(sq, king)
	return IsSquareAttacked(&scratch, sq, color.Opponent())
}

// enPassantVictim is the square of the pawn removed by an en passant capture:
// the capturing pawn's origin row, the destination's file.
func enPassantVictim(m Move) Square {
	return Square{Row: m.From.Row, Col: m.To.Col}
}

// nextEnPassantTarget returns the square a two-square pawn advance passed
// over, or nil for any other move.
func nextEnPassantTarget(p Piece, m Move) *Square {
	if p.Type != Pawn || abs(m.To.Row-m.From.Row) != 2 {
		return nil
	}
	return &Square{Row: m.From.Row + forward(p.Color), Col: m.From.Col}
}
