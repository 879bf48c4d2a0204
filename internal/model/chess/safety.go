package chess

import "github.com/benbeisheim/arcade-backend/internal/model"

// WouldExposeKing reports whether playing m leaves color's king attacked. The
// move is simulated on a copy of b; b itself is never modified.
func WouldExposeKing(b *Board, m Move, color model.Color) bool {
	scratch := *b
	relocate(&scratch, resolve(&scratch, m))
	king, ok := scratch.FindKing(color)
	if !ok {
		return false
	}
	return IsSquareAttacked(&scratch, king, color.Opponent())
}

// relocate carries out a resolved move on b: the moving piece, the castling
// rook, the en passant victim and promotion. Live play and the safety
// simulation both go through here.
func relocate(b *Board, m Move) {
	piece := b.At(m.From)
	b.Clear(m.From)
	if m.EnPassant {
		b.Clear(enPassantVictim(m))
	}
	if m.Castling {
		rook := castleRook(m)
		b.Set(rook.To, b.At(rook.From).moved())
		b.Clear(rook.From)
	}
	if m.Promotion {
		piece.Type = Queen
	}
	b.Set(m.To, piece.moved())
}
