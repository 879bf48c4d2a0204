package chess

import "github.com/benbeisheim/arcade-backend/internal/model"

// FiftyMoveLimit is the halfmove clock value that forces a draw.
const FiftyMoveLimit = 50

// evaluate decides the terminal status of s. Order matters: a missing king
// first, then rule draws, then the side to move's legal moves.
func evaluate(s *State) model.Terminal {
	if _, ok := s.Board.FindKing(model.White); !ok {
		return model.Won(model.Black, model.StatusKingMissing, "white king is missing")
	}
	if _, ok := s.Board.FindKing(model.Black); !ok {
		return model.Won(model.White, model.StatusKingMissing, "black king is missing")
	}
	if s.HalfmoveClock >= FiftyMoveLimit {
		return model.Drawn(model.StatusDraw, model.ReasonFiftyMove)
	}
	if InsufficientMaterial(&s.Board) {
		return model.Drawn(model.StatusDraw, model.ReasonInsufficientMaterial)
	}
	if len(legalMoves(s)) > 0 {
		return model.InProgress()
	}
	if isInCheck(&s.Board, s.SideToMove) {
		return model.Won(s.SideToMove.Opponent(), model.StatusCheckmate, "")
	}
	return model.Drawn(model.StatusStalemate, model.ReasonNoMoves)
}

// InsufficientMaterial reports whether neither side can force mate: bare
// kings, a single minor piece, or two bishops on squares of one color.
func InsufficientMaterial(b *Board) bool {
	var others []Square
	b.each(func(sq Square, p Piece) {
		if p.Type != King {
			others = append(others, sq)
		}
	})
	switch len(others) {
	case 0:
		return true
	case 1:
		return b.At(others[0]).Type.isMinor()
	case 2:
		a, c := others[0], others[1]
		return b.At(a).Type == Bishop && b.At(c).Type == Bishop && a.light() == c.light()
	}
	return false
}
