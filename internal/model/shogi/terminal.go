package shogi

import (
	"strconv"
	"strings"

	"github.com/benbeisheim/arcade-backend/internal/model"
)

// evaluate: a missing king loses, the fourth occurrence of a position
// draws, and a side with no legal move loses whether or not it is in check.
func evaluate(s *State) model.Terminal {
	for _, c := range []model.Color{model.White, model.Black} {
		if _, ok := s.Board.FindKing(c); !ok {
			return model.Won(c.Opponent(), model.StatusKingMissing, string(c)+" king is missing")
		}
	}
	if s.Repetitions[positionKey(s)] >= RepetitionLimit {
		return model.Drawn(model.StatusDraw, model.ReasonRepetition)
	}
	if hasLegalMove(s, true) {
		return model.InProgress()
	}
	if s.InCheck {
		return model.Won(s.SideToMove.Opponent(), model.StatusCheckmate, "")
	}
	return model.Won(s.SideToMove.Opponent(), model.StatusWin, model.ReasonNoMoves)
}

// positionKey identifies board, hands and side to move for sennichite.
// White pieces are upper case, black lower case, '+' marks a promotion.
func positionKey(s *State) string {
	var sb strings.Builder
	for r := range s.Board {
		for _, p := range s.Board[r] {
			if p.Empty() {
				sb.WriteByte('.')
				continue
			}
			if p.Promoted {
				sb.WriteByte('+')
			}
			l := p.Type.letter()
			if p.Color == model.Black {
				l += 'a' - 'A'
			}
			sb.WriteByte(l)
		}
		sb.WriteByte('/')
	}
	for _, c := range []model.Color{model.White, model.Black} {
		sb.WriteByte(' ')
		for _, t := range handOrder {
			if n := s.Hands.of(c)[t]; n > 0 {
				sb.WriteString(strconv.Itoa(n))
				sb.WriteByte(t.letter())
			}
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(string(s.SideToMove))
	return sb.String()
}
