package model

// Status is the lifecycle stage of a game. Everything except StatusInProgress
// is terminal.
type Status string

const (
	StatusInProgress  Status = "in_progress"
	StatusCheckmate   Status = "checkmate"
	StatusStalemate   Status = "stalemate"
	StatusDraw        Status = "draw"
	StatusKingMissing Status = "king_missing"
	StatusWin         Status = "win"
)

// Draw reasons reported in Terminal.Reason.
const (
	ReasonFiftyMove            = "fifty-move rule"
	ReasonInsufficientMaterial = "insufficient material"
	ReasonRepetition           = "fourfold repetition"
	ReasonNoMoves              = "no legal moves"
	ReasonNoPieces             = "no pieces left"
	ReasonScore                = "score"
)

// Terminal describes whether a game has ended and how. A draw is reported as
// Over with an empty Winner.
type Terminal struct {
	Over   bool   `json:"over"`
	Winner Color  `json:"winner,omitempty"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func InProgress() Terminal {
	return Terminal{Status: StatusInProgress}
}

func Won(winner Color, status Status, reason string) Terminal {
	return Terminal{Over: true, Winner: winner, Status: status, Reason: reason}
}

func Drawn(status Status, reason string) Terminal {
	return Terminal{Over: true, Status: status, Reason: reason}
}

func (t Terminal) IsDraw() bool {
	return t.Over && t.Winner == ""
}
