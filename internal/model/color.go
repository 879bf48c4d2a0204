package model

// Color identifies a side. Every engine in the arcade is two-sided.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Valid() bool {
	return c == White || c == Black
}

// GameType is the registry tag for an engine implementation.
type GameType string

const (
	GameTypeChess    GameType = "chess"
	GameTypeCheckers GameType = "checkers"
	GameTypeGo       GameType = "go"
	GameTypeShogi    GameType = "shogi"
)
