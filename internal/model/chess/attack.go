package chess

import "github.com/benbeisheim/arcade-backend/internal/model"

type offset struct {
	row, col int
}

var (
	rookDirs    = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs  = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs   = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightJumps = []offset{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingSteps   = queenDirs
)

// forward is the row direction pawns of color advance in.
func forward(color model.Color) int {
	if color == model.White {
		return 1
	}
	return -1
}

func pawnStartRow(color model.Color) int {
	if color == model.White {
		return 1
	}
	return Size - 2
}

func homeRow(color model.Color) int {
	if color == model.White {
		return 0
	}
	return Size - 1
}

func lastRow(color model.Color) int {
	return homeRow(color.Opponent())
}

// PseudoLegalDestinations returns every square the piece on from can move to
// by geometry and occupancy alone. The result may still expose the mover's
// king and never includes castling. enPassant is the current en-passant target
// or nil.
func PseudoLegalDestinations(b *Board, from Square, enPassant *Square) []Square {
	if !from.InBounds() {
		return nil
	}
	p := b.At(from)
	switch p.Type {
	case Pawn:
		return pawnDestinations(b, from, p.Color, enPassant)
	case Knight:
		return stepDestinations(b, from, p.Color, knightJumps)
	case King:
		return stepDestinations(b, from, p.Color, kingSteps)
	case Bishop:
		return slideDestinations(b, from, p.Color, bishopDirs)
	case Rook:
		return slideDestinations(b, from, p.Color, rookDirs)
	case Queen:
		return slideDestinations(b, from, p.Color, queenDirs)
	}
	return nil
}

func slideDestinations(b *Board, from Square, color model.Color, dirs []offset) []Square {
	var out []Square
	for _, d := range dirs {
		for sq := from.add(d); sq.InBounds(); sq = sq.add(d) {
			occupant := b.At(sq)
			if occupant.Empty() {
				out = append(out, sq)
				continue
			}
			if occupant.Color != color {
				out = append(out, sq)
			}
			break
		}
	}
	return out
}

func stepDestinations(b *Board, from Square, color model.Color, steps []offset) []Square {
	var out []Square
	for _, d := range steps {
		sq := from.add(d)
		if !sq.InBounds() {
			continue
		}
		if occupant := b.At(sq); occupant.Empty() || occupant.Color != color {
			out = append(out, sq)
		}
	}
	return out
}

func pawnDestinations(b *Board, from Square, color model.Color, enPassant *Square) []Square {
	var out []Square
	dir := forward(color)

	one := Square{Row: from.Row + dir, Col: from.Col}
	if one.InBounds() && b.At(one).Empty() {
		out = append(out, one)
		two := Square{Row: from.Row + 2*dir, Col: from.Col}
		if from.Row == pawnStartRow(color) && b.At(two).Empty() {
			out = append(out, two)
		}
	}

	for _, dc := range []int{-1, 1} {
		diag := Square{Row: from.Row + dir, Col: from.Col + dc}
		if !diag.InBounds() {
			continue
		}
		target := b.At(diag)
		if !target.Empty() {
			if target.Color != color {
				out = append(out, diag)
			}
			continue
		}
		// en passant: the destination is empty but the capture is legal
		if enPassant != nil && *enPassant == diag {
			out = append(out, diag)
		}
	}
	return out
}

// IsSquareAttacked reports whether any piece of color by attacks target.
// Attackers do not need to be safe themselves.
func IsSquareAttacked(b *Board, target Square, by model.Color) bool {
	if !target.InBounds() {
		return false
	}
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			p := b[row][col]
			if p.Empty() || p.Color != by {
				continue
			}
			if attacks(b, Square{Row: row, Col: col}, p, target) {
				return true
			}
		}
	}
	return false
}

// attacks reports whether p standing on from attacks target. Pawns attack
// diagonally only, so a pawn's forward pushes are not attacks.
func attacks(b *Board, from Square, p Piece, target Square) bool {
	dr, dc := target.Row-from.Row, target.Col-from.Col
	if dr == 0 && dc == 0 {
		return false
	}
	switch p.Type {
	case Pawn:
		return dr == forward(p.Color) && abs(dc) == 1
	case Knight:
		return (abs(dr) == 2 && abs(dc) == 1) || (abs(dr) == 1 && abs(dc) == 2)
	case King:
		return abs(dr) <= 1 && abs(dc) <= 1
	case Rook:
		return (dr == 0 || dc == 0) && pathClear(b, from, target)
	case Bishop:
		return abs(dr) == abs(dc) && pathClear(b, from, target)
	case Queen:
		return (dr == 0 || dc == 0 || abs(dr) == abs(dc)) && pathClear(b, from, target)
	}
	return false
}

// pathClear reports whether every square strictly between from and to on a
// straight or diagonal line is empty.
func pathClear(b *Board, from, to Square) bool {
	step := offset{row: sign(to.Row - from.Row), col: sign(to.Col - from.Col)}
	for sq := from.add(step); sq != to; sq = sq.add(step) {
		if !b.At(sq).Empty() {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func containsSquare(squares []Square, s Square) bool {
	for _, sq := range squares {
		if sq == s {
			return true
		}
	}
	return false
}
