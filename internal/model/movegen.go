package model

type direction struct {
	dRow, dCol int
}

var (
	rookDirs   = []direction{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirs = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	kingDirs   = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightDirs = []direction{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
)

// pawnDirection is the row step of a pawn of color. White advances toward
// row Eight, which is the lower row index.
func pawnDirection(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// PossibleMoves returns the pseudo-legal destinations of the piece: blocking
// and captures are respected, but the mover's king safety is not checked.
// Captured pieces have no moves.
func (b *BoardState) PossibleMoves(id PieceID) []Coordinate {
	piece, ok := b.Piece(id)
	if !ok || !piece.Coordinate.Valid() || b.cells[piece.Coordinate.index()] != id {
		return nil
	}
	switch piece.Type {
	case Pawn:
		return b.getPsuedoPawnMoves(piece)
	case Knight:
		return b.getStepMoves(piece, knightDirs)
	case Bishop:
		return b.getSlidingMoves(piece, bishopDirs)
	case Rook:
		return b.getSlidingMoves(piece, rookDirs)
	case Queen:
		return append(b.getSlidingMoves(piece, rookDirs), b.getSlidingMoves(piece, bishopDirs)...)
	case King:
		return b.getStepMoves(piece, kingDirs)
	default:
		return nil
	}
}

func (b *BoardState) getSlidingMoves(piece Piece, dirs []direction) []Coordinate {
	moves := []Coordinate{}
	for _, dir := range dirs {
		target := piece.Coordinate.offset(dir.dRow, dir.dCol)
		for target.Valid() {
			other := b.occupant(target)
			if other == nil {
				moves = append(moves, target)
			} else if other.Color != piece.Color {
				moves = append(moves, target)
				break
			} else {
				break
			}
			target = target.offset(dir.dRow, dir.dCol)
		}
	}
	return moves
}

func (b *BoardState) getStepMoves(piece Piece, dirs []direction) []Coordinate {
	moves := []Coordinate{}
	for _, dir := range dirs {
		target := piece.Coordinate.offset(dir.dRow, dir.dCol)
		if !target.Valid() {
			continue
		}
		if other := b.occupant(target); other == nil || other.Color != piece.Color {
			moves = append(moves, target)
		}
	}
	return moves
}

func (b *BoardState) getPsuedoPawnMoves(piece Piece) []Coordinate {
	moves := []Coordinate{}
	dir := pawnDirection(piece.Color)

	one := piece.Coordinate.offset(dir, 0)
	if one.Valid() && b.occupant(one) == nil {
		moves = append(moves, one)
		two := piece.Coordinate.offset(2*dir, 0)
		if !piece.HasMoved && two.Valid() && b.occupant(two) == nil {
			moves = append(moves, two)
		}
	}
	for _, side := range []int{-1, 1} {
		target := piece.Coordinate.offset(dir, side)
		if !target.Valid() {
			continue
		}
		if other := b.occupant(target); other != nil && other.Color != piece.Color {
			moves = append(moves, target)
		}
	}
	return moves
}
