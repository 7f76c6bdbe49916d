package model

// IsSquareAttacked reports whether any piece of attacker attacks c.
func (b *BoardState) IsSquareAttacked(c Coordinate, attacker Color) bool {
	if !c.Valid() {
		return false
	}
	for _, dir := range rookDirs {
		if p := b.firstAlongRay(c, dir); p != nil && p.Color == attacker && (p.Type == Rook || p.Type == Queen) {
			return true
		}
	}
	for _, dir := range bishopDirs {
		if p := b.firstAlongRay(c, dir); p != nil && p.Color == attacker && (p.Type == Bishop || p.Type == Queen) {
			return true
		}
	}
	if b.attackedByStep(c, attacker, Knight, knightDirs) || b.attackedByStep(c, attacker, King, kingDirs) {
		return true
	}
	// A pawn attacks diagonally forward, so an attacking pawn stands one row
	// behind c from its own point of view.
	back := -pawnDirection(attacker)
	for _, side := range []int{-1, 1} {
		from := c.offset(back, side)
		if !from.Valid() {
			continue
		}
		if p := b.occupant(from); p != nil && p.Color == attacker && p.Type == Pawn {
			return true
		}
	}
	return false
}

func (b *BoardState) firstAlongRay(c Coordinate, dir direction) *Piece {
	target := c.offset(dir.dRow, dir.dCol)
	for target.Valid() {
		if p := b.occupant(target); p != nil {
			return p
		}
		target = target.offset(dir.dRow, dir.dCol)
	}
	return nil
}

func (b *BoardState) attackedByStep(c Coordinate, attacker Color, kind PieceType, dirs []direction) bool {
	for _, dir := range dirs {
		from := c.offset(dir.dRow, dir.dCol)
		if !from.Valid() {
			continue
		}
		if p := b.occupant(from); p != nil && p.Color == attacker && p.Type == kind {
			return true
		}
	}
	return false
}

// King returns the king of color, if it is on the board.
func (b *BoardState) King(color Color) (Piece, bool) {
	for _, id := range b.active[color.index()] {
		if b.pieces[id].Type == King {
			return b.pieces[id], true
		}
	}
	return Piece{}, false
}

// IsInCheck reports whether color's king is attacked. A side without a king
// is never in check.
func (b *BoardState) IsInCheck(color Color) bool {
	king, ok := b.King(color)
	if !ok {
		return false
	}
	return b.IsSquareAttacked(king.Coordinate, color.Opposite())
}

// LegalMoves returns the pseudo-legal destinations of the piece that do not
// leave its own king attacked.
func (b *BoardState) LegalMoves(id PieceID) []Coordinate {
	pseudo := b.PossibleMoves(id)
	if len(pseudo) == 0 {
		return pseudo
	}
	piece := b.pieces[id]
	legal := make([]Coordinate, 0, len(pseudo))
	for _, to := range pseudo {
		rec := b.apply(piece.Coordinate, to)
		if !b.IsInCheck(piece.Color) {
			legal = append(legal, to)
		}
		b.revert(rec)
	}
	return legal
}

// LegalMovesFrom returns the legal destinations of the piece on c.
func (b *BoardState) LegalMovesFrom(c Coordinate) []Coordinate {
	piece, ok := b.PieceAt(c)
	if !ok {
		return nil
	}
	return b.LegalMoves(piece.ID)
}

// PiecesThatCanBeMoved returns the active pieces of the side to move that
// have at least one legal destination, in list order.
func (b *BoardState) PiecesThatCanBeMoved() []Piece {
	var movable []Piece
	for _, id := range b.active[b.turn.index()] {
		if len(b.LegalMoves(id)) > 0 {
			movable = append(movable, b.pieces[id])
		}
	}
	return movable
}

func (b *BoardState) hasAnyLegalMove() bool {
	for _, id := range b.active[b.turn.index()] {
		if len(b.LegalMoves(id)) > 0 {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is in check with no legal move.
func (b *BoardState) IsCheckmate() bool {
	return b.IsInCheck(b.turn) && !b.hasAnyLegalMove()
}

// IsStalemate reports whether the side to move is not in check but has no
// legal move.
func (b *BoardState) IsStalemate() bool {
	return !b.IsInCheck(b.turn) && !b.hasAnyLegalMove()
}
