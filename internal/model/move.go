package model

import (
	"fmt"
	"slices"
)

// Move is a request to move a piece to a destination.
type Move struct {
	Piece PieceID    `json:"piece"`
	From  Coordinate `json:"from"`
	To    Coordinate `json:"to"`
}

func (m Move) String() string {
	return fmt.Sprintf("%s-%s", m.From, m.To)
}

// Ply is one applied half-move.
type Ply struct {
	Piece         Piece      `json:"piece"`
	From          Coordinate `json:"from"`
	To            Coordinate `json:"to"`
	CapturedPiece *Piece     `json:"capturedPiece"`
	Check         bool       `json:"check"`
	Notation      string     `json:"notation"`

	undo undoRecord
}

// undoRecord holds what apply changed beyond the moved piece itself.
type undoRecord struct {
	mover       PieceID
	from, to    Coordinate
	hadMoved    bool
	captured    PieceID
	capturedIdx int // position in the victim's active list
	turn        Color
	status      Status
	result      Result
	winner      Color
}

// apply performs a raw move with no validation beyond occupancy and
// returns what is needed to revert it.
func (b *BoardState) apply(from, to Coordinate) undoRecord {
	id := b.cells[from.index()]
	mover := &b.pieces[id]
	rec := undoRecord{
		mover:    id,
		from:     from,
		to:       to,
		hadMoved: mover.HasMoved,
		captured: NoPiece,
		turn:     b.turn,
		status:   b.status,
		result:   b.result,
		winner:   b.winner,
	}
	if victimID := b.cells[to.index()]; victimID != NoPiece {
		victim := b.pieces[victimID]
		side := victim.Color.index()
		rec.captured = victimID
		rec.capturedIdx = slices.Index(b.active[side], victimID)
		b.active[side] = slices.Delete(b.active[side], rec.capturedIdx, rec.capturedIdx+1)
		b.hostages[mover.Color.index()] = append(b.hostages[mover.Color.index()], victimID)
	}
	b.cells[from.index()] = NoPiece
	b.cells[to.index()] = id
	mover.Coordinate = to
	mover.HasMoved = true
	return rec
}

func (b *BoardState) revert(rec undoRecord) {
	mover := &b.pieces[rec.mover]
	mover.Coordinate = rec.from
	mover.HasMoved = rec.hadMoved
	b.cells[rec.from.index()] = rec.mover
	b.cells[rec.to.index()] = NoPiece
	if rec.captured != NoPiece {
		capturer := mover.Color.index()
		b.hostages[capturer] = b.hostages[capturer][:len(b.hostages[capturer])-1]
		side := b.pieces[rec.captured].Color.index()
		b.active[side] = slices.Insert(b.active[side], rec.capturedIdx, rec.captured)
		b.cells[rec.to.index()] = rec.captured
	}
	b.turn = rec.turn
	b.status = rec.status
	b.result = rec.result
	b.winner = rec.winner
}

// MoveTo moves the piece on from to to, capturing an enemy occupant of to
// into the mover's hostage list first. It does not check that the move is
// legal or that it is the mover's turn; use AttemptMove for that.
func (b *BoardState) MoveTo(from, to Coordinate) (Ply, error) {
	if !from.Valid() || !to.Valid() {
		return Ply{}, &MoveError{From: from, To: to, Err: ErrInvalidCoordinate}
	}
	mover := b.occupant(from)
	if mover == nil {
		return Ply{}, &MoveError{From: from, To: to, Err: ErrNoPiece}
	}
	if other := b.occupant(to); other != nil && other.Color == mover.Color {
		return Ply{}, &MoveError{From: from, To: to, Err: ErrOwnPiece}
	}

	ply := Ply{
		Piece:    *mover,
		From:     from,
		To:       to,
		Notation: b.getNotation(from, to),
	}
	if victim := b.occupant(to); victim != nil {
		captured := *victim
		ply.CapturedPiece = &captured
	}
	ply.undo = b.apply(from, to)
	b.history = append(b.history, ply)
	return ply, nil
}

// AttemptMove validates and plays a move for the side to move: the game
// must be in progress and to must be one of the piece's legal destinations.
// On success the turn passes to the opponent and the game ends if the
// opponent is checkmated or stalemated.
func (b *BoardState) AttemptMove(from, to Coordinate) (Ply, error) {
	if b.status != InProgress {
		return Ply{}, &MoveError{From: from, To: to, Err: ErrGameNotInProgress}
	}
	if !from.Valid() || !to.Valid() {
		return Ply{}, &MoveError{From: from, To: to, Err: ErrInvalidCoordinate}
	}
	mover := b.occupant(from)
	if mover == nil {
		return Ply{}, &MoveError{From: from, To: to, Err: ErrNoPiece}
	}
	if mover.Color != b.turn {
		return Ply{}, &MoveError{From: from, To: to, Err: ErrNotYourTurn}
	}
	if !slices.Contains(b.LegalMoves(mover.ID), to) {
		return Ply{}, &MoveError{From: from, To: to, Err: ErrIllegalMove}
	}

	ply, err := b.MoveTo(from, to)
	if err != nil {
		return Ply{}, err
	}
	b.SwitchPlayer()

	last := &b.history[len(b.history)-1]
	last.Check = b.IsInCheck(b.turn)
	switch {
	case b.IsCheckmate():
		last.Notation += "#"
		b.finish(Checkmate, ply.Piece.Color)
	case last.Check:
		last.Notation += "+"
	case b.IsStalemate():
		b.finish(Stalemate, "")
	}
	return *last, nil
}

// Undo takes back the last move made through MoveTo or AttemptMove,
// restoring the turn and game status that preceded it. A checkmate or
// stalemate can be taken back; an abandoned game cannot.
func (b *BoardState) Undo() (Ply, error) {
	if b.result == Abandoned {
		return Ply{}, ErrGameOver
	}
	if len(b.history) == 0 {
		return Ply{}, ErrNothingToUndo
	}
	last := b.history[len(b.history)-1]
	b.history = b.history[:len(b.history)-1]
	b.revert(last.undo)
	return last, nil
}

// History returns the plies played so far.
func (b *BoardState) History() []Ply {
	return slices.Clone(b.history)
}

// LastMove returns the most recent ply, if any.
func (b *BoardState) LastMove() (Ply, bool) {
	if len(b.history) == 0 {
		return Ply{}, false
	}
	return b.history[len(b.history)-1], true
}

func (b *BoardState) getNotation(from, to Coordinate) string {
	piece := b.occupant(from)
	capture := ""
	if b.occupant(to) != nil {
		capture = "x"
	}
	pawnFile := ""
	if piece.Type == Pawn && from.Column != to.Column {
		pawnFile = from.Column.String()
	}
	return fmt.Sprintf("%s%s%s%s", piece.Notation(), pawnFile, capture, to)
}
