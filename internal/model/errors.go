package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrNoPiece           = errors.New("no piece at square")
	ErrOwnPiece          = errors.New("destination holds own piece")
	ErrIllegalMove       = errors.New("illegal move")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrGameNotInProgress = errors.New("game not in progress")
	ErrGameInProgress    = errors.New("game already in progress")
	ErrGameOver          = errors.New("game is over")
	ErrMissingKing       = errors.New("each side needs exactly one king")
	ErrNothingToUndo     = errors.New("no move to undo")
)

// MoveError reports a rejected move together with the squares involved.
type MoveError struct {
	From Coordinate
	To   Coordinate
	Err  error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s-%s: %v", e.From, e.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}
