// Package player decides moves for the two sides of a game.
package player

import (
	"errors"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"

	"github.com/benbeisheim/smartchess/internal/model"
)

var (
	ErrHumanMove   = errors.New("human moves come from the board, not the player")
	ErrNoLegalMove = errors.New("no legal move available")
	ErrUnknownKind = errors.New("unknown player kind")
)

// Strategy picks the next move for the side to move.
type Strategy interface {
	DecideMove(b *model.BoardState) (model.Move, error)
}

type Kind string

const (
	KindHuman     Kind = "human"
	KindAlgorithm Kind = "algorithm"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindHuman, KindAlgorithm:
		return Kind(s), nil
	}
	return "", ErrUnknownKind
}

type Player struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Color    model.Color `json:"color"`
	Kind     Kind        `json:"kind"`
	Strategy Strategy    `json:"-"`
}

// New returns a player of the given kind with a generated id and name.
// Algorithm players use the FirstMove strategy.
func New(kind Kind, color model.Color) (*Player, error) {
	p := &Player{
		ID:    uuid.New().String(),
		Name:  petname.Generate(2, "-"),
		Color: color,
		Kind:  kind,
	}
	switch kind {
	case KindHuman:
		p.Strategy = Human{}
	case KindAlgorithm:
		p.Strategy = FirstMove{}
	default:
		return nil, ErrUnknownKind
	}
	return p, nil
}

// IsHuman reports whether moves for p arrive through board clicks.
func (p *Player) IsHuman() bool {
	return p.Kind == KindHuman
}

// Human has no strategy of its own; its moves are made by selecting and
// moving pieces on the board.
type Human struct{}

func (Human) DecideMove(*model.BoardState) (model.Move, error) {
	return model.Move{}, ErrHumanMove
}

// FirstMove scans the side to move's pieces in list order and plays the
// first legal destination of the first piece that has one.
type FirstMove struct{}

func (FirstMove) DecideMove(b *model.BoardState) (model.Move, error) {
	for _, p := range b.ActivePieces(b.Turn()) {
		moves := b.LegalMoves(p.ID)
		if len(moves) == 0 {
			continue
		}
		return model.Move{Piece: p.ID, From: p.Coordinate, To: moves[0]}, nil
	}
	return model.Move{}, ErrNoLegalMove
}
