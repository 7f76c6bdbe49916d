package model

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

type PieceType string

func (p PieceType) getPieceNotation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return ""
	}
	return ""
}

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) index() int {
	if c == White {
		return 0
	}
	return 1
}

// PieceID is a stable handle into the board's piece arena.
type PieceID int

// NoPiece marks an empty cell.
const NoPiece PieceID = -1

type Piece struct {
	ID         PieceID    `json:"id"`
	Type       PieceType  `json:"type"`
	Color      Color      `json:"color"`
	Coordinate Coordinate `json:"coordinate"`
	HasMoved   bool       `json:"hasMoved"`
}

func (p Piece) Notation() string {
	return p.Type.getPieceNotation()
}

// Square is a read-only view of one board cell.
type Square struct {
	Coordinate Coordinate `json:"coordinate"`
	Piece      *Piece     `json:"piece"`
}

// BoardState is the position: pieces, cells, turn and captured pieces.
// Cells hold piece handles; a piece's coordinate is only changed by moves
// applied through the board.
type BoardState struct {
	pieces   []Piece
	cells    [boardSize * boardSize]PieceID
	active   [2][]PieceID
	hostages [2][]PieceID // indexed by the capturing colour
	turn     Color
	status   Status
	result   Result
	winner   Color
	history  []Ply
}

// NewBoardState returns a board set up in the standard starting layout.
func NewBoardState() *BoardState {
	b := &BoardState{}
	b.Reset()
	return b
}

// NewEmptyBoard returns a board with no pieces and white to move. Use Place
// to build a position.
func NewEmptyBoard() *BoardState {
	b := &BoardState{}
	b.clear()
	return b
}

func (b *BoardState) clear() {
	b.pieces = b.pieces[:0]
	for i := range b.cells {
		b.cells[i] = NoPiece
	}
	for i := range b.active {
		b.active[i] = nil
		b.hostages[i] = nil
	}
	b.turn = White
	b.status = NotStarted
	b.result = NoResult
	b.winner = ""
	b.history = nil
}

type setupEntry struct {
	kind   PieceType
	column Column
}

// Active lists follow this order; the first-move strategy depends on it.
var backRankSetup = []setupEntry{
	{King, E}, {Queen, D}, {Knight, B}, {Knight, G},
	{Rook, A}, {Rook, H}, {Bishop, C}, {Bishop, F},
}

// Reset clears the board and sets up the standard starting layout with
// white to move. The game is left NotStarted.
func (b *BoardState) Reset() {
	b.clear()
	b.placeSide(White, One, Two)
	b.placeSide(Black, Eight, Seven)
}

func (b *BoardState) placeSide(color Color, backRow, pawnRow Row) {
	for _, e := range backRankSetup {
		b.mustPlace(e.kind, color, NewCoordinate(backRow, e.column))
	}
	for col := A; col <= H; col++ {
		b.mustPlace(Pawn, color, NewCoordinate(pawnRow, col))
	}
}

func (b *BoardState) mustPlace(kind PieceType, color Color, at Coordinate) {
	if _, err := b.Place(kind, color, at); err != nil {
		panic(err)
	}
}

// Place adds a new piece to the board. It is meant for setting up
// positions before a game starts.
func (b *BoardState) Place(kind PieceType, color Color, at Coordinate) (PieceID, error) {
	if !at.Valid() {
		return NoPiece, fmt.Errorf("place %s %s: %w", color, kind, ErrInvalidCoordinate)
	}
	if b.cells[at.index()] != NoPiece {
		return NoPiece, fmt.Errorf("place %s %s at %s: square occupied", color, kind, at)
	}
	id := PieceID(len(b.pieces))
	b.pieces = append(b.pieces, Piece{ID: id, Type: kind, Color: color, Coordinate: at})
	b.cells[at.index()] = id
	b.active[color.index()] = append(b.active[color.index()], id)
	return id, nil
}

// IsValidSquare reports whether c is one of the 64 board cells.
func (b *BoardState) IsValidSquare(c Coordinate) bool {
	return c.Valid()
}

func (b *BoardState) HasPieceAt(c Coordinate) bool {
	_, ok := b.PieceAt(c)
	return ok
}

// PieceAt returns a copy of the piece on c. Invalid coordinates are logged
// and reported as empty.
func (b *BoardState) PieceAt(c Coordinate) (Piece, bool) {
	if !c.Valid() {
		log.Warnf("piece lookup at invalid coordinate row=%d column=%d", c.Row, c.Column)
		return Piece{}, false
	}
	id := b.cells[c.index()]
	if id == NoPiece {
		return Piece{}, false
	}
	return b.pieces[id], true
}

// Piece returns the piece with the given handle, captured or not.
func (b *BoardState) Piece(id PieceID) (Piece, bool) {
	if id < 0 || int(id) >= len(b.pieces) {
		return Piece{}, false
	}
	return b.pieces[id], true
}

// occupant is the unlogged lookup used by move generation.
func (b *BoardState) occupant(c Coordinate) *Piece {
	id := b.cells[c.index()]
	if id == NoPiece {
		return nil
	}
	return &b.pieces[id]
}

func (b *BoardState) Turn() Color {
	return b.turn
}

// SetTurn sets the side to move. It is meant for position setup.
func (b *BoardState) SetTurn(c Color) {
	b.turn = c
}

// SwitchPlayer hands the move to the other side.
func (b *BoardState) SwitchPlayer() {
	b.turn = b.turn.Opposite()
}

// ActivePieces returns the pieces of color still on the board, in list order.
func (b *BoardState) ActivePieces(color Color) []Piece {
	return b.collect(b.active[color.index()])
}

// Hostages returns the pieces captured by color, in capture order.
func (b *BoardState) Hostages(capturer Color) []Piece {
	return b.collect(b.hostages[capturer.index()])
}

func (b *BoardState) collect(ids []PieceID) []Piece {
	out := make([]Piece, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.pieces[id])
	}
	return out
}

// Squares returns all 64 cells in row order starting at a8.
func (b *BoardState) Squares() []Square {
	squares := make([]Square, 0, len(b.cells))
	for i, id := range b.cells {
		sq := Square{Coordinate: coordinateAt(i)}
		if id != NoPiece {
			p := b.pieces[id]
			sq.Piece = &p
		}
		squares = append(squares, sq)
	}
	return squares
}

// Clone returns an independent copy of the board.
func (b *BoardState) Clone() *BoardState {
	c := &BoardState{
		pieces:  append([]Piece(nil), b.pieces...),
		cells:   b.cells,
		turn:    b.turn,
		status:  b.status,
		result:  b.result,
		winner:  b.winner,
		history: append([]Ply(nil), b.history...),
	}
	for i := range b.active {
		c.active[i] = append([]PieceID(nil), b.active[i]...)
		c.hostages[i] = append([]PieceID(nil), b.hostages[i]...)
	}
	return c
}
