package model

import (
	"fmt"
	"strings"
)

// Row is a board row. Rows are numbered from the top of the board as drawn
// from white's side, so Eight is row 0 and One is row 7.
type Row int

const (
	Eight Row = iota
	Seven
	Six
	Five
	Four
	Three
	Two
	One
)

func (r Row) String() string {
	if r < Eight || r > One {
		return "?"
	}
	return fmt.Sprintf("%d", boardSize-int(r))
}

// Column is a board file, A through H.
type Column int

const (
	A Column = iota
	B
	C
	D
	E
	F
	G
	H
)

func (c Column) String() string {
	if c < A || c > H {
		return "?"
	}
	return string(rune('a' + int(c)))
}

const boardSize = 8

// Coordinate addresses a board cell. Optional coordinates are passed as
// *Coordinate; nil means "none".
type Coordinate struct {
	Row    Row
	Column Column
}

func NewCoordinate(r Row, c Column) Coordinate {
	return Coordinate{Row: r, Column: c}
}

// Valid reports whether c addresses one of the 64 board cells.
func (c Coordinate) Valid() bool {
	return c.Row >= Eight && c.Row <= One && c.Column >= A && c.Column <= H
}

func (c Coordinate) String() string {
	if !c.Valid() {
		return "-"
	}
	return c.Column.String() + c.Row.String()
}

func (c Coordinate) index() int {
	return int(c.Row)*boardSize + int(c.Column)
}

func (c Coordinate) offset(dRow, dCol int) Coordinate {
	return Coordinate{Row: c.Row + Row(dRow), Column: c.Column + Column(dCol)}
}

func coordinateAt(index int) Coordinate {
	return Coordinate{Row: Row(index / boardSize), Column: Column(index % boardSize)}
}

// ParseCoordinate reads algebraic square text such as "e2".
func ParseCoordinate(s string) (Coordinate, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, s)
	}
	return Coordinate{Row: Row(boardSize - int(rank-'0')), Column: Column(file - 'a')}, nil
}

func (c Coordinate) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: row %d column %d", ErrInvalidCoordinate, c.Row, c.Column)
	}
	return []byte(c.String()), nil
}

func (c *Coordinate) UnmarshalText(text []byte) error {
	parsed, err := ParseCoordinate(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
