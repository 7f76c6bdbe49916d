package model

import (
	"slices"
	"sort"
	"testing"
)

func sq(t *testing.T, s string) Coordinate {
	t.Helper()
	c, err := ParseCoordinate(s)
	if err != nil {
		t.Fatalf("ParseCoordinate(%q): %v", s, err)
	}
	return c
}

func pieceOn(t *testing.T, b *BoardState, s string) Piece {
	t.Helper()
	p, ok := b.PieceAt(sq(t, s))
	if !ok {
		t.Fatalf("no piece on %s", s)
	}
	return p
}

func place(t *testing.T, b *BoardState, kind PieceType, color Color, s string) PieceID {
	t.Helper()
	id, err := b.Place(kind, color, sq(t, s))
	if err != nil {
		t.Fatalf("Place(%s %s %s): %v", color, kind, s, err)
	}
	return id
}

func names(cs []Coordinate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.String())
	}
	sort.Strings(out)
	return out
}

func sorted(s ...string) []string {
	out := slices.Clone(s)
	sort.Strings(out)
	return out
}

func play(t *testing.T, b *BoardState, moves ...string) {
	t.Helper()
	for _, m := range moves {
		if _, err := b.AttemptMove(sq(t, m[:2]), sq(t, m[2:])); err != nil {
			t.Fatalf("AttemptMove(%s): %v", m, err)
		}
	}
}

func started(t *testing.T) *BoardState {
	t.Helper()
	b := NewBoardState()
	if err := b.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return b
}
