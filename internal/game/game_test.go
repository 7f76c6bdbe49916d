package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbeisheim/smartchess/internal/model"
	"github.com/benbeisheim/smartchess/internal/player"
)

func newPlayer(t *testing.T, kind player.Kind, color model.Color) *player.Player {
	t.Helper()
	p, err := player.New(kind, color)
	if err != nil {
		t.Fatalf("player.New: %v", err)
	}
	return p
}

func newGame(t *testing.T, white, black player.Kind) *Game {
	t.Helper()
	g := New("test", newPlayer(t, white, model.White), newPlayer(t, black, model.Black))
	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return g
}

func sq(t *testing.T, s string) model.Coordinate {
	t.Helper()
	c, err := model.ParseCoordinate(s)
	if err != nil {
		t.Fatalf("ParseCoordinate(%q): %v", s, err)
	}
	return c
}

func click(t *testing.T, g *Game, s string, want ClickResult) {
	t.Helper()
	got, err := g.Click(sq(t, s))
	if err != nil {
		t.Fatalf("Click(%s): %v", s, err)
	}
	if got != want {
		t.Fatalf("Click(%s) = %s, want %s", s, got, want)
	}
}

func TestClickSelectThenMove(t *testing.T) {
	g := newGame(t, player.KindHuman, player.KindHuman)

	click(t, g, "e2", ClickSelected)
	state := g.State()
	if state.SelectedSquare == nil || state.SelectedSquare.String() != "e2" {
		t.Fatalf("selected = %v, want e2", state.SelectedSquare)
	}
	if len(state.LegalMoves) != 2 {
		t.Errorf("legal moves for selection = %v, want two", state.LegalMoves)
	}

	click(t, g, "e4", ClickMoved)
	state = g.State()
	if state.SelectedSquare != nil {
		t.Error("selection kept after move")
	}
	if state.ToMove != model.Black {
		t.Errorf("ToMove = %s, want black", state.ToMove)
	}
	if state.Board[model.Four][model.E] == nil {
		t.Error("e4 empty after move")
	}
}

func TestClickReselectsAndDeselects(t *testing.T) {
	g := newGame(t, player.KindHuman, player.KindHuman)

	click(t, g, "e2", ClickSelected)
	click(t, g, "g1", ClickSelected)
	if sel := g.Selected(); sel == nil || sel.String() != "g1" {
		t.Fatalf("selected = %v, want g1", sel)
	}
	// Opponent pieces cannot be picked up and are not reachable.
	click(t, g, "g8", ClickDeselected)
	if g.Selected() != nil {
		t.Error("selection kept after an illegal target")
	}
	click(t, g, "e4", ClickIgnored)
	click(t, g, "e7", ClickIgnored)
}

func TestClickCapture(t *testing.T) {
	g := newGame(t, player.KindHuman, player.KindHuman)
	for _, s := range []string{"e2", "e4", "d7", "d5", "e4"} {
		if _, err := g.Click(sq(t, s)); err != nil {
			t.Fatalf("Click(%s): %v", s, err)
		}
	}
	click(t, g, "d5", ClickMoved)

	state := g.State()
	if len(state.CapturedPieces.White) != 1 || state.CapturedPieces.White[0].Type != model.Pawn {
		t.Errorf("white captures = %+v, want one pawn", state.CapturedPieces.White)
	}
	if state.LastMove == nil || state.LastMove.Notation != "exd5" {
		t.Errorf("last move = %+v, want exd5", state.LastMove)
	}
}

func TestClickBeforeStartIsIgnored(t *testing.T) {
	g := New("idle", newPlayer(t, player.KindHuman, model.White), newPlayer(t, player.KindHuman, model.Black))
	click(t, g, "e2", ClickIgnored)
	if g.Selected() != nil {
		t.Error("click before start selected a piece")
	}
}

func TestClickOnAlgorithmTurn(t *testing.T) {
	g := newGame(t, player.KindAlgorithm, player.KindHuman)
	if _, err := g.Click(sq(t, "e2")); !errors.Is(err, ErrNotHumanTurn) {
		t.Errorf("Click error = %v, want ErrNotHumanTurn", err)
	}
}

func TestSelectAndUnselect(t *testing.T) {
	g := New("sel", newPlayer(t, player.KindHuman, model.White), newPlayer(t, player.KindHuman, model.Black))
	if !g.SelectPieceAt(sq(t, "d8")) {
		t.Fatal("SelectPieceAt(d8) = false")
	}
	if g.SelectPieceAt(sq(t, "d4")) {
		t.Error("SelectPieceAt(d4) = true on an empty square")
	}
	if g.Selected() != nil {
		t.Error("empty-square selection did not clear the previous one")
	}
	g.SelectPieceAt(sq(t, "a2"))
	g.UnselectPiece()
	if g.Selected() != nil {
		t.Error("UnselectPiece kept the selection")
	}
	g.UnselectPiece()
}

func TestMoveToNeedsSelection(t *testing.T) {
	g := newGame(t, player.KindHuman, player.KindHuman)
	if _, err := g.MoveTo(sq(t, "e4")); !errors.Is(err, ErrNothingSelected) {
		t.Errorf("MoveTo error = %v, want ErrNothingSelected", err)
	}
	g.SelectPieceAt(sq(t, "e2"))
	if _, err := g.MoveTo(sq(t, "e5")); !errors.Is(err, model.ErrIllegalMove) {
		t.Errorf("MoveTo(e5) error = %v, want ErrIllegalMove", err)
	}
	g.SelectPieceAt(sq(t, "e2"))
	if _, err := g.MoveTo(sq(t, "e4")); err != nil {
		t.Errorf("MoveTo(e4): %v", err)
	}
}

func TestPlayAlgorithmTurn(t *testing.T) {
	g := newGame(t, player.KindHuman, player.KindAlgorithm)
	if _, err := g.PlayAlgorithmTurn(); !errors.Is(err, ErrHumanTurn) {
		t.Fatalf("PlayAlgorithmTurn on human turn error = %v, want ErrHumanTurn", err)
	}
	click(t, g, "e2", ClickSelected)
	click(t, g, "e4", ClickMoved)
	if !g.NeedsAlgorithmMove() {
		t.Fatal("NeedsAlgorithmMove() = false after the human move")
	}
	ply, err := g.PlayAlgorithmTurn()
	if err != nil {
		t.Fatalf("PlayAlgorithmTurn: %v", err)
	}
	if ply.Piece.Color != model.Black {
		t.Errorf("algorithm moved a %s piece", ply.Piece.Color)
	}
	if g.NeedsAlgorithmMove() {
		t.Error("NeedsAlgorithmMove() = true on the human's turn")
	}
}

func TestAutoPlayAlgorithmsUntilGameEnds(t *testing.T) {
	g := newGame(t, player.KindAlgorithm, player.KindAlgorithm)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	err := g.AutoPlay(ctx, time.Millisecond)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("AutoPlay: %v", err)
	}
	if len(g.State().MoveHistory) == 0 {
		t.Error("AutoPlay made no moves")
	}
}

func TestAutoPlayStopsAtHumanTurn(t *testing.T) {
	g := newGame(t, player.KindAlgorithm, player.KindHuman)
	if err := g.AutoPlay(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("AutoPlay: %v", err)
	}
	state := g.State()
	if len(state.MoveHistory) != 1 || state.ToMove != model.Black {
		t.Errorf("after AutoPlay history=%v toMove=%s", state.MoveHistory, state.ToMove)
	}
}

func TestListenersSeeEveryChange(t *testing.T) {
	g := New("watch", newPlayer(t, player.KindHuman, model.White), newPlayer(t, player.KindHuman, model.Black))
	var seen []State
	cancel := g.Subscribe(func(s State) { seen = append(seen, s) })

	if err := g.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	click(t, g, "e2", ClickSelected)
	click(t, g, "e4", ClickMoved)
	cancel()
	g.Reset()

	if len(seen) != 3 {
		t.Fatalf("listener saw %d updates, want 3", len(seen))
	}
	if seen[0].Status != model.InProgress {
		t.Errorf("first update status = %s", seen[0].Status)
	}
	if seen[2].LastMove == nil || seen[2].LastMove.Notation != "e4" {
		t.Errorf("last update move = %+v, want e4", seen[2].LastMove)
	}
}

func TestUndoAndEnd(t *testing.T) {
	g := newGame(t, player.KindHuman, player.KindHuman)
	click(t, g, "e2", ClickSelected)
	click(t, g, "e4", ClickMoved)
	if _, err := g.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if g.State().ToMove != model.White {
		t.Error("undo did not give the move back to white")
	}
	if err := g.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if g.State().Result != model.Abandoned {
		t.Errorf("Result = %q, want abandoned", g.State().Result)
	}
}

func TestUndoAfterEndKeepsGameOver(t *testing.T) {
	g := newGame(t, player.KindHuman, player.KindHuman)
	click(t, g, "e2", ClickSelected)
	click(t, g, "e4", ClickMoved)
	if err := g.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if _, err := g.Undo(); !errors.Is(err, model.ErrGameOver) {
		t.Errorf("Undo after End error = %v, want ErrGameOver", err)
	}
	s := g.State()
	if s.Status != model.NotStarted || s.Result != model.Abandoned {
		t.Errorf("after Undo status=%s result=%q", s.Status, s.Result)
	}
}

func TestListenerChangingGameKeepsOthersCurrent(t *testing.T) {
	g := newGame(t, player.KindHuman, player.KindHuman)

	reset := false
	g.Subscribe(func(s State) {
		if s.SelectedSquare != nil && !reset {
			reset = true
			g.Reset()
		}
	})
	var seen []State
	g.Subscribe(func(s State) { seen = append(seen, s) })

	click(t, g, "e2", ClickSelected)

	if !reset {
		t.Fatal("first listener never saw the selection")
	}
	if len(seen) == 0 {
		t.Fatal("second listener saw nothing")
	}
	for i := 1; i < len(seen); i++ {
		if seen[i].Version <= seen[i-1].Version {
			t.Errorf("update %d has version %d after %d", i, seen[i].Version, seen[i-1].Version)
		}
	}
	last, now := seen[len(seen)-1], g.State()
	if last.Version != now.Version {
		t.Errorf("last delivered version = %d, current = %d", last.Version, now.Version)
	}
	if last.Status != model.NotStarted || last.SelectedSquare != nil {
		t.Errorf("last delivered status=%s selected=%v, want the reset board", last.Status, last.SelectedSquare)
	}
}

func TestListenerGetsNewestStateAfterReentrantChange(t *testing.T) {
	g := newGame(t, player.KindHuman, player.KindHuman)

	var seen []State
	g.Subscribe(func(s State) {
		seen = append(seen, s)
		if len(seen) == 1 {
			g.UnselectPiece()
		}
	})
	click(t, g, "e2", ClickSelected)

	if len(seen) != 2 {
		t.Fatalf("listener saw %d updates, want 2", len(seen))
	}
	if seen[0].SelectedSquare == nil || seen[1].SelectedSquare != nil {
		t.Errorf("updates selected = %v then %v, want e2 then none", seen[0].SelectedSquare, seen[1].SelectedSquare)
	}
	if seen[1].Version != g.State().Version {
		t.Errorf("last version = %d, want %d", seen[1].Version, g.State().Version)
	}
}
