// Package game drives a board for its views: it holds the selection made by
// clicks, asks algorithm players for their moves and notifies observers
// after every change.
package game

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/smartchess/internal/model"
	"github.com/benbeisheim/smartchess/internal/player"
)

var (
	ErrNothingSelected = errors.New("no piece selected")
	ErrHumanTurn       = errors.New("waiting for a human move")
	ErrNotHumanTurn    = errors.New("not a human player's turn")
)

// ClickResult says what a click on the board did.
type ClickResult string

const (
	ClickIgnored    ClickResult = "ignored"
	ClickSelected   ClickResult = "selected"
	ClickDeselected ClickResult = "deselected"
	ClickMoved      ClickResult = "moved"
)

type Players struct {
	White *player.Player `json:"white"`
	Black *player.Player `json:"black"`
}

func (p Players) forColor(c model.Color) *player.Player {
	if c == model.White {
		return p.White
	}
	return p.Black
}

// State is what observers receive after every change.
type State struct {
	model.Snapshot
	GameID         string             `json:"gameId"`
	Version        uint64             `json:"version"`
	Players        Players            `json:"players"`
	SelectedSquare *model.Coordinate  `json:"selectedSquare"`
	LegalMoves     []model.Coordinate `json:"legalMoves"`
}

// Listener receives board updates. It is called without the game lock held,
// one call at a time, with strictly increasing versions. When the game
// changes again while a listener is busy, the listener gets only the newest
// state once it returns.
type Listener func(State)

// subscription delivers states to one listener in version order.
type subscription struct {
	listener Listener

	mu         sync.Mutex
	latest     State
	hasLatest  bool
	delivering bool
}

func (s *subscription) deliver(state State) {
	s.mu.Lock()
	if s.hasLatest && state.Version <= s.latest.Version {
		s.mu.Unlock()
		return
	}
	s.latest, s.hasLatest = state, true
	if s.delivering {
		// the running delivery picks it up
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for {
		cur := s.latest
		s.mu.Unlock()
		s.listener(cur)
		s.mu.Lock()
		if s.latest.Version == cur.Version {
			s.delivering = false
			s.mu.Unlock()
			return
		}
	}
}

// Game is safe for concurrent use; every operation applies atomically with
// respect to the others and to the states handed to listeners.
type Game struct {
	ID string

	mu        sync.Mutex
	board     *model.BoardState
	players   Players
	selected  *model.Coordinate
	version   uint64
	listeners map[int]*subscription
	nextID    int

	autoPlaying atomic.Bool
}

func New(id string, white, black *player.Player) *Game {
	return &Game{
		ID:        id,
		board:     model.NewBoardState(),
		players:   Players{White: white, Black: black},
		listeners: make(map[int]*subscription),
	}
}

// Subscribe registers l and returns a function that removes it.
func (g *Game) Subscribe(l Listener) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextID
	g.nextID++
	g.listeners[id] = &subscription{listener: l}
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.listeners, id)
	}
}

// update runs fn under the lock and, if it reports a change, hands the
// resulting state to every listener.
func (g *Game) update(fn func() (bool, error)) error {
	g.mu.Lock()
	changed, err := fn()
	if !changed {
		g.mu.Unlock()
		return err
	}
	g.version++
	state := g.stateLocked()
	subs := make([]*subscription, 0, len(g.listeners))
	for _, sub := range g.listeners {
		subs = append(subs, sub)
	}
	g.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(state)
	}
	return err
}

func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Game) stateLocked() State {
	s := State{
		Snapshot:   g.board.Snapshot(),
		GameID:     g.ID,
		Version:    g.version,
		Players:    g.players,
		LegalMoves: []model.Coordinate{},
	}
	if g.selected != nil {
		sel := *g.selected
		s.SelectedSquare = &sel
		s.LegalMoves = append(s.LegalMoves, g.board.LegalMovesFrom(sel)...)
	}
	return s
}

func (g *Game) Players() Players {
	return g.players
}

// Board returns a copy of the current board.
func (g *Game) Board() *model.BoardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Clone()
}

func (g *Game) Start() error {
	return g.update(func() (bool, error) {
		if err := g.board.Start(); err != nil {
			return false, err
		}
		log.Infof("game %s started: %s (%s) vs %s (%s)", g.ID,
			g.players.White.Name, g.players.White.Kind, g.players.Black.Name, g.players.Black.Kind)
		return true, nil
	})
}

func (g *Game) End() error {
	return g.update(func() (bool, error) {
		if err := g.board.End(); err != nil {
			return false, err
		}
		g.selected = nil
		log.Infof("game %s ended", g.ID)
		return true, nil
	})
}

// Reset puts the pieces back in the starting layout. The game must be
// started again before moves are accepted.
func (g *Game) Reset() {
	_ = g.update(func() (bool, error) {
		g.board.Reset()
		g.selected = nil
		return true, nil
	})
}

// SelectPieceAt drops any previous selection and selects the piece on c.
// It reports whether a piece was selected.
func (g *Game) SelectPieceAt(c model.Coordinate) bool {
	var selected bool
	_ = g.update(func() (bool, error) {
		selected = g.selectLocked(c)
		return true, nil
	})
	return selected
}

func (g *Game) selectLocked(c model.Coordinate) bool {
	g.selected = nil
	if !g.board.HasPieceAt(c) {
		return false
	}
	g.selected = &c
	return true
}

func (g *Game) UnselectPiece() {
	_ = g.update(func() (bool, error) {
		if g.selected == nil {
			return false, nil
		}
		g.selected = nil
		return true, nil
	})
}

// Selected returns the selected square, or nil.
func (g *Game) Selected() *model.Coordinate {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.selected == nil {
		return nil
	}
	sel := *g.selected
	return &sel
}

// MoveTo moves the selected piece to dest. The move must be legal for the
// side to move; the selection is cleared either way.
func (g *Game) MoveTo(dest model.Coordinate) (model.Ply, error) {
	var ply model.Ply
	err := g.update(func() (bool, error) {
		if g.selected == nil {
			return false, ErrNothingSelected
		}
		from := *g.selected
		g.selected = nil
		var err error
		ply, err = g.board.AttemptMove(from, dest)
		return true, err
	})
	return ply, err
}

// Click handles a click on square c by the human whose turn it is: pick
// up one of their pieces, move the selected piece to a legal destination,
// or drop the selection.
func (g *Game) Click(c model.Coordinate) (ClickResult, error) {
	result := ClickIgnored
	err := g.update(func() (bool, error) {
		if !g.board.InProgress() {
			log.Debugf("game %s: click on %s ignored, game not in progress", g.ID, c)
			return false, nil
		}
		if !g.players.forColor(g.board.Turn()).IsHuman() {
			return false, ErrNotHumanTurn
		}
		if !g.board.IsValidSquare(c) {
			log.Warnf("game %s: click outside the board", g.ID)
			return false, nil
		}

		if p, ok := g.board.PieceAt(c); ok && p.Color == g.board.Turn() {
			g.selectLocked(c)
			result = ClickSelected
			return true, nil
		}
		if g.selected == nil {
			log.Debugf("game %s: click on %s ignored, nothing selected", g.ID, c)
			return false, nil
		}

		from := *g.selected
		g.selected = nil
		if !slices.Contains(g.board.LegalMovesFrom(from), c) {
			result = ClickDeselected
			return true, nil
		}
		if _, err := g.board.AttemptMove(from, c); err != nil {
			return true, err
		}
		result = ClickMoved
		return true, nil
	})
	return result, err
}

// NeedsAlgorithmMove reports whether the game waits for an algorithm player.
func (g *Game) NeedsAlgorithmMove() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.InProgress() && !g.players.forColor(g.board.Turn()).IsHuman()
}

// PlayAlgorithmTurn asks the side to move for its move and plays it.
func (g *Game) PlayAlgorithmTurn() (model.Ply, error) {
	var ply model.Ply
	err := g.update(func() (bool, error) {
		if !g.board.InProgress() {
			return false, model.ErrGameNotInProgress
		}
		p := g.players.forColor(g.board.Turn())
		if p.IsHuman() {
			return false, ErrHumanTurn
		}
		move, err := p.Strategy.DecideMove(g.board)
		if err != nil {
			return false, err
		}
		g.selected = nil
		ply, err = g.board.AttemptMove(move.From, move.To)
		if err != nil {
			return false, err
		}
		log.Debugf("game %s: %s played %s", g.ID, p.Name, ply.Notation)
		return true, nil
	})
	return ply, err
}

// AutoPlay plays algorithm moves, waiting delay before each, until a human
// is to move, the game stops or ctx is done. Only one AutoPlay runs per
// game at a time; a second call returns immediately.
func (g *Game) AutoPlay(ctx context.Context, delay time.Duration) error {
	if !g.autoPlaying.CompareAndSwap(false, true) {
		return nil
	}
	defer g.autoPlaying.Store(false)

	for g.NeedsAlgorithmMove() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if _, err := g.PlayAlgorithmTurn(); err != nil {
			if errors.Is(err, ErrHumanTurn) || errors.Is(err, model.ErrGameNotInProgress) {
				return nil
			}
			return err
		}
	}
	return nil
}

// Undo takes back the last move.
func (g *Game) Undo() (model.Ply, error) {
	var ply model.Ply
	err := g.update(func() (bool, error) {
		var err error
		ply, err = g.board.Undo()
		if err != nil {
			return false, err
		}
		g.selected = nil
		return true, nil
	})
	return ply, err
}
