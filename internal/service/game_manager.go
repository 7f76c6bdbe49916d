// service/game_manager.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/benbeisheim/smartchess/internal/game"
	"github.com/benbeisheim/smartchess/internal/model"
	"github.com/benbeisheim/smartchess/internal/player"
	"github.com/benbeisheim/smartchess/internal/store"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrUnknownMode  = errors.New("unknown game mode")
	ErrInvalidColor = errors.New("invalid color")
)

// Mode picks the player kinds of a new game.
type Mode string

const (
	HumanVsHuman         Mode = "hvh"
	HumanVsAlgorithm     Mode = "hva"
	AlgorithmVsAlgorithm Mode = "ava"
)

// Archive receives finished games and serves them back.
type Archive interface {
	SaveGame(ctx context.Context, rec store.GameRecord) error
	ListGames(ctx context.Context) ([]store.GameSummary, error)
	LoadGame(ctx context.Context, id string) (store.GameRecord, error)
}

type GameManager struct {
	games   map[string]*game.Game
	archive Archive
	delay   time.Duration
	mu      sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	kickMu sync.Mutex // orders wg.Add before Close's Wait
	wg     sync.WaitGroup
}

// NewGameManager returns a manager that plays algorithm moves after delay
// and saves finished games to archive. archive may be nil.
func NewGameManager(archive Archive, delay time.Duration) *GameManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &GameManager{
		games:   make(map[string]*game.Game),
		archive: archive,
		delay:   delay,
		ctx:     ctx,
		cancel:  cancel,
	}
}

func newPlayers(mode Mode, algorithmColor model.Color) (white, black *player.Player, err error) {
	whiteKind, blackKind := player.KindHuman, player.KindHuman
	switch mode {
	case HumanVsHuman:
	case HumanVsAlgorithm:
		switch algorithmColor {
		case model.White:
			whiteKind = player.KindAlgorithm
		case model.Black, "":
			blackKind = player.KindAlgorithm
		default:
			return nil, nil, fmt.Errorf("%q: %w", algorithmColor, ErrInvalidColor)
		}
	case AlgorithmVsAlgorithm:
		whiteKind, blackKind = player.KindAlgorithm, player.KindAlgorithm
	default:
		return nil, nil, fmt.Errorf("%q: %w", mode, ErrUnknownMode)
	}
	if white, err = player.New(whiteKind, model.White); err != nil {
		return nil, nil, err
	}
	if black, err = player.New(blackKind, model.Black); err != nil {
		return nil, nil, err
	}
	return white, black, nil
}

// CreateGame registers a new game in the starting layout. It is not started.
func (gm *GameManager) CreateGame(mode Mode, algorithmColor model.Color) (*game.Game, error) {
	white, black, err := newPlayers(mode, algorithmColor)
	if err != nil {
		return nil, err
	}
	g := game.New(uuid.New().String(), white, black)
	if gm.archive != nil {
		g.Subscribe(gm.archiveWhenFinished(g))
	}

	gm.mu.Lock()
	gm.games[g.ID] = g
	gm.mu.Unlock()

	log.Infof("created %s game %s", mode, g.ID)
	return g, nil
}

// archiveWhenFinished saves g each time it gains a result.
func (gm *GameManager) archiveWhenFinished(g *game.Game) game.Listener {
	var (
		mu   sync.Mutex
		last model.Result
	)
	return func(s game.State) {
		mu.Lock()
		finished := s.Result != model.NoResult && last == model.NoResult
		last = s.Result
		mu.Unlock()
		if !finished {
			return
		}
		if err := gm.archive.SaveGame(gm.ctx, record(g, s)); err != nil {
			log.Errorf("archive game %s: %v", g.ID, err)
			return
		}
		log.Infof("archived game %s (%s)", g.ID, s.Result)
	}
}

func record(g *game.Game, s game.State) store.GameRecord {
	players := g.Players()
	rec := store.GameRecord{
		GameSummary: store.GameSummary{
			ID:         g.ID,
			White:      store.Side{Name: players.White.Name, Kind: string(players.White.Kind)},
			Black:      store.Side{Name: players.Black.Name, Kind: string(players.Black.Kind)},
			Result:     s.Result,
			Winner:     s.Winner,
			FinishedAt: time.Now().UTC(),
		},
	}
	for _, ply := range g.Board().History() {
		rec.Plies = append(rec.Plies, store.NewPlyRecord(ply))
	}
	return rec
}

func (gm *GameManager) GetGame(gameID string) (*game.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	g, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}
	return g, nil
}

func (gm *GameManager) DeleteGame(gameID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; !exists {
		return ErrGameNotFound
	}
	delete(gm.games, gameID)
	return nil
}

// Kick starts playing algorithm moves for g in the background if one is due.
// It does nothing once the manager is closed.
func (gm *GameManager) Kick(g *game.Game) {
	if !g.NeedsAlgorithmMove() {
		return
	}
	gm.kickMu.Lock()
	defer gm.kickMu.Unlock()
	if gm.ctx.Err() != nil {
		return
	}
	gm.wg.Add(1)
	go func() {
		defer gm.wg.Done()
		if err := g.AutoPlay(gm.ctx, gm.delay); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("game %s: algorithm move: %v", g.ID, err)
		}
	}()
}

// Close stops background play and waits for it to finish.
func (gm *GameManager) Close() {
	gm.kickMu.Lock()
	gm.cancel()
	gm.kickMu.Unlock()
	gm.wg.Wait()
}
