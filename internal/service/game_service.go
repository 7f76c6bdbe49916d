package service

import (
	"context"

	"github.com/benbeisheim/smartchess/internal/game"
	"github.com/benbeisheim/smartchess/internal/model"
	"github.com/benbeisheim/smartchess/internal/player"
	"github.com/benbeisheim/smartchess/internal/store"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) CreateGame(mode Mode, algorithmColor model.Color) (game.State, error) {
	g, err := gs.gameManager.CreateGame(mode, algorithmColor)
	if err != nil {
		return game.State{}, err
	}
	return g.State(), nil
}

func (gs *GameService) GetGameState(gameID string) (game.State, error) {
	g, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return game.State{}, err
	}
	return g.State(), nil
}

// do runs op on the game and starts any algorithm moves that became due.
func (gs *GameService) do(gameID string, op func(*game.Game) error) (game.State, error) {
	g, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return game.State{}, err
	}
	if err := op(g); err != nil {
		return game.State{}, err
	}
	gs.gameManager.Kick(g)
	return g.State(), nil
}

func (gs *GameService) StartGame(gameID string) (game.State, error) {
	return gs.do(gameID, (*game.Game).Start)
}

func (gs *GameService) EndGame(gameID string) (game.State, error) {
	return gs.do(gameID, (*game.Game).End)
}

func (gs *GameService) ResetGame(gameID string) (game.State, error) {
	return gs.do(gameID, func(g *game.Game) error {
		g.Reset()
		return nil
	})
}

func (gs *GameService) Click(gameID, square string) (game.ClickResult, game.State, error) {
	c, err := model.ParseCoordinate(square)
	if err != nil {
		return game.ClickIgnored, game.State{}, err
	}
	result := game.ClickIgnored
	state, err := gs.do(gameID, func(g *game.Game) error {
		var err error
		result, err = g.Click(c)
		return err
	})
	return result, state, err
}

// Undo takes back the last move. Against an algorithm it takes back the
// algorithm's reply as well, so the human is to move again; when the only
// move is the algorithm's opening there is nothing to take back. In a game
// between two algorithms the undone move is simply played again.
func (gs *GameService) Undo(gameID string) (game.State, error) {
	return gs.do(gameID, func(g *game.Game) error {
		history := g.Board().History()
		plies := 1
		if len(history) > 0 && againstAlgorithm(g.Players()) {
			last := history[len(history)-1]
			if !playerFor(g.Players(), last.Piece.Color).IsHuman() {
				plies = 2
			}
		}
		if len(history) < plies {
			return model.ErrNothingToUndo
		}
		for i := 0; i < plies; i++ {
			if _, err := g.Undo(); err != nil {
				return err
			}
		}
		return nil
	})
}

func againstAlgorithm(p game.Players) bool {
	return p.White.IsHuman() != p.Black.IsHuman()
}

func playerFor(p game.Players, c model.Color) *player.Player {
	if c == model.White {
		return p.White
	}
	return p.Black
}

// LegalMoves returns the legal destinations of the piece on square.
func (gs *GameService) LegalMoves(gameID, square string) ([]model.Coordinate, error) {
	c, err := model.ParseCoordinate(square)
	if err != nil {
		return nil, err
	}
	g, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	moves := g.Board().LegalMovesFrom(c)
	if moves == nil {
		moves = []model.Coordinate{}
	}
	return moves, nil
}

// Subscribe registers l for updates of the game and returns the function
// that removes it.
func (gs *GameService) Subscribe(gameID string, l game.Listener) (func(), error) {
	g, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return g.Subscribe(l), nil
}

func (gs *GameService) ListArchive(ctx context.Context) ([]store.GameSummary, error) {
	if gs.gameManager.archive == nil {
		return []store.GameSummary{}, nil
	}
	return gs.gameManager.archive.ListGames(ctx)
}

func (gs *GameService) LoadArchive(ctx context.Context, gameID string) (store.GameRecord, error) {
	if gs.gameManager.archive == nil {
		return store.GameRecord{}, store.ErrNotFound
	}
	return gs.gameManager.archive.LoadGame(ctx, gameID)
}

func (gs *GameService) GameExists(gameID string) bool {
	_, err := gs.gameManager.GetGame(gameID)
	return err == nil
}

func (gs *GameService) DeleteGame(gameID string) error {
	return gs.gameManager.DeleteGame(gameID)
}
