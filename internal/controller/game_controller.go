package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/smartchess/internal/game"
	"github.com/benbeisheim/smartchess/internal/middleware"
	"github.com/benbeisheim/smartchess/internal/model"
	"github.com/benbeisheim/smartchess/internal/service"
	"github.com/benbeisheim/smartchess/internal/store"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

// statusFor maps service and engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound), errors.Is(err, store.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrInvalidCoordinate),
		errors.Is(err, service.ErrUnknownMode),
		errors.Is(err, service.ErrInvalidColor):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrNoPiece),
		errors.Is(err, model.ErrOwnPiece),
		errors.Is(err, model.ErrGameNotInProgress),
		errors.Is(err, model.ErrGameInProgress),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrMissingKing),
		errors.Is(err, model.ErrNothingToUndo),
		errors.Is(err, game.ErrNotHumanTurn),
		errors.Is(err, game.ErrHumanTurn):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

type createGameRequest struct {
	Mode           service.Mode `json:"mode"`
	AlgorithmColor model.Color  `json:"algorithmColor"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	req := createGameRequest{Mode: service.HumanVsHuman}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	state, err := gc.gameService.CreateGame(req.Mode, req.AlgorithmColor)
	if err != nil {
		return fail(c, err)
	}
	log.Infof("client %s created game %s", middleware.ClientID(c), state.GameID)
	return c.Status(fiber.StatusCreated).JSON(state)
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	state, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) StartGame(c *fiber.Ctx) error {
	return gc.respond(c, gc.gameService.StartGame)
}

func (gc *GameController) ResetGame(c *fiber.Ctx) error {
	return gc.respond(c, gc.gameService.ResetGame)
}

func (gc *GameController) EndGame(c *fiber.Ctx) error {
	return gc.respond(c, gc.gameService.EndGame)
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	return gc.respond(c, gc.gameService.Undo)
}

func (gc *GameController) respond(c *fiber.Ctx, op func(gameID string) (game.State, error)) error {
	state, err := op(c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(state)
}

type clickRequest struct {
	Square string `json:"square"`
}

func (gc *GameController) Click(c *fiber.Ctx) error {
	var req clickRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, state, err := gc.gameService.Click(c.Params("gameId"), req.Square)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"result": result,
		"state":  state,
	})
}

func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), c.Params("square"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"square": c.Params("square"),
		"moves":  moves,
	})
}

func (gc *GameController) ListArchive(c *fiber.Ctx) error {
	games, err := gc.gameService.ListArchive(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(games)
}

func (gc *GameController) GetArchivedGame(c *fiber.Ctx) error {
	rec, err := gc.gameService.LoadArchive(c.UserContext(), c.Params("gameId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(rec)
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.gameService.DeleteGame(c.Params("gameId")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
