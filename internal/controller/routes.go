package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/smartchess/internal/middleware"
	"github.com/benbeisheim/smartchess/internal/service"
)

// Register mounts the REST and websocket routes on app. origins limits
// which pages may open websockets; empty allows any.
func Register(app *fiber.App, gameService *service.GameService, origins []string) {
	gameController := NewGameController(gameService)
	wsController := NewWebSocketController(gameService)

	app.Use("/ws/*", middleware.EnsureClientID())
	app.Get("/ws/game/:gameId",
		middleware.WebSocketUpgrade(gameService.GameExists),
		websocket.New(wsController.HandleConnection, websocket.Config{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Origins:         origins,
		}))

	api := app.Group("/api", middleware.EnsureClientID())

	gameRoutes := api.Group("/game")
	gameRoutes.Post("/", gameController.CreateGame)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Delete("/:gameId", gameController.DeleteGame)
	gameRoutes.Post("/:gameId/start", gameController.StartGame)
	gameRoutes.Post("/:gameId/reset", gameController.ResetGame)
	gameRoutes.Post("/:gameId/end", gameController.EndGame)
	gameRoutes.Post("/:gameId/undo", gameController.Undo)
	gameRoutes.Post("/:gameId/click", gameController.Click)
	gameRoutes.Get("/:gameId/moves/:square", gameController.LegalMoves)

	archiveRoutes := api.Group("/archive")
	archiveRoutes.Get("/", gameController.ListArchive)
	archiveRoutes.Get("/:gameId", gameController.GetArchivedGame)
}
