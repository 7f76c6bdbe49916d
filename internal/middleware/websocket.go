package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// GameLookup reports whether a game exists.
type GameLookup func(gameID string) bool

// WebSocketUpgrade ensures that requests to WebSocket endpoints are valid
// WebSocket connection attempts for an existing game from an identified
// client.
func WebSocketUpgrade(exists GameLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		gameID := c.Params("gameId")
		if gameID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "game ID is required",
			})
		}
		if !exists(gameID) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "game not found",
			})
		}
		if ClientID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "client ID is required",
			})
		}

		// The connection context differs from the upgrade context.
		c.Locals("wsGameID", gameID)
		c.Locals("wsClientID", ClientID(c))
		return c.Next()
	}
}
