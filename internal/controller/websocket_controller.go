package controller

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/smartchess/internal/game"
	"github.com/benbeisheim/smartchess/internal/service"
	"github.com/benbeisheim/smartchess/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// connWriter serialises writes; game updates arrive from any goroutine.
type connWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *connWriter) send(t ws.MessageType, payload any) {
	msg, err := ws.NewMessage(t, payload)
	if err != nil {
		log.Errorf("encode %s message: %v", t, err)
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.conn.WriteJSON(msg); err != nil {
		log.Debugf("write %s message: %v", t, err)
	}
}

// HandleConnection streams the game's state to the view and applies the
// clicks and commands it sends until the connection closes.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID, _ := c.Locals("wsGameID").(string)
	clientID, _ := c.Locals("wsClientID").(string)
	out := &connWriter{conn: c}

	cancel, err := wsc.gameService.Subscribe(gameID, func(s game.State) {
		out.send(ws.MessageTypeGameState, s)
	})
	if err != nil {
		log.Warnf("client %s: subscribe to game %s: %v", clientID, gameID, err)
		out.send(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
		c.Close()
		return
	}
	defer cancel()
	log.Infof("client %s watching game %s", clientID, gameID)

	if state, err := wsc.gameService.GetGameState(gameID); err == nil {
		out.send(ws.MessageTypeGameState, state)
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("client %s: read: %v", clientID, err)
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			out.send(ws.MessageTypeError, ws.ErrorPayload{Error: "malformed message"})
			continue
		}
		if err := wsc.handleMessage(gameID, msg); err != nil {
			log.Debugf("client %s: %s: %v", clientID, msg.Type, err)
			out.send(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
		}
	}
	log.Infof("client %s left game %s", clientID, gameID)
}

// handleMessage applies one inbound message. Resulting states reach the
// view through the subscription.
func (wsc *WebSocketController) handleMessage(gameID string, msg ws.Message) error {
	var err error
	switch msg.Type {
	case ws.MessageTypeClick:
		var click ws.ClickPayload
		if err := json.Unmarshal(msg.Payload, &click); err != nil {
			return fmt.Errorf("click payload: %w", err)
		}
		_, _, err = wsc.gameService.Click(gameID, click.Square)
	case ws.MessageTypeStart:
		_, err = wsc.gameService.StartGame(gameID)
	case ws.MessageTypeReset:
		_, err = wsc.gameService.ResetGame(gameID)
	case ws.MessageTypeEnd:
		_, err = wsc.gameService.EndGame(gameID)
	case ws.MessageTypeUndo:
		_, err = wsc.gameService.Undo(gameID)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
	return err
}
