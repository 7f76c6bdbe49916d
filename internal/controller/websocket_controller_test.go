package controller

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	fastws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/benbeisheim/smartchess/internal/game"
	"github.com/benbeisheim/smartchess/internal/model"
	"github.com/benbeisheim/smartchess/internal/service"
	"github.com/benbeisheim/smartchess/internal/ws"
)

// serve runs the routes on a loopback listener and returns its address.
func serve(t *testing.T, gs *service.GameService) string {
	t.Helper()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	Register(app, gs, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })
	return ln.Addr().String()
}

func dial(t *testing.T, addr, gameID string) *fastws.Conn {
	t.Helper()
	url := "ws://" + addr + "/ws/game/" + gameID + "?clientId=test-view"
	conn, _, err := fastws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *fastws.Conn) ws.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ws.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func readState(t *testing.T, conn *fastws.Conn) game.State {
	t.Helper()
	msg := readMessage(t, conn)
	if msg.Type != ws.MessageTypeGameState {
		t.Fatalf("message type = %s (%s), want gameState", msg.Type, msg.Payload)
	}
	var s game.State
	if err := json.Unmarshal(msg.Payload, &s); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return s
}

func readError(t *testing.T, conn *fastws.Conn) string {
	t.Helper()
	msg := readMessage(t, conn)
	if msg.Type != ws.MessageTypeError {
		t.Fatalf("message type = %s, want error", msg.Type)
	}
	var e ws.ErrorPayload
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return e.Error
}

func send(t *testing.T, conn *fastws.Conn, typ ws.MessageType, payload string) {
	t.Helper()
	msg := ws.Message{Type: typ}
	if payload != "" {
		msg.Payload = json.RawMessage(payload)
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func TestWebSocketStreamsGameState(t *testing.T) {
	gs := newService(t)
	created, err := gs.CreateGame(service.HumanVsHuman, "")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	id := created.GameID
	conn := dial(t, serve(t, gs), id)

	first := readState(t, conn)
	if first.GameID != id || first.Status != model.NotStarted {
		t.Fatalf("state on connect: game %s status %s", first.GameID, first.Status)
	}

	send(t, conn, ws.MessageTypeStart, "")
	started := readState(t, conn)
	if started.Status != model.InProgress || started.Version <= first.Version {
		t.Errorf("after start: status %s version %d (was %d)", started.Status, started.Version, first.Version)
	}

	send(t, conn, ws.MessageTypeClick, `{"square":"e2"}`)
	selected := readState(t, conn)
	if selected.SelectedSquare == nil || selected.SelectedSquare.String() != "e2" {
		t.Fatalf("after click selected = %v, want e2", selected.SelectedSquare)
	}

	send(t, conn, ws.MessageTypeClick, `{"square":"e4"}`)
	moved := readState(t, conn)
	if moved.LastMove == nil || moved.LastMove.Notation != "e4" || moved.ToMove != model.Black {
		t.Errorf("after move last=%+v toMove=%s", moved.LastMove, moved.ToMove)
	}

	send(t, conn, ws.MessageTypeClick, `{"square":"z9"}`)
	if msg := readError(t, conn); !strings.Contains(msg, "invalid coordinate") {
		t.Errorf("bad square error = %q", msg)
	}
	send(t, conn, "resign", "")
	if msg := readError(t, conn); !strings.Contains(msg, "unknown message type") {
		t.Errorf("unknown type error = %q", msg)
	}
}

func TestWebSocketSeesChangesFromREST(t *testing.T) {
	gs := newService(t)
	created, err := gs.CreateGame(service.HumanVsHuman, "")
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	conn := dial(t, serve(t, gs), created.GameID)
	readState(t, conn)

	if _, err := gs.StartGame(created.GameID); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if s := readState(t, conn); s.Status != model.InProgress {
		t.Errorf("pushed status = %s, want inProgress", s.Status)
	}
}

func TestWebSocketUnknownGame(t *testing.T) {
	addr := serve(t, newService(t))
	_, resp, err := fastws.DefaultDialer.Dial("ws://"+addr+"/ws/game/nope?clientId=test-view", nil)
	if !errors.Is(err, fastws.ErrBadHandshake) {
		t.Fatalf("dial error = %v, want ErrBadHandshake", err)
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("handshake response = %+v, want 404", resp)
	}
}
