package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/rivo/tview"

	"github.com/benbeisheim/smartchess/internal/game"
	"github.com/benbeisheim/smartchess/internal/model"
	"github.com/benbeisheim/smartchess/internal/service"
)

const (
	numrows = 8
	numcols = 8
)

type view struct {
	app     *tview.Application
	board   *tview.Table
	info    *tview.TextView
	history *tview.TextView
	layout  *tview.Grid

	gs      *service.GameService
	gameID  string
	flip    bool
	message string
	shown   uint64
}

func newView(gs *service.GameService, s game.State) (*view, error) {
	v := &view{
		app:     tview.NewApplication(),
		board:   tview.NewTable(),
		info:    tview.NewTextView().SetDynamicColors(true),
		history: tview.NewTextView().SetDynamicColors(true),
		gs:      gs,
		gameID:  s.GameID,
		// a lone human playing black sees the board from its side
		flip: s.Players.Black.IsHuman() && !s.Players.White.IsHuman(),
	}
	v.info.SetBorder(true).SetTitle("smartchess")
	v.history.SetBorder(true).SetTitle("moves")

	v.layout = tview.NewGrid().
		SetRows(-1, 11, 12, -1).
		SetColumns(-1, 30, 36, -1).
		AddItem(tview.NewBox(), 0, 0, 1, 4, 0, 0, false).
		AddItem(v.board, 1, 1, 2, 1, 0, 0, true).
		AddItem(v.info, 1, 2, 1, 1, 0, 0, false).
		AddItem(v.history, 2, 2, 1, 1, 0, 0, false).
		AddItem(tview.NewBox(), 3, 0, 1, 4, 0, 0, false)

	v.board.SetSelectable(true, true)
	v.board.Select(numrows-1, 1).SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			v.app.Stop()
		}
	}).SetSelectedFunc(v.onSelect)
	v.app.SetInputCapture(v.onKey)

	if _, err := gs.Subscribe(v.gameID, func(s game.State) {
		v.app.QueueUpdateDraw(func() { v.render(s) })
	}); err != nil {
		return nil, err
	}
	v.render(s)
	return v, nil
}

func (v *view) run() error {
	return v.app.SetRoot(v.layout, true).EnableMouse(true).Run()
}

func (v *view) onSelect(row, col int) {
	c, ok := cellToCoordinate(row, col, v.flip)
	if !ok {
		return
	}
	result, _, err := v.gs.Click(v.gameID, c.String())
	switch {
	case errors.Is(err, game.ErrNotHumanTurn):
		v.message = "waiting for the algorithm"
	case err != nil:
		v.message = err.Error()
	case result == game.ClickDeselected:
		v.message = fmt.Sprintf("cannot move there: %s", c)
	default:
		v.message = ""
	}
	log.Debugf("click %s: %s %v", c, result, err)
	v.refresh()
}

func (v *view) onKey(event *tcell.EventKey) *tcell.EventKey {
	var err error
	switch event.Rune() {
	case 's':
		_, err = v.gs.StartGame(v.gameID)
	case 'r':
		_, err = v.gs.ResetGame(v.gameID)
	case 'e':
		_, err = v.gs.EndGame(v.gameID)
	case 'u':
		_, err = v.gs.Undo(v.gameID)
	case 'q':
		v.app.Stop()
		return nil
	default:
		return event
	}
	v.message = ""
	if err != nil {
		v.message = err.Error()
	}
	v.refresh()
	return nil
}

// refresh redraws the current state, e.g. to show a new message.
func (v *view) refresh() {
	s, err := v.gs.GetGameState(v.gameID)
	if err != nil {
		log.Errorf("refresh: %v", err)
		return
	}
	v.render(s)
}

// render draws s unless a newer state is already on screen.
func (v *view) render(s game.State) {
	if s.Version < v.shown {
		return
	}
	v.shown = s.Version
	targets := make(map[model.Coordinate]bool, len(s.LegalMoves))
	for _, c := range s.LegalMoves {
		targets[c] = true
	}

	for r := 0; r <= numrows; r++ {
		for f := 0; f <= numcols; f++ {
			if r == numrows {
				label := ""
				if f > 0 {
					col := model.Column(f - 1)
					if v.flip {
						col = model.Column(numcols - f)
					}
					label = col.String()
				}
				v.board.SetCell(r, f, tview.NewTableCell(" "+label).
					SetAlign(tview.AlignCenter).
					SetSelectable(false))
				continue
			}
			if f == 0 {
				rank := model.Row(r)
				if v.flip {
					rank = model.Row(numrows - 1 - r)
				}
				v.board.SetCell(r, f, tview.NewTableCell(rank.String()).
					SetAlign(tview.AlignCenter).
					SetSelectable(false))
				continue
			}
			c, _ := cellToCoordinate(r, f, v.flip)
			p := s.Board[c.Row][c.Column]
			v.board.SetCell(r, f, tview.NewTableCell(" "+pieceSymbol(p)+" ").
				SetAlign(tview.AlignCenter).
				SetBackgroundColor(squareColor(c, s.SelectedSquare, targets)))
		}
	}

	v.info.SetText(infoText(s, v.message))
	v.history.SetText(historyText(s.MoveHistory))
}

// cellToCoordinate maps a table cell to a board square. Column 0 and the
// last row hold rank and file labels.
func cellToCoordinate(row, col int, flip bool) (model.Coordinate, bool) {
	if row < 0 || row >= numrows || col < 1 || col > numcols {
		return model.Coordinate{}, false
	}
	r, c := row, col-1
	if flip {
		r, c = numrows-1-r, numcols-1-c
	}
	return model.NewCoordinate(model.Row(r), model.Column(c)), true
}

func squareColor(c model.Coordinate, selected *model.Coordinate, targets map[model.Coordinate]bool) tcell.Color {
	switch {
	case selected != nil && *selected == c:
		return tcell.ColorRed
	case targets[c]:
		return tcell.ColorYellow
	case (int(c.Row)+int(c.Column))%2 == 0:
		return tcell.ColorBlue
	default:
		return tcell.ColorGreen
	}
}

var symbols = map[model.Color]map[model.PieceType]string{
	model.White: {
		model.King: "♔", model.Queen: "♕", model.Rook: "♖",
		model.Bishop: "♗", model.Knight: "♘", model.Pawn: "♙",
	},
	model.Black: {
		model.King: "♚", model.Queen: "♛", model.Rook: "♜",
		model.Bishop: "♝", model.Knight: "♞", model.Pawn: "♟",
	},
}

func pieceSymbol(p *model.Piece) string {
	if p == nil {
		return " "
	}
	return symbols[p.Color][p.Type]
}

func infoText(s game.State, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "white: %s (%s)\n", s.Players.White.Name, s.Players.White.Kind)
	fmt.Fprintf(&b, "black: %s (%s)\n\n", s.Players.Black.Name, s.Players.Black.Kind)
	switch {
	case s.Result == model.Checkmate:
		fmt.Fprintf(&b, "[red]checkmate, %s wins[-]\n", s.Winner)
	case s.Result != model.NoResult:
		fmt.Fprintf(&b, "[red]%s[-]\n", s.Result)
	case s.Status == model.NotStarted:
		b.WriteString("press s to start\n")
	case s.IsCheck:
		fmt.Fprintf(&b, "%s to move, [red]check[-]\n", s.ToMove)
	default:
		fmt.Fprintf(&b, "%s to move\n", s.ToMove)
	}
	if message != "" {
		fmt.Fprintf(&b, "[yellow]%s[-]\n", message)
	}
	b.WriteString("\ns start  r reset  e end  u undo  q quit")
	return b.String()
}

func historyText(plies []string) string {
	var b strings.Builder
	for i := 0; i < len(plies); i += 2 {
		fmt.Fprintf(&b, "%d. %s", i/2+1, plies[i])
		if i+1 < len(plies) {
			fmt.Fprintf(&b, " %s", plies[i+1])
		}
		b.WriteString("\n")
	}
	return b.String()
}
