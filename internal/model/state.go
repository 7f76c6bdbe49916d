package model

type Status string

const (
	NotStarted Status = "notStarted"
	InProgress Status = "inProgress"
)

type Result string

const (
	NoResult  Result = ""
	Checkmate Result = "checkmate"
	Stalemate Result = "stalemate"
	Abandoned Result = "abandoned"
)

func (b *BoardState) Status() Status {
	return b.status
}

func (b *BoardState) Result() Result {
	return b.result
}

// Winner is the winning colour after a checkmate, empty otherwise.
func (b *BoardState) Winner() Color {
	return b.winner
}

func (b *BoardState) InProgress() bool {
	return b.status == InProgress
}

// Start moves a fresh game into progress. Each side must have exactly one
// king on the board.
func (b *BoardState) Start() error {
	if b.status == InProgress {
		return ErrGameInProgress
	}
	if b.result != NoResult {
		return ErrGameOver
	}
	for _, color := range []Color{White, Black} {
		kings := 0
		for _, p := range b.ActivePieces(color) {
			if p.Type == King {
				kings++
			}
		}
		if kings != 1 {
			return ErrMissingKing
		}
	}
	b.status = InProgress
	return nil
}

// End stops a game in progress without a decisive result.
func (b *BoardState) End() error {
	if b.status != InProgress {
		return ErrGameNotInProgress
	}
	b.finish(Abandoned, "")
	return nil
}

func (b *BoardState) finish(result Result, winner Color) {
	b.status = NotStarted
	b.result = result
	b.winner = winner
}

type CapturedPieces struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

// Snapshot is the serialisable view of a board sent to observers after
// every change. Board is indexed [row][column], row 0 being rank 8.
type Snapshot struct {
	Board          [boardSize][boardSize]*Piece `json:"board"`
	ToMove         Color                        `json:"toMove"`
	Status         Status                       `json:"status"`
	Result         Result                       `json:"result,omitempty"`
	Winner         Color                        `json:"winner,omitempty"`
	IsCheck        bool                         `json:"isCheck"`
	CapturedPieces CapturedPieces               `json:"capturedPieces"`
	LastMove       *Ply                         `json:"lastMove"`
	MoveHistory    []string                     `json:"moveHistory"`
}

func (b *BoardState) Snapshot() Snapshot {
	s := Snapshot{
		ToMove:  b.turn,
		Status:  b.status,
		Result:  b.result,
		Winner:  b.winner,
		IsCheck: b.IsInCheck(b.turn),
		CapturedPieces: CapturedPieces{
			White: b.Hostages(White),
			Black: b.Hostages(Black),
		},
		MoveHistory: make([]string, 0, len(b.history)),
	}
	for _, sq := range b.Squares() {
		s.Board[sq.Coordinate.Row][sq.Coordinate.Column] = sq.Piece
	}
	if last, ok := b.LastMove(); ok {
		s.LastMove = &last
	}
	for _, ply := range b.history {
		s.MoveHistory = append(s.MoveHistory, ply.Notation)
	}
	return s
}
