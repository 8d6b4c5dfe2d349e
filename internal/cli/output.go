package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/session"
	"github.com/benmooo/ll-xq/internal/xiangqi"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case session.CreateRoomData:
		fmt.Fprintf(o.w, "Room: %s\n", v.RoomID)
	case []model.Room:
		o.printRooms(v)
	case model.Player:
		o.printPlayer(v)
	case model.RoomState:
		o.printRoomState(v)
	case model.MoveRecord:
		o.printMove(v)
	case session.LegalMovesData:
		o.printLegalMoves(v)
	case []model.GameResult:
		o.printResults(v)
	case model.GameResult:
		o.printResult(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printRooms(rooms []model.Room) {
	if len(rooms) == 0 {
		fmt.Fprintln(o.w, "No rooms")
		return
	}
	for _, r := range rooms {
		names := make([]string, 0, len(r.Players))
		for _, p := range r.Players {
			names = append(names, fmt.Sprintf("%s(%s)", p.Name, p.Side))
		}
		fmt.Fprintf(o.w, "%s  %-8s  %d/%d  %s\n",
			r.ID, r.Status, len(r.Players), model.MaxPlayers, strings.Join(names, ", "))
	}
}

func (o *Output) printPlayer(p model.Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(o.w, "Side: %s\n", sideName(p.Side))
}

func (o *Output) printRoomState(s model.RoomState) {
	fmt.Fprintf(o.w, "Room: %s\n", s.RoomID)
	fmt.Fprintf(o.w, "Status: %s\n", s.Status)
	turn := sideName(s.Turn)
	if s.InCheck {
		turn += " (in check)"
	}
	fmt.Fprintf(o.w, "Turn: %s\n", turn)
	fmt.Fprintf(o.w, "Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		status := "offline"
		if p.Online {
			status = "online"
		}
		fmt.Fprintf(o.w, "  - %s [%s] %s\n", p.Name, sideName(p.Side), status)
	}
	o.printBoard(s.FEN)
}

func (o *Output) printMove(m model.MoveRecord) {
	fmt.Fprintf(o.w, "%s moved %s-%s\n", sideName(m.Side), m.From, m.To)
	fmt.Fprintf(o.w, "Next: %s\n", sideName(m.Turn))
	o.printBoard(m.FEN)
}

func (o *Output) printLegalMoves(l session.LegalMovesData) {
	if len(l.Moves) == 0 {
		fmt.Fprintf(o.w, "%s: no moves\n", l.Square)
		return
	}
	fmt.Fprintf(o.w, "%s: %s\n", l.Square, strings.Join(l.Moves, " "))
}

func (o *Output) printResults(results []model.GameResult) {
	if len(results) == 0 {
		fmt.Fprintln(o.w, "No results")
		return
	}
	for _, r := range results {
		fmt.Fprintf(o.w, "%s  %s  winner=%s  moves=%d  %s\n",
			r.RoomID, r.Reason, r.Winner, r.Moves, r.EndedAt.Format(time.RFC3339))
	}
}

func (o *Output) printResult(r model.GameResult) {
	fmt.Fprintf(o.w, "Room: %s\n", r.RoomID)
	fmt.Fprintf(o.w, "Result: %s, winner %s\n", r.Reason, r.Winner)
	fmt.Fprintf(o.w, "Moves: %d\n", r.Moves)
	fmt.Fprintf(o.w, "Ended: %s\n", r.EndedAt.Format(time.RFC3339))
	for _, p := range r.Players {
		fmt.Fprintf(o.w, "  - %s [%s]\n", p.Name, sideName(p.Side))
	}
	o.printBoard(r.FinalFEN)
}

func (o *Output) printBoard(fen string) {
	if fen == "" {
		return
	}
	board, err := xiangqi.RenderFEN(fen)
	if err != nil {
		fmt.Fprintf(o.w, "FEN: %s\n", fen)
		return
	}
	fmt.Fprintln(o.w)
	fmt.Fprint(o.w, board)
}

func sideName(s model.Side) string {
	switch s {
	case model.SideRed:
		return "red"
	case model.SideBlack:
		return "black"
	}
	return string(s)
}
