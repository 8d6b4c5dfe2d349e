package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/benmooo/ll-xq/internal/model"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream SSE events from a room",
		Long: `Connect to the room's SSE endpoint as the current player and stream events
in real-time. The player is marked online for as long as the stream is open.

Events include:
  - roomCreated: Room was created
  - joinSuccess: A player took or reclaimed a seat
  - joinError: A join attempt failed
  - gameStart: Both seats are filled
  - moveMade: A move was accepted
  - inCheck: The side to move is in check
  - gameOver: The game ended

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, playerID, err := cfg.requireSeat()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return streamEvents(ctx, cmd.OutOrStdout(), roomID, playerID, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time    time.Time       `json:"time"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func streamEvents(ctx context.Context, w io.Writer, roomID, playerID string, jsonOutput bool) error {
	u := strings.TrimSuffix(cfg.ServerURL, "/") + roomPath(roomID, "events", url.Values{"player_id": {playerID}})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	httpClient := &http.Client{
		Timeout: 0, // No timeout for SSE
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var env envelope
		if json.NewDecoder(resp.Body).Decode(&env) == nil && env.Error != nil {
			env.Error.Status = resp.StatusCode
			return env.Error
		}
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Fprintf(w, "Connected to room %s\n", roomID)
	}

	// Parse SSE stream; comments and retry hints are skipped
	scanner := bufio.NewScanner(resp.Body)
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if len(dataLines) > 0 {
				printEvent(w, []byte(strings.Join(dataLines, "\n")), jsonOutput)
			}
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

func printEvent(w io.Writer, data []byte, jsonOutput bool) {
	now := time.Now()

	e, err := model.UnmarshalEvent(data)
	if err != nil {
		fmt.Fprintf(w, "[%s] undecodable event: %s\n", now.Format("2006-01-02 15:04:05"), string(data))
		return
	}

	if jsonOutput {
		payload, _ := json.Marshal(e)
		line, _ := json.Marshal(SSEEvent{Time: now, Event: string(e.EventType()), Payload: payload})
		fmt.Fprintln(w, string(line))
		return
	}

	fmt.Fprintf(w, "[%s] %s: %s\n", now.Format("2006-01-02 15:04:05"), e.EventType(), describeEvent(e))
}

func describeEvent(e model.RoomEvent) string {
	switch v := e.(type) {
	case model.RoomCreated:
		return fmt.Sprintf("room %s created by %s", v.RoomID, v.CreatorName)
	case model.JoinSuccess:
		return fmt.Sprintf("%s joined as %s", v.PlayerName, sideName(v.Side))
	case model.JoinError:
		return v.Reason
	case model.GameStart:
		names := make([]string, 0, len(v.Players))
		for _, p := range v.Players {
			names = append(names, fmt.Sprintf("%s (%s)", p.Name, sideName(p.Side)))
		}
		return fmt.Sprintf("%s, %s to move", strings.Join(names, " vs "), sideName(v.Turn))
	case model.MoveMade:
		return fmt.Sprintf("%s %s-%s, %s to move", sideName(v.Side), v.From, v.To, sideName(v.Turn))
	case model.InCheck:
		return sideName(v.SideInCheck) + " is in check"
	case model.GameOver:
		if winner := model.Side(v.Winner); winner.Valid() {
			return fmt.Sprintf("%s wins by %s", sideName(winner), v.Reason)
		}
		return fmt.Sprintf("%s (%s)", v.Winner, v.Reason)
	case model.ErrorEvent:
		return v.Message
	}
	return string(e.EventType())
}
