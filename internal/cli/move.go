package cli

import (
	"github.com/spf13/cobra"

	"github.com/benmooo/ll-xq/internal/api/request"
	"github.com/benmooo/ll-xq/internal/model"
)

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move a piece",
		Long: `Move the piece on <from> to <to>. Squares are written file then rank,
files a-i from red's left and ranks 0-9 from red's side, e.g. "h2 e2".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, playerID, err := cfg.requireSeat()
			if err != nil {
				return err
			}

			var result model.MoveRecord
			req := request.MoveRequest{PlayerID: playerID, From: args[0], To: args[1]}
			if err := client.Post(roomPath(roomID, "move", nil), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Refresh the player's activity in the room",
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, playerID, err := cfg.requireSeat()
			if err != nil {
				return err
			}

			req := request.PingRequest{PlayerID: playerID}
			if err := client.Post(roomPath(roomID, "ping", nil), req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage("pong")
			return nil
		},
	}
}
