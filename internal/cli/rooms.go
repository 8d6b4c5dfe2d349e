package cli

import (
	"net/url"

	"github.com/spf13/cobra"

	"github.com/benmooo/ll-xq/internal/api/request"
	"github.com/benmooo/ll-xq/internal/model"
	"github.com/benmooo/ll-xq/internal/session"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room operations",
		Long:  "Create, list, join and inspect rooms.",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomListCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomStateCmd())
	cmd.AddCommand(newRoomLegalMovesCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <creator-name>",
		Short: "Create a new room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result session.CreateRoomData
			req := request.CreateRoomRequest{CreatorName: args[0]}

			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newRoomListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List live rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []model.Room

			if err := client.Get("/api/v1/rooms", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <room-id> <player-name>",
		Short: "Join a room or reclaim a seat",
		Long: `Join a room as player-name. When --player (or the session file) holds a
player id already seated in the room, the seat is reclaimed instead.

The room and player id are saved to the session file for later commands.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID := args[0]
			req := request.JoinRoomRequest{PlayerName: args[1]}
			if cfg.RoomID == roomID {
				req.PlayerID = cfg.PlayerID
			}

			var result model.Player
			if err := client.Post(roomPath(roomID, "join", nil), req, &result); err != nil {
				return err
			}

			if err := cfg.SaveSeat(Seat{RoomID: roomID, PlayerID: string(result.ID)}); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newRoomStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the board and roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, playerID, err := cfg.requireSeat()
			if err != nil {
				return err
			}

			var result model.RoomState
			path := roomPath(roomID, "state", url.Values{"player_id": {playerID}})
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newRoomLegalMovesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "legal-moves <square>",
		Short: "List the destinations of the piece on a square",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID, playerID, err := cfg.requireSeat()
			if err != nil {
				return err
			}

			var result session.LegalMovesData
			path := roomPath(roomID, "legal-moves", url.Values{
				"player_id": {playerID},
				"square":    {args[0]},
			})
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}
