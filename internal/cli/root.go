package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "xqctl",
		Short: "CLI tool for the xiangqi room server",
		Long: `xqctl is a CLI tool for playing xiangqi against the room server's JSON API.

It covers room creation and joining, moves, liveness pings, finished game
results, and real-time SSE event streaming. The last joined room and player
are remembered in the session file.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Fill room and player from the session file if not provided via flag/env
			if err := cfg.LoadSeat(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL)
			if cfg.Verbose {
				client.SetTrace(cmd.ErrOrStderr())
			}
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: XQCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.RoomID, "room", cfg.RoomID, "Room id (env: XQCTL_ROOM)")
	rootCmd.PersistentFlags().StringVar(&cfg.PlayerID, "player", cfg.PlayerID, "Player id (env: XQCTL_PLAYER)")
	rootCmd.PersistentFlags().StringVar(&cfg.SessionFile, "session-file", cfg.SessionFile, "Session file path (env: XQCTL_SESSION_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newMoveCmd())
	rootCmd.AddCommand(newPingCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newResultsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
