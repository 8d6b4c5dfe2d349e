package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/benmooo/ll-xq/internal/model"
)

func newResultsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "results [room-id]",
		Short: "Show finished games",
		Long:  "List the most recent finished games, or show the result of one room.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output, cmd.OutOrStdout())

			if len(args) == 1 {
				var result model.GameResult
				if err := client.Get("/api/v1/results/"+url.PathEscape(args[0]), &result); err != nil {
					return err
				}
				out.Print(result)
				return nil
			}

			var results []model.GameResult
			if err := client.Get(fmt.Sprintf("/api/v1/results?limit=%d", limit), &results); err != nil {
				return err
			}
			out.Print(results)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")

	return cmd
}
