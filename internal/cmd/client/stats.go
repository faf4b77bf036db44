package client

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewStatsCommand constructs the `stats` command.
func NewStatsCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show buffer counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := restClient(baseURL).Stats(cmd.Context())
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(st)
		},
	}
}
