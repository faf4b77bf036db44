package client

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewSessionCommand constructs the `session` command group and subcommands.
func NewSessionCommand(baseURL BaseURLFunc) *cobra.Command {
	sessionCmd := &cobra.Command{Use: "session", Short: "Session operations"}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new session (keeps buffered entries)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			label, _ := cmd.Flags().GetString("label")
			sess, err := restClient(baseURL).StartSession(cmd.Context(), label)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(sess)
		},
	}
	startCmd.Flags().String("label", "", "Session label")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, current, err := restClient(baseURL).Sessions(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, s := range sessions {
				_ = enc.Encode(s)
			}
			return enc.Encode(map[string]string{"current": current})
		},
	}

	sessionCmd.AddCommand(startCmd, listCmd)
	return sessionCmd
}
