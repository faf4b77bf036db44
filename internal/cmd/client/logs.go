package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	sclient "github.com/rzbill/siphon/pkg/client"
)

// NewLogsCommand constructs the `logs` command group and subcommands.
func NewLogsCommand(baseURL BaseURLFunc) *cobra.Command {
	logsCmd := &cobra.Command{Use: "logs", Short: "Log operations"}

	logsCmd.AddCommand(
		newLogsPushCommand(baseURL),
		newLogsFetchCommand(baseURL),
		newLogsTailCommand(baseURL),
		newLogsClearCommand(baseURL),
	)

	return logsCmd
}

// newLogsPushCommand constructs the `logs push` subcommand.
func newLogsPushCommand(baseURL BaseURLFunc) *cobra.Command {
	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Push a log entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("level")
			message, _ := cmd.Flags().GetString("message")
			dataStr, _ := cmd.Flags().GetString("data")
			clientID, _ := cmd.Flags().GetString("client-id")
			sessionID, _ := cmd.Flags().GetString("session-id")
			source, _ := cmd.Flags().GetString("source")
			if message == "" && len(args) > 0 {
				message = strings.Join(args, " ")
			}

			entry := sclient.Entry{
				Level:     level,
				Message:   message,
				ClientID:  clientID,
				SessionID: sessionID,
				Source:    source,
			}
			if dataStr != "" {
				var data any
				if err := json.Unmarshal([]byte(dataStr), &data); err != nil {
					// Not JSON; send it as plain text.
					data = dataStr
				}
				entry.Data = data
			}

			stored, err := restClient(baseURL).Push(cmd.Context(), entry)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(stored)
		},
	}
	pushCmd.Flags().String("level", "info", "Level: trace|debug|info|warn|error|fatal")
	pushCmd.Flags().StringP("message", "m", "", "Message text")
	pushCmd.Flags().String("data", "", "Structured payload (JSON or plain text)")
	pushCmd.Flags().String("client-id", "cli", "Client identifier")
	pushCmd.Flags().String("session-id", "", "Session to attach to (default: current)")
	pushCmd.Flags().String("source", "", "Origin name")
	return pushCmd
}

// newLogsFetchCommand constructs the `logs fetch` subcommand.
func newLogsFetchCommand(baseURL BaseURLFunc) *cobra.Command {
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch stored entries from a cursor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cursor, _ := cmd.Flags().GetUint32("cursor")
			limit, _ := cmd.Flags().GetInt("limit")
			levels, _ := cmd.Flags().GetString("levels")
			clientID, _ := cmd.Flags().GetString("client-id")
			sessionID, _ := cmd.Flags().GetString("session-id")
			since, _ := cmd.Flags().GetString("since")
			filter, _ := cmd.Flags().GetString("filter")

			opts := sclient.FetchOptions{
				Cursor:    cursor,
				Limit:     limit,
				ClientID:  clientID,
				SessionID: sessionID,
				Since:     since,
				Filter:    filter,
			}
			if levels != "" {
				opts.Levels = strings.Split(levels, ",")
			}

			entries, next, err := restClient(baseURL).Fetch(cmd.Context(), opts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, e := range entries {
				_ = enc.Encode(e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "{\"nextCursor\":%d}\n", next)
			return nil
		},
	}
	fetchCmd.Flags().Uint32("cursor", 0, "Resume cursor (0 = oldest retained)")
	fetchCmd.Flags().Int("limit", 0, "Max entries (0 = server default)")
	fetchCmd.Flags().String("levels", "", "Level filter, comma separated")
	fetchCmd.Flags().String("client-id", "", "Filter by client id")
	fetchCmd.Flags().String("session-id", "", "Filter by session id")
	fetchCmd.Flags().String("since", "", "Only entries at/after: RFC3339 or ms")
	fetchCmd.Flags().String("filter", "", "Expression filter (server-side)")
	return fetchCmd
}

// newLogsTailCommand constructs the `logs tail` subcommand.
func newLogsTailCommand(baseURL BaseURLFunc) *cobra.Command {
	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow the live log stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			handlers := sclient.Handlers{
				OnBootstrap: func(entries []sclient.Entry) {
					for _, e := range entries {
						_ = enc.Encode(e)
					}
				},
				OnAppend: func(e sclient.Entry) {
					_ = enc.Encode(e)
				},
			}
			opts := []sclient.ConsumerOption{}
			if tok := tokenFromEnv(); tok != "" {
				opts = append(opts, sclient.WithToken(tok))
			}
			consumer := sclient.NewConsumer(baseURL(), handlers, opts...)
			consumer.Start()
			<-cmd.Context().Done()
			consumer.Dispose()
			return nil
		},
	}
	return tailCmd
}

// newLogsClearCommand constructs the `logs clear` subcommand.
func newLogsClearCommand(baseURL BaseURLFunc) *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the buffer and start a fresh session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			label, _ := cmd.Flags().GetString("label")
			sess, err := restClient(baseURL).Clear(cmd.Context(), label)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(sess)
		},
	}
	clearCmd.Flags().String("label", "", "Label for the fresh session")
	return clearCmd
}
