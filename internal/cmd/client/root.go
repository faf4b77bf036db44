package client

import (
	"os"

	"github.com/spf13/cobra"

	sclient "github.com/rzbill/siphon/pkg/client"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewRoot constructs a root Cobra command for the siphon client.
// It registers the logs, session, and stats command groups.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "siphon",
		Short: "siphon client commands",
	}
	root.AddCommand(NewLogsCommand(baseURL))
	root.AddCommand(NewSessionCommand(baseURL))
	root.AddCommand(NewStatsCommand(baseURL))
	return root
}

// tokenFromEnv returns the shared secret from SIPHON_TOKEN, if any.
func tokenFromEnv() string {
	return os.Getenv("SIPHON_TOKEN")
}

// restClient builds a REST client for the configured server.
func restClient(baseURL BaseURLFunc) *sclient.Client {
	opts := []sclient.ClientOption{}
	if tok := tokenFromEnv(); tok != "" {
		opts = append(opts, sclient.WithRESTToken(tok))
	}
	return sclient.NewClient(baseURL(), opts...)
}
