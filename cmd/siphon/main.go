package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/siphon/internal/cmd/client"
	serverrun "github.com/rzbill/siphon/internal/cmd/server"
	cfgpkg "github.com/rzbill/siphon/internal/config"
	"github.com/rzbill/siphon/internal/runtime"
	logpkg "github.com/rzbill/siphon/pkg/log"
)

func main() {
	// Respect SIPHON_LOG_LEVEL for CLI output
	level := os.Getenv("SIPHON_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "siphon",
		Short: "siphon telemetry relay CLI",
		Long:  "siphon is a single-binary log relay. This CLI manages the server and basic operations.",
	}

	// version
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("siphon %s (%s)\n", runtime.Version, runtime.Commit)
		},
	}
	rootCmd.AddCommand(versionCmd)

	// server start
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start siphon server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			httpAddr, _ := cmd.Flags().GetString("http")
			bufferSize, _ := cmd.Flags().GetInt("buffer-size")
			authToken, _ := cmd.Flags().GetString("auth-token")
			dashboardDir, _ := cmd.Flags().GetString("dashboard-dir")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")

			if configPath == "" {
				configPath = cfgpkg.DefaultConfigPath()
			}
			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfgpkg.FromEnv(&cfg)
			if bufferSize > 0 {
				cfg.BufferSize = bufferSize
			}
			if authToken != "" {
				cfg.AuthToken = authToken
			}
			if dashboardDir != "" {
				cfg.DashboardDir = dashboardDir
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := serverrun.Run(ctx, serverrun.Options{
				HTTPAddr: httpAddr,
				Config:   cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			// brief delay to allow logs flush
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	}
	serverStartCmd.Flags().String("config", "", "Config file (JSON or YAML; default: conventional locations)")
	serverStartCmd.Flags().String("http", "", "HTTP listen address (default from config, :7411)")
	serverStartCmd.Flags().Int("buffer-size", 0, "Ring buffer capacity (default 1000)")
	serverStartCmd.Flags().String("auth-token", os.Getenv("SIPHON_AUTH_TOKEN"), "Shared secret required on every request")
	serverStartCmd.Flags().String("dashboard-dir", os.Getenv("SIPHON_DASHBOARD_DIR"), "Directory of dashboard statics to serve at /")
	serverStartCmd.Flags().String("log-level", os.Getenv("SIPHON_LOG_LEVEL"), "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", os.Getenv("SIPHON_LOG_FORMAT"), "Log format: text|json (default text)")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	// client commands
	rootCmd.AddCommand(clientcmd.NewLogsCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewSessionCommand(apiURL))
	rootCmd.AddCommand(clientcmd.NewStatsCommand(apiURL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("SIPHON_HTTP"); v != "" {
		return v
	}
	return "http://127.0.0.1:7411"
}
