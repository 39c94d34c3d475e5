// Package cli wires the vaf command tree. Commands stay thin: flag parsing
// and output formatting live here, behaviour lives in internal/deploy and the
// API client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/useVaf/vaf-cli/internal/credentials"
	"github.com/useVaf/vaf-cli/internal/userconf"
	"github.com/useVaf/vaf-cli/pkg/api/client"
	"github.com/useVaf/vaf-cli/pkg/logger"
)

var buildVersion = "dev"

var (
	flagVerbose   bool
	flagConfigDir string
)

// Populated by setup before any RunE executes.
var (
	log      *slog.Logger
	settings userconf.Settings
	confDir  string
)

var rootCmd = &cobra.Command{
	Use:           "vaf",
	Short:         "Deploy serverless functions from your terminal",
	Long:          "vaf builds, uploads and releases serverless functions declared in vaf.yaml.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

// Execute runs the command tree and exits non-zero on error. An interrupt
// cancels the command context so watch mode and in-flight polls shut down.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.vaf)")
	rootCmd.AddCommand(
		loginCmd,
		logoutCmd,
		whoamiCmd,
		initCmd,
		deployCmd,
		projectsCmd,
		envsCmd,
		envVarsCmd,
		databasesCmd,
		cachesCmd,
		logsCmd,
		versionCmd,
	)
}

func setup() error {
	dir, err := userconf.Dir(flagConfigDir)
	if err != nil {
		return err
	}
	confDir = dir

	settings, err = userconf.Load(dir)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	switch settings.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if flagVerbose {
		level = slog.LevelDebug
	}
	log = logger.New(level)
	return nil
}

func apiBaseURL() string {
	if env := os.Getenv(userconf.APIURLEnv); env != "" {
		return env
	}
	return settings.APIURL
}

// newClient builds an authenticated API client from the stored token.
func newClient() (*client.Client, error) {
	store, err := credentials.NewStore(confDir)
	if err != nil {
		return nil, err
	}
	token, err := store.Token()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errors.New("not logged in, run `vaf login` first")
	}
	return client.New(apiBaseURL(), token)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vaf %s\n", buildVersion)
	},
}
