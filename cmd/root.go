// Package cmd defines and implements the CLI commands for the plawfetch
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lawcorpus/plawfetch/internal/config"
	"github.com/lawcorpus/plawfetch/internal/logging"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App bundles the services shared by every subcommand.
type App struct {
	Config config.Config
	Logger *zap.Logger
}

// Close flushes buffered log output.
func (a *App) Close() {
	_ = a.Logger.Sync()
}

// newApp is the application factory. It's a variable so tests can
// replace it.
var newApp = func() (*App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &App{Config: cfg, Logger: logger}, nil
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plawfetch",
		Short: "Fetch U.S. Public Laws in bulk and extract their text.",
		Long: `plawfetch builds a local corpus of U.S. Public Laws from the govinfo
bulk-data API. It caches per-congress manifests and individual law XML
documents, then extracts cleaned plain text for downstream use.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp()
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(*App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is built-in defaults plus PLAWFETCH_* env)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newManifestsCmd())
	cmd.AddCommand(newLawsCmd())
	cmd.AddCommand(newExtractCmd())

	return cmd
}

func resolveApp(ctx context.Context) (*App, error) {
	appInstance, ok := ctx.Value(appKey).(*App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
