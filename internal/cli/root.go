// Package cli is the parcelgraph command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agenthands/parcelgraph/internal/config"
	"github.com/agenthands/parcelgraph/internal/core"
	"github.com/agenthands/parcelgraph/internal/driver"
	"github.com/agenthands/parcelgraph/internal/logging"
	"github.com/agenthands/parcelgraph/internal/metrics"
)

// Version is set at build time.
var Version = "dev"

// App carries the state shared by every subcommand. It is filled in by the
// root command before any subcommand runs.
type App struct {
	ConfigPath string
	LogLevel   string
	Output     string

	Config *config.Config
	Logger logging.Logger
	Engine *core.Engine

	// Opener replaces the bolt connection when set.
	Opener driver.Opener
	// Spinner forces the progress spinner on or off; nil means "when stderr
	// is a terminal".
	Spinner *bool
}

func NewRootCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "parcelgraph",
		Short:   "Build parcel adjacency and owner neighbor graphs from cadastral data",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Logger != nil {
				_ = app.Logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&app.ConfigPath, "config", "c", "parcelgraph.toml", "config file path")
	pf.StringVar(&app.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVarP(&app.Output, "output", "o", "text", "output format (text, json)")

	cmd.AddCommand(
		newSyncCmd(app),
		newDetectCmd(app),
		newCheckCmd(app),
		newStatsCmd(app),
		newSchemaCmd(app),
	)
	return cmd
}

func (a *App) init() error {
	if a.Output != "text" && a.Output != "json" {
		return fmt.Errorf("unknown output format %q", a.Output)
	}

	cfg, err := config.LoadOrDefault(a.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyCredentials(); err != nil {
		return err
	}
	if a.LogLevel != "" {
		cfg.Log.Level = a.LogLevel
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}

	opts, err := core.OptionsFromConfig(cfg.Sync)
	if err != nil {
		return err
	}

	opener := a.Opener
	if opener == nil {
		opener = driver.NewOpener(driver.FromConfig(cfg.Graph), logger)
	}

	a.Config = cfg
	a.Logger = logger
	a.Engine = core.NewEngine(opener, opts, logger, metrics.New(false))
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	app := &App{}
	if err := NewRootCommand(app).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
