// Package cli implements the webby command-line interface.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/benilovj/webby/pkg/buildinfo"
	"github.com/benilovj/webby/pkg/config"
	"github.com/benilovj/webby/pkg/errors"
	"github.com/benilovj/webby/pkg/transpile"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "webby"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Webby renders Graphviz fragments embedded in markup documents",
		Long:         `Webby scans markup documents for <graphviz> tags, renders each embedded graph description to an image file, and rewrites the document so the tags become image references.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.transpileCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a transpile runner for CLI use.
func (c *CLI) newRunner() *transpile.Runner {
	return transpile.NewRunner(c.Logger)
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig resolves the effective configuration. An explicit path must
// exist; with no path the working directory is searched and built-in
// defaults apply when no webby.toml is found.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.Discover(".")
}

// =============================================================================
// Options Helpers
// =============================================================================

// renderFlags holds the flags shared by commands that run the renderer.
type renderFlags struct {
	outputRoot string
	filters    []string
	timeout    time.Duration
	configPath string
}

// register adds the shared flags to cmd.
func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.outputRoot, "output-root", "d", "", "directory rendered images are written under")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "downstream text filter to guard against (repeatable, ordered)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "renderer time limit per invocation (0 disables)")
	cmd.Flags().StringVar(&f.configPath, "config", "", "config file (default "+config.FileName+" in the working directory)")
}

// resolve merges the configuration file with explicitly set flags. Flags win.
func (f *renderFlags) resolve(cmd *cobra.Command) (config.Config, transpile.Options, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return config.Config{}, transpile.Options{}, err
	}

	opts := cfg.TranspileOptions()
	if cmd.Flags().Changed("output-root") {
		opts.OutputRoot = f.outputRoot
	}
	if cmd.Flags().Changed("filter") {
		opts.Filters = f.filters
	}
	if cmd.Flags().Changed("timeout") {
		opts.Timeout = f.timeout
	}

	if opts.OutputRoot != "" {
		if err := errors.ValidateOutputRoot(opts.OutputRoot); err != nil {
			return config.Config{}, transpile.Options{}, err
		}
	}
	if err := errors.ValidateFilterNames(opts.Filters); err != nil {
		return config.Config{}, transpile.Options{}, err
	}
	return cfg, opts, nil
}
