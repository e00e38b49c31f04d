// Package commands implements the tsedit CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsedit/pkg/cache"
	"github.com/Sumatoshi-tech/tsedit/pkg/config"
	"github.com/Sumatoshi-tech/tsedit/pkg/observability"
	"github.com/Sumatoshi-tech/tsedit/pkg/version"
	"github.com/Sumatoshi-tech/tsedit/pkg/workspace"
)

// Sentinel errors for CLI input.
var (
	ErrEmptyPath       = errors.New("path is empty")
	ErrPathContainsNUL = errors.New("path contains NUL byte")
	ErrUnknownFormat   = errors.New("unknown output format")
)

// App holds the state shared by all commands of one invocation.
type App struct {
	fs     afero.Fs
	out    io.Writer
	errOut io.Writer

	cfgFile     string
	metricsAddr string
	verbose     bool
	quiet       bool
	noColor     bool

	cfg       *config.Config
	providers *observability.Providers
	edits     *observability.EditMetrics
}

// NewApp creates an App reading and writing files on fs.
func NewApp(fs afero.Fs, out, errOut io.Writer) *App {
	return &App{fs: fs, out: out, errOut: errOut}
}

// Command builds the root command.
func (a *App) Command() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tsedit",
		Short: "Add ES module imports to TypeScript and JavaScript files",
		Long: `tsedit edits the import declarations of TypeScript and JavaScript sources.

Commands:
  add       Add one import to files
  apply     Add the imports listed in a plan file
  imports   List the imports of files
  mcp       Serve the editing tools over the Model Context Protocol`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./.tsedit.yaml or $HOME/.tsedit.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress output")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(a.addCmd())
	rootCmd.AddCommand(a.applyCmd())
	rootCmd.AddCommand(a.importsCmd())
	rootCmd.AddCommand(a.mcpCmd())
	rootCmd.AddCommand(a.versionCmd())

	return rootCmd
}

// setup loads configuration and starts telemetry for mode.
func (a *App) setup(mode observability.AppMode) error {
	if a.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return err
	}

	obsCfg := cfg.Observability(mode, version.Version)

	switch {
	case a.verbose:
		obsCfg.LogLevel = slog.LevelDebug
	case a.quiet:
		obsCfg.LogLevel = slog.LevelWarn
	}

	if mode == observability.ModeMCP {
		obsCfg.LogJSON = true
		obsCfg.Prometheus = a.metricsAddr != "" || cfg.Telemetry.PrometheusAddr != ""
	} else {
		obsCfg.Prometheus = false
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	edits, err := observability.NewEditMetrics(providers.Meter)
	if err != nil {
		return errors.Join(err, providers.Shutdown(context.Background()))
	}

	slog.SetDefault(providers.Logger)

	a.cfg = cfg
	a.providers = &providers
	a.edits = edits

	return nil
}

// Close flushes telemetry. It is safe to call when setup never ran.
func (a *App) Close(ctx context.Context) error {
	if a.providers == nil {
		return nil
	}

	err := a.providers.Shutdown(ctx)
	a.providers = nil

	return err
}

func (a *App) workspace() (*workspace.Workspace, error) {
	maxSize, err := a.cfg.Files.MaxSizeBytes()
	if err != nil {
		return nil, err
	}

	parses, err := a.parseCache()
	if err != nil {
		return nil, err
	}

	return workspace.New(a.fs, workspace.Options{
		Tracer:  a.providers.Tracer,
		Metrics: a.edits,
		Logger:  a.providers.Logger,
		Cache:   parses,
		MaxSize: maxSize,
	}), nil
}

func (a *App) parseCache() (*cache.ParseCache, error) {
	size, err := a.cfg.Cache.MaxSizeBytes()
	if err != nil {
		return nil, err
	}

	return cache.NewParseCache(size), nil
}

// cleanPaths validates user paths; no arguments means the current directory.
func cleanPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{"."}, nil
	}

	out := make([]string, 0, len(args))

	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			return nil, ErrEmptyPath
		}

		if strings.ContainsRune(arg, '\x00') {
			return nil, fmt.Errorf("%w: %q", ErrPathContainsNUL, arg)
		}

		out = append(out, filepath.Clean(arg))
	}

	return out, nil
}
