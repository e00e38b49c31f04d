package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsedit/pkg/imports"
	"github.com/Sumatoshi-tech/tsedit/pkg/observability"
	"github.com/Sumatoshi-tech/tsedit/pkg/workspace"
)

type editFlags struct {
	format string
	dryRun bool
}

func (f *editFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "show the edits without writing files")
	cmd.Flags().StringVarP(&f.format, "format", "f", formatDiff, "output format: diff, json or yaml")
}

type editJob struct {
	roots   []string
	include []string
	exclude []string
	reqs    []imports.Request
}

// runEdit expands the job's roots, edits every file and commits unless this
// is a dry run. Per-file failures are reported after the other files are
// handled.
func (a *App) runEdit(ctx context.Context, flags editFlags, job editJob) error {
	if err := checkFormat(flags.format, formatDiff, formatJSON, formatYAML); err != nil {
		return err
	}

	ws, err := a.workspace()
	if err != nil {
		return err
	}

	ctx, span := a.providers.Tracer.Start(ctx, "cli.edit")
	defer span.End()

	paths, err := ws.Expand(job.roots, job.include, job.exclude)
	if err != nil {
		return err
	}

	results, editErr := ws.AddImportsAll(ctx, paths, job.reqs)

	if !flags.dryRun {
		if err := ws.Commit(results); err != nil {
			return errors.Join(editErr, err)
		}
	}

	if err := writeResults(a.out, flags.format, results); err != nil {
		return errors.Join(editErr, err)
	}

	a.summarize(ctx, results, flags.dryRun)

	return editErr
}

func (a *App) summarize(ctx context.Context, results []*workspace.FileResult, dryRun bool) {
	changed := 0

	for _, result := range results {
		if result.Changed() {
			changed++
		}
	}

	a.providers.Logger.DebugContext(ctx, "edit finished",
		"files", len(results), "changed", changed, "dry_run", dryRun)

	if a.quiet {
		return
	}

	verb := "changed"
	if dryRun {
		verb = "would change"
	}

	fmt.Fprintf(a.errOut, "%d of %d files %s\n", changed, len(results), verb)
}

func (a *App) addCmd() *cobra.Command {
	var (
		flags editFlags
		req   imports.Request
	)

	cmd := &cobra.Command{
		Use:   "add --symbol NAME --module PATH [paths...]",
		Short: "Add one import to files",
		Long: `Add an import of NAME from module PATH to every selected file.

An existing import from the same module is extended; otherwise a new
statement is added after the last import. Directories are walked using the
files.include and files.exclude globs of the configuration.

Examples:
  tsedit add --symbol Component --module @angular/core src/app
  tsedit add --symbol React --module react --default --dry-run src`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(observability.ModeCLI); err != nil {
				return err
			}

			roots, err := cleanPaths(args)
			if err != nil {
				return err
			}

			return a.runEdit(cmd.Context(), flags, editJob{
				roots:   roots,
				include: a.cfg.Files.Include,
				exclude: a.cfg.Files.Exclude,
				reqs:    []imports.Request{req},
			})
		},
	}

	cmd.Flags().StringVarP(&req.Symbol, "symbol", "s", "", "identifier to import")
	cmd.Flags().StringVarP(&req.Module, "module", "m", "", "module specifier")
	cmd.Flags().BoolVar(&req.Default, "default", false, "import as the default export")
	flags.register(cmd)

	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("module")

	return cmd
}
