package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsedit/pkg/observability"
	"github.com/Sumatoshi-tech/tsedit/pkg/plan"
)

func (a *App) applyCmd() *cobra.Command {
	var flags editFlags

	cmd := &cobra.Command{
		Use:   "apply PLAN [paths...]",
		Short: "Add the imports listed in a plan file",
		Long: `Add every import of a YAML or JSON plan to the files it selects.

The plan's files and exclude globs are matched relative to each path
argument (default: the current directory). Without files, the configured
files.include globs apply; exclude globs are added to files.exclude.

Example plan:
  files: ["src/**/*.ts"]
  imports:
    - symbol: Component
      module: "@angular/core"
    - symbol: React
      module: react
      default: true`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(observability.ModeCLI); err != nil {
				return err
			}

			planPaths, err := cleanPaths(args[:1])
			if err != nil {
				return err
			}

			p, err := plan.LoadFile(a.fs, planPaths[0])
			if err != nil {
				return err
			}

			roots, err := cleanPaths(args[1:])
			if err != nil {
				return err
			}

			return a.runEdit(cmd.Context(), flags, editJob{
				roots:   roots,
				include: p.IncludePatterns(a.cfg.Files.Include),
				exclude: p.ExcludePatterns(a.cfg.Files.Exclude),
				reqs:    p.Requests(),
			})
		},
	}

	flags.register(cmd)

	return cmd
}
