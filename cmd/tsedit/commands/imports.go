package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsedit/pkg/observability"
)

func (a *App) importsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "imports [paths...]",
		Short: "List the imports of files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatTable, formatJSON, formatYAML); err != nil {
				return err
			}

			if err := a.setup(observability.ModeCLI); err != nil {
				return err
			}

			roots, err := cleanPaths(args)
			if err != nil {
				return err
			}

			ws, err := a.workspace()
			if err != nil {
				return err
			}

			paths, err := ws.Expand(roots, a.cfg.Files.Include, a.cfg.Files.Exclude)
			if err != nil {
				return err
			}

			files := make([]fileImports, 0, len(paths))

			var errs []error

			for _, path := range paths {
				infos, importsErr := ws.ImportsOf(cmd.Context(), path)
				if importsErr != nil {
					errs = append(errs, importsErr)

					continue
				}

				files = append(files, fileImports{Path: path, Imports: infos})
			}

			if format == formatTable {
				writeImportsTable(a.out, files)
			} else if err := writeStructured(a.out, format, files); err != nil {
				errs = append(errs, err)
			}

			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: table, json or yaml")

	return cmd
}
