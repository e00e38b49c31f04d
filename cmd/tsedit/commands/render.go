package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/tsedit/pkg/change"
	"github.com/Sumatoshi-tech/tsedit/pkg/tsast"
	"github.com/Sumatoshi-tech/tsedit/pkg/workspace"
)

// Output formats.
const (
	formatDiff  = "diff"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

type fileReport struct {
	Path    string              `json:"path"    yaml:"path"`
	Changes []change.Descriptor `json:"changes" yaml:"changes"`
	Changed bool                `json:"changed" yaml:"changed"`
}

type fileImports struct {
	Path    string             `json:"path"    yaml:"path"`
	Imports []tsast.ImportInfo `json:"imports" yaml:"imports"`
}

func checkFormat(format string, allowed ...string) error {
	for _, candidate := range allowed {
		if format == candidate {
			return nil
		}
	}

	return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, format, strings.Join(allowed, ", "))
}

func reports(results []*workspace.FileResult) []fileReport {
	out := make([]fileReport, 0, len(results))

	for _, result := range results {
		out = append(out, fileReport{
			Path:    result.Path,
			Changed: result.Changed(),
			Changes: change.DescribeAll(result.Changes),
		})
	}

	return out
}

func writeStructured(w io.Writer, format string, value any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return nil
}

func writeResults(w io.Writer, format string, results []*workspace.FileResult) error {
	if format != formatDiff {
		return writeStructured(w, format, reports(results))
	}

	for _, result := range results {
		if result.Changed() {
			writeDiff(w, workspace.UnifiedDiff(result.Path, result.Before, result.After))
		}
	}

	return nil
}

func writeDiff(w io.Writer, diff string) {
	header := color.New(color.Bold)
	hunk := color.New(color.FgCyan)
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)

	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			header.Fprint(w, line)
		case strings.HasPrefix(line, "@@"):
			hunk.Fprint(w, line)
		case strings.HasPrefix(line, "+"):
			added.Fprint(w, line)
		case strings.HasPrefix(line, "-"):
			removed.Fprint(w, line)
		default:
			fmt.Fprint(w, line)
		}
	}
}

func writeImportsTable(w io.Writer, files []fileImports) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"File", "Line", "Module", "Default", "Namespace", "Named"})

	total := 0

	for _, file := range files {
		for _, info := range file.Imports {
			tbl.AppendRow(table.Row{
				file.Path, info.Line, info.Module, info.Default, info.Namespace, strings.Join(info.Named, ", "),
			})

			total++
		}
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d imports", total)})
	tbl.Render()
}
