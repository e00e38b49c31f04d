package workspace

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/span"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// UnifiedDiff renders the line difference between before and after in
// unified format with three lines of context. Identical texts give "".
func UnifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}

	name := strings.TrimPrefix(filepath.ToSlash(path), "/")
	edits := lineEdits(span.URIFromPath(name), before, after)

	return fmt.Sprint(gotextdiff.ToUnified("a/"+name, "b/"+name, before, edits))
}

// lineEdits turns a diffmatchpatch line diff into whole-line text edits.
// Each run of deletions and insertions between equal lines becomes one edit.
func lineEdits(uri span.URI, before, after string) []gotextdiff.TextEdit {
	dmp := diffmatchpatch.New()
	src, dst, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lineArray)

	var (
		edits   []gotextdiff.TextEdit
		pending *lineEdit
	)

	// line is 0-based, offset is the byte offset of its start in before.
	line, offset := 0, 0

	flush := func() {
		if pending == nil {
			return
		}

		edits = append(edits, pending.textEdit(uri, line, offset))
		pending = nil
	}

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()

			line += countLines(d.Text)
			offset += len(d.Text)
		case diffmatchpatch.DiffDelete:
			if pending == nil {
				pending = &lineEdit{startLine: line, startOffset: offset}
			}

			line += countLines(d.Text)
			offset += len(d.Text)
		case diffmatchpatch.DiffInsert:
			if pending == nil {
				pending = &lineEdit{startLine: line, startOffset: offset}
			}

			pending.newText.WriteString(d.Text)
		}
	}

	flush()

	return edits
}

type lineEdit struct {
	startLine   int
	startOffset int
	newText     strings.Builder
}

func (e *lineEdit) textEdit(uri span.URI, endLine, endOffset int) gotextdiff.TextEdit {
	return gotextdiff.TextEdit{
		Span: span.New(uri,
			span.NewPoint(e.startLine+1, 1, e.startOffset),
			span.NewPoint(endLine+1, 1, endOffset),
		),
		NewText: e.newText.String(),
	}
}

// countLines counts lines including an unterminated last one.
func countLines(text string) int {
	n := strings.Count(text, "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		n++
	}

	return n
}
