package tsast

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// SourceFile is one parsed file.
type SourceFile struct {
	Root      *Node
	FileName  string
	Language  string
	Text      string
	HasErrors bool
}

// ImportInfo summarizes one import declaration.
type ImportInfo struct {
	Module    string   `json:"module"              yaml:"module"`
	Default   string   `json:"default,omitempty"   yaml:"default,omitempty"`
	Namespace string   `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Named     []string `json:"named,omitempty"     yaml:"named,omitempty"`
	Line      int      `json:"line"                yaml:"line"`
	Start     int      `json:"start"               yaml:"start"`
	End       int      `json:"end"                 yaml:"end"`
}

// ImportDeclarations returns the import declaration nodes in document order.
func (sf *SourceFile) ImportDeclarations() []*Node {
	return FindKind(sf.Root, KindImportDeclaration)
}

// Imports summarizes every import declaration of the file.
func (sf *SourceFile) Imports() []ImportInfo {
	decls := sf.ImportDeclarations()
	out := make([]ImportInfo, 0, len(decls))

	for _, decl := range decls {
		info := ImportInfo{
			Line:  sf.Line(decl.Start),
			Start: decl.Start,
			End:   decl.End,
		}

		if specs := decl.ChildrenOfKind(KindStringLiteral); len(specs) > 0 {
			info.Module = specs[0].Text
		}

		for _, clause := range decl.ChildrenOfKind(KindImportClause) {
			describeClause(clause, &info)
		}

		out = append(out, info)
	}

	return out
}

func describeClause(clause *Node, info *ImportInfo) {
	for _, part := range clause.Children {
		switch part.Kind {
		case KindIdentifier:
			info.Default = part.Text
		case KindNamespaceImport:
			if ids := part.ChildrenOfKind(KindIdentifier); len(ids) > 0 {
				info.Namespace = ids[0].Text
			}
		case KindNamedImports:
			for _, spec := range part.ChildrenOfKind(KindImportSpecifier) {
				info.Named = append(info.Named, describeSpecifier(spec))
			}
		}
	}
}

func describeSpecifier(spec *Node) string {
	var names []string

	for _, child := range spec.Children {
		if child.Kind == KindIdentifier || child.Kind == KindStringLiteral {
			names = append(names, child.Text)
		}
	}

	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return names[0] + " as " + names[1]
	}
}

// Line returns the 1-based line number of a byte offset.
func (sf *SourceFile) Line(offset int) int {
	if offset > len(sf.Text) {
		offset = len(sf.Text)
	}

	return strings.Count(sf.Text[:max(offset, 0)], "\n") + 1
}

// unquote decodes a JavaScript string literal, quotes included. Malformed
// escapes are kept verbatim.
func unquote(lit string) string {
	if len(lit) < 2 {
		return lit
	}

	body := lit[1 : len(lit)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}

	var sb strings.Builder

	sb.Grow(len(body))

	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			sb.WriteByte(c)

			continue
		}

		i++

		switch esc := body[i]; esc {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '0':
			sb.WriteByte(0)
		case '\n':
			// line continuation
		case 'x':
			if r, ok := hexRune(body, i+1, 2); ok {
				sb.WriteRune(r)

				i += 2
			} else {
				sb.WriteString(`\x`)
			}
		case 'u':
			if r, ok := hexRune(body, i+1, 4); ok {
				sb.WriteRune(r)

				i += 4
			} else {
				sb.WriteString(`\u`)
			}
		default:
			sb.WriteByte(esc)
		}
	}

	return sb.String()
}

func hexRune(s string, from, digits int) (rune, bool) {
	if from+digits > len(s) {
		return utf8.RuneError, false
	}

	v, err := strconv.ParseUint(s[from:from+digits], 16, 32)
	if err != nil {
		return utf8.RuneError, false
	}

	return rune(v), true
}
