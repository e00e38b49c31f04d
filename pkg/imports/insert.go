// Package imports adds ES module imports to TypeScript and JavaScript files.
package imports

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/tsedit/pkg/astutils"
	"github.com/Sumatoshi-tech/tsedit/pkg/change"
	"github.com/Sumatoshi-tech/tsedit/pkg/tsast"
)

// useStrict is the directive text that anchors imports in files without any.
const useStrict = "use strict"

// ErrMalformedImport is returned when a matching import declaration has
// neither a closing brace nor a from keyword to anchor on.
var ErrMalformedImport = errors.New("import declaration has no closing brace or from keyword")

// Request describes one import to add.
type Request struct {
	Symbol  string `json:"symbol"            yaml:"symbol"`
	Module  string `json:"module"            yaml:"module"`
	Default bool   `json:"default,omitempty" yaml:"default,omitempty"`
}

// String renders the statement the request would add to an empty file.
func (r Request) String() string {
	return renderImport(r.Symbol, r.Module, r.Default)
}

// InsertImport returns the change that makes symbolName available from
// modulePath in source, or a NoopChange when an existing import already
// binds it or imports the whole module.
//
// modulePath is compared verbatim against the module specifier of every
// import declaration. A missing symbol is appended to the first matching
// declaration; without a match a new statement goes after the last import,
// after a "use strict" directive, or at the top of the file.
func InsertImport(source *tsast.SourceFile, fileToEdit, symbolName, modulePath string, isDefault bool) (change.Change, error) {
	logger := slog.Default().With(
		slog.String("file", fileToEdit),
		slog.String("symbol", symbolName),
		slog.String("module", modulePath),
	)

	allImports := astutils.FindNodes(source.Root, tsast.KindImportDeclaration, tsast.Unlimited)
	relevant := importsFrom(allImports, modulePath)

	if len(relevant) > 0 {
		return extendImport(logger, relevant, fileToEdit, symbolName)
	}

	fallbackPos := 0

	pragma := firstUseStrict(source)
	if pragma != nil {
		fallbackPos = pragma.End
	}

	atBeginning := len(allImports) == 0 && pragma == nil

	separator, terminator := ";\n", ""
	if atBeginning {
		separator, terminator = "", ";\n"
	}

	toInsert := separator + renderImport(symbolName, modulePath, isDefault) + terminator

	ch, err := astutils.InsertAfterLastOccurrence(allImports, toInsert, fileToEdit, fallbackPos, tsast.KindStringLiteral)
	if err != nil {
		return nil, fmt.Errorf("insert import of %s: %w", symbolName, err)
	}

	logger.Debug("new import statement", slog.Int("pos", ch.Pos), slog.Bool("default", isDefault))

	return ch, nil
}

func firstUseStrict(source *tsast.SourceFile) *tsast.Node {
	for _, n := range astutils.GetSourceNodes(source) {
		if n.Kind == tsast.KindStringLiteral && n.Text == useStrict {
			return n
		}
	}

	return nil
}

// importsFrom keeps the declarations whose own module specifier is modulePath.
func importsFrom(decls []*tsast.Node, modulePath string) []*tsast.Node {
	var out []*tsast.Node

	for _, decl := range decls {
		matches := 0

		for _, spec := range decl.ChildrenOfKind(tsast.KindStringLiteral) {
			if spec.Text == modulePath {
				matches++
			}
		}

		if matches == 1 {
			out = append(out, decl)
		}
	}

	return out
}

func extendImport(logger *slog.Logger, relevant []*tsast.Node, fileToEdit, symbolName string) (change.Change, error) {
	for _, decl := range relevant {
		if len(tsast.FindKind(decl, tsast.KindAsteriskToken)) > 0 {
			logger.Debug("module imported as namespace")

			return change.NoopChange{}, nil
		}
	}

	for _, decl := range relevant {
		for _, id := range tsast.FindKind(decl, tsast.KindIdentifier) {
			if id.Text == symbolName {
				logger.Debug("symbol already imported")

				return change.NoopChange{}, nil
			}
		}
	}

	first := relevant[0]

	fallbackPos, err := fallbackInDeclaration(first)
	if err != nil {
		return nil, err
	}

	ch, err := astutils.InsertAfterLastOccurrence(
		tsast.FindKind(first, tsast.KindIdentifier), ", "+symbolName, fileToEdit, fallbackPos, tsast.KindUnknown,
	)
	if err != nil {
		return nil, fmt.Errorf("extend import of %s: %w", symbolName, err)
	}

	logger.Debug("extending existing import", slog.Int("pos", ch.Pos))

	return ch, nil
}

// fallbackInDeclaration is the full start of the closing brace, or of the
// from keyword when there are no braces.
func fallbackInDeclaration(decl *tsast.Node) (int, error) {
	if braces := tsast.FindKind(decl, tsast.KindCloseBraceToken); len(braces) > 0 {
		return braces[0].Pos, nil
	}

	if from := tsast.FindKind(decl, tsast.KindFromKeyword); len(from) > 0 {
		return from[0].Pos, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrMalformedImport, declarationText(decl))
}

func declarationText(decl *tsast.Node) string {
	specs := decl.ChildrenOfKind(tsast.KindStringLiteral)
	if len(specs) == 0 {
		return decl.Type
	}

	return specs[0].Text
}

func renderImport(symbolName, modulePath string, isDefault bool) string {
	if isDefault {
		return "import " + symbolName + " from '" + modulePath + "'"
	}

	return "import { " + symbolName + " } from '" + modulePath + "'"
}
