// Package tsast parses TypeScript and JavaScript sources into an immutable
// syntax tree with compiler-style positions, backed by tree-sitter.
package tsast

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for parser operations.
var (
	errNoRootNode = errors.New("tsast: no root node")
	errPoolType   = errors.New("tsast: pool returned unexpected type")
)

// Parser turns source text into SourceFiles. It is safe for concurrent use;
// tree-sitter parsers are pooled per grammar.
type Parser struct {
	pools sync.Map // grammar name -> *sync.Pool
}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse detects the language of fileName and parses content.
func (p *Parser) Parse(ctx context.Context, fileName string, content []byte) (*SourceFile, error) {
	lang, err := DetectLanguage(fileName, content)
	if err != nil {
		return nil, err
	}

	return p.ParseLanguage(ctx, lang, fileName, content)
}

// ParseLanguage parses content with the named grammar.
func (p *Parser) ParseLanguage(ctx context.Context, lang, fileName string, content []byte) (*SourceFile, error) {
	pool, err := p.pool(lang)
	if err != nil {
		return nil, err
	}

	tsParser, ok := pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	builder := &treeBuilder{source: content}
	rootNode := builder.build(root, nil)

	return &SourceFile{
		FileName:  fileName,
		Language:  lang,
		Text:      string(content),
		Root:      rootNode,
		HasErrors: builder.sawError,
	}, nil
}

func (p *Parser) pool(lang string) (*sync.Pool, error) {
	if cached, ok := p.pools.Load(lang); ok {
		if pool, castOK := cached.(*sync.Pool); castOK {
			return pool, nil
		}
	}

	language := grammar(lang)
	if language == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	pool := &sync.Pool{
		New: func() any {
			tsParser := sitter.NewParser()
			tsParser.SetLanguage(language)

			return tsParser
		},
	}

	actual, _ := p.pools.LoadOrStore(lang, pool)

	return actual.(*sync.Pool), nil //nolint:forcetypeassert // only *sync.Pool values are stored
}

// treeBuilder copies a tree-sitter tree into Nodes. cursor tracks the end of
// the last non-trivia token, which becomes the full start of the next node.
type treeBuilder struct {
	source   []byte
	cursor   int
	sawError bool
}

func (b *treeBuilder) build(tsNode sitter.Node, parent *Node) *Node {
	typ := tsNode.Type()

	n := &Node{
		Parent: parent,
		Type:   typ,
		Kind:   typeKinds[typ],
		Start:  int(tsNode.StartByte()), //nolint:gosec // tree-sitter byte offsets fit in int
		End:    int(tsNode.EndByte()),   //nolint:gosec // tree-sitter byte offsets fit in int
		Named:  tsNode.IsNamed(),
	}

	if n.Kind.isTrivia() {
		n.Pos = n.Start
	} else {
		n.Pos = b.cursor
	}

	if n.Kind == KindError {
		b.sawError = true
	}

	childCount := tsNode.ChildCount()
	if childCount == 0 {
		n.Text = string(b.source[n.Start:n.End])

		if !n.Kind.isTrivia() {
			b.cursor = n.End
		}
	} else {
		n.Children = make([]*Node, 0, childCount)

		for idx := range childCount {
			child := tsNode.Child(idx)
			if child.IsNull() {
				continue
			}

			n.Children = append(n.Children, b.build(child, n))
		}
	}

	switch n.Kind {
	case KindIdentifier:
		n.Text = string(b.source[n.Start:n.End])
	case KindStringLiteral:
		n.Text = unquote(string(b.source[n.Start:n.End]))
	case KindUnknown:
		if typ == "import_statement" {
			n.Kind = importStatementKind(n)
		}
	}

	return n
}

func importStatementKind(n *Node) Kind {
	for _, child := range n.Children {
		if child.Type == "import_require_clause" {
			return KindImportEqualsDeclaration
		}
	}

	return KindImportDeclaration
}
