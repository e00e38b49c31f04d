package tsast

import "strings"

// Node is one syntax node of a parsed source file. Nodes are immutable once
// the tree is built and are safe to share between goroutines.
type Node struct {
	Parent   *Node
	Type     string
	Text     string
	Children []*Node
	Kind     Kind
	// Pos is the full start of the node: the end of the previous token, so
	// leading whitespace and comments belong to the node.
	Pos   int
	Start int
	End   int
	Named bool
}

// Is reports whether the node has the given kind.
func (n *Node) Is(kind Kind) bool {
	return n != nil && n.Kind == kind
}

// ChildrenOfKind returns the direct children with the given kind.
func (n *Node) ChildrenOfKind(kind Kind) []*Node {
	var out []*Node

	for _, child := range n.Children {
		if child.Kind == kind {
			out = append(out, child)
		}
	}

	return out
}

// SourceText returns the node's text as it appears in source, excluding
// leading trivia.
func (n *Node) SourceText(source string) string {
	if n.Start < 0 || n.End > len(source) || n.Start > n.End {
		return ""
	}

	return source[n.Start:n.End]
}

// String renders the node as an S-expression of kinds, for debugging.
func (n *Node) String() string {
	var sb strings.Builder

	n.writeSExpr(&sb)

	return sb.String()
}

func (n *Node) writeSExpr(sb *strings.Builder) {
	sb.WriteByte('(')
	sb.WriteString(n.Type)

	for _, child := range n.Children {
		if !child.Named {
			continue
		}

		sb.WriteByte(' ')
		child.writeSExpr(sb)
	}

	sb.WriteByte(')')
}
