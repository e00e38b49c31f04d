package tsast

import (
	"cmp"
	"slices"
)

// Predicate selects nodes during a search.
type Predicate func(*Node) bool

// Unlimited disables the result cap of FindNodes.
const Unlimited = -1

// Walk visits root and all its descendants in document order. Returning false
// from visit skips the node's children.
func Walk(root *Node, visit func(*Node) bool) {
	if root == nil {
		return
	}

	if !visit(root) {
		return
	}

	for _, child := range root.Children {
		Walk(child, visit)
	}
}

// Find returns every node in the subtree rooted at root, root included, that
// satisfies pred, in document order.
func Find(root *Node, pred Predicate) []*Node {
	var out []*Node

	Walk(root, func(n *Node) bool {
		if pred(n) {
			out = append(out, n)
		}

		return true
	})

	return out
}

// FindNodes returns up to limit nodes of the given kind in the subtree rooted
// at root, root included, in document order. A negative limit means no cap;
// a zero limit returns nothing.
func FindNodes(root *Node, kind Kind, limit int) []*Node {
	if root == nil || limit == 0 {
		return nil
	}

	var out []*Node

	Walk(root, func(n *Node) bool {
		if limit >= 0 && len(out) >= limit {
			return false
		}

		if n.Kind == kind {
			out = append(out, n)
		}

		return true
	})

	return out
}

// FindKind returns all nodes of the given kind under root.
func FindKind(root *Node, kind Kind) []*Node {
	return FindNodes(root, kind, Unlimited)
}

// ByPosition orders nodes by full-start position.
func ByPosition(a, b *Node) int {
	return cmp.Compare(a.Pos, b.Pos)
}

// SortByPosition returns a copy of nodes ordered by full-start position.
// Nodes sharing a position keep their relative order.
func SortByPosition(nodes []*Node) []*Node {
	sorted := slices.Clone(nodes)
	slices.SortStableFunc(sorted, ByPosition)

	return sorted
}
