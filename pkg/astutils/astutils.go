// Package astutils builds changes anchored on syntax nodes.
package astutils

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/tsedit/pkg/change"
	"github.com/Sumatoshi-tech/tsedit/pkg/tsast"
)

// NoFallback tells InsertAfterLastOccurrence that there is no fallback
// position.
const NoFallback = -1

// ErrNoInsertPosition is returned when there is neither an anchor node nor a
// fallback position.
var ErrNoInsertPosition = errors.New("no anchor node and no fallback position")

// FindNodes returns up to limit nodes of kind under node, node included.
func FindNodes(node *tsast.Node, kind tsast.Kind, limit int) []*tsast.Node {
	return tsast.FindNodes(node, kind, limit)
}

// GetSourceNodes flattens the file's tree in document order, root first.
func GetSourceNodes(sf *tsast.SourceFile) []*tsast.Node {
	return tsast.Find(sf.Root, func(*tsast.Node) bool { return true })
}

// InsertAfterLastOccurrence inserts toInsert after the node of nodes with the
// greatest full-start position. When kind is not KindUnknown the anchor is
// narrowed to the last descendant of that kind. Without an anchor the text
// goes to fallbackPos; a negative fallbackPos makes that an error.
func InsertAfterLastOccurrence(
	nodes []*tsast.Node, toInsert, file string, fallbackPos int, kind tsast.Kind,
) (*change.InsertChange, error) {
	var last *tsast.Node

	if sorted := tsast.SortByPosition(nodes); len(sorted) > 0 {
		last = sorted[len(sorted)-1]
	}

	if kind != tsast.KindUnknown && last != nil {
		last = lastOf(tsast.FindKind(last, kind))
	}

	if last == nil {
		if fallbackPos < 0 {
			return nil, fmt.Errorf("insert %q: %w", toInsert, ErrNoInsertPosition)
		}

		return change.NewInsertChange(file, fallbackPos, toInsert)
	}

	return change.NewInsertChange(file, last.End, toInsert)
}

func lastOf(nodes []*tsast.Node) *tsast.Node {
	sorted := tsast.SortByPosition(nodes)
	if len(sorted) == 0 {
		return nil
	}

	return sorted[len(sorted)-1]
}
