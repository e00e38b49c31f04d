// Package change describes textual edits to source files as a closed set of
// change kinds, and applies them to text or to a Host.
package change

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for change construction and application.
var (
	ErrNegativePosition = errors.New("negative positions are invalid")
	ErrOutOfRange       = errors.New("change position out of range")
	ErrTextMismatch     = errors.New("source text does not match change")
)

// Change is one edit. The set of implementations is closed: InsertChange,
// RemoveChange, ReplaceChange and NoopChange.
type Change interface {
	// Description is a human readable summary of the edit.
	Description() string
	// Order sorts changes for application; higher orders apply first so
	// earlier offsets stay valid.
	Order() int
	// IsNoop reports whether applying the change leaves the text unchanged.
	IsNoop() bool

	sealed()
}

// InsertChange inserts ToAdd at Pos of the file at Path.
type InsertChange struct {
	Path  string
	ToAdd string
	Pos   int
}

// NewInsertChange validates pos and builds an InsertChange.
func NewInsertChange(path string, pos int, toAdd string) (*InsertChange, error) {
	if pos < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativePosition, pos)
	}

	return &InsertChange{Path: path, Pos: pos, ToAdd: toAdd}, nil
}

// Description implements Change.
func (c *InsertChange) Description() string {
	return fmt.Sprintf("Inserted %s into position %d of %s", c.ToAdd, c.Pos, c.Path)
}

// Order implements Change.
func (c *InsertChange) Order() int { return c.Pos }

// IsNoop implements Change.
func (c *InsertChange) IsNoop() bool { return c.ToAdd == "" }

func (*InsertChange) sealed() {}

// RemoveChange removes ToRemove, which must start at Pos.
type RemoveChange struct {
	Path     string
	ToRemove string
	Pos      int
}

// NewRemoveChange validates pos and builds a RemoveChange.
func NewRemoveChange(path string, pos int, toRemove string) (*RemoveChange, error) {
	if pos < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativePosition, pos)
	}

	return &RemoveChange{Path: path, Pos: pos, ToRemove: toRemove}, nil
}

// Description implements Change.
func (c *RemoveChange) Description() string {
	return fmt.Sprintf("Removed %s from position %d of %s", c.ToRemove, c.Pos, c.Path)
}

// Order implements Change.
func (c *RemoveChange) Order() int { return c.Pos }

// IsNoop implements Change.
func (c *RemoveChange) IsNoop() bool { return c.ToRemove == "" }

func (*RemoveChange) sealed() {}

// ReplaceChange replaces OldText, which must start at Pos, with NewText.
type ReplaceChange struct {
	Path    string
	OldText string
	NewText string
	Pos     int
}

// NewReplaceChange validates pos and builds a ReplaceChange.
func NewReplaceChange(path string, pos int, oldText, newText string) (*ReplaceChange, error) {
	if pos < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativePosition, pos)
	}

	return &ReplaceChange{Path: path, Pos: pos, OldText: oldText, NewText: newText}, nil
}

// Description implements Change.
func (c *ReplaceChange) Description() string {
	return fmt.Sprintf("Replaced %s at position %d of %s with %s", c.OldText, c.Pos, c.Path, c.NewText)
}

// Order implements Change.
func (c *ReplaceChange) Order() int { return c.Pos }

// IsNoop implements Change.
func (c *ReplaceChange) IsNoop() bool { return c.OldText == c.NewText }

func (*ReplaceChange) sealed() {}

// NoopChange signals that no edit is required.
type NoopChange struct{}

// Description implements Change.
func (NoopChange) Description() string { return "No operation." }

// Order implements Change. Noops sort before every real change.
func (NoopChange) Order() int { return math.MaxInt }

// IsNoop implements Change.
func (NoopChange) IsNoop() bool { return true }

func (NoopChange) sealed() {}
