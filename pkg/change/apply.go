package change

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Handler receives one call per change kind from Visit.
type Handler interface {
	Insert(c *InsertChange) error
	Remove(c *RemoveChange) error
	Replace(c *ReplaceChange) error
	Noop() error
}

// Visit dispatches c to the matching Handler method.
func Visit(c Change, h Handler) error {
	switch typed := c.(type) {
	case *InsertChange:
		return h.Insert(typed)
	case *RemoveChange:
		return h.Remove(typed)
	case *ReplaceChange:
		return h.Replace(typed)
	case NoopChange, *NoopChange:
		return h.Noop()
	default:
		return fmt.Errorf("change: unknown change type %T", c)
	}
}

// ApplyToText applies c to text and returns the result.
func ApplyToText(text string, c Change) (string, error) {
	applier := &textApplier{text: text}

	err := Visit(c, applier)
	if err != nil {
		return "", err
	}

	return applier.text, nil
}

type textApplier struct {
	text string
}

func (a *textApplier) Insert(c *InsertChange) error {
	if c.Pos < 0 || c.Pos > len(a.text) {
		return fmt.Errorf("%w: insert at %d in %d bytes", ErrOutOfRange, c.Pos, len(a.text))
	}

	a.text = a.text[:c.Pos] + c.ToAdd + a.text[c.Pos:]

	return nil
}

func (a *textApplier) Remove(c *RemoveChange) error {
	if err := a.expect(c.Pos, c.ToRemove); err != nil {
		return err
	}

	a.text = a.text[:c.Pos] + a.text[c.Pos+len(c.ToRemove):]

	return nil
}

func (a *textApplier) Replace(c *ReplaceChange) error {
	if err := a.expect(c.Pos, c.OldText); err != nil {
		return err
	}

	a.text = a.text[:c.Pos] + c.NewText + a.text[c.Pos+len(c.OldText):]

	return nil
}

func (a *textApplier) Noop() error { return nil }

func (a *textApplier) expect(pos int, want string) error {
	end := pos + len(want)
	if pos < 0 || end > len(a.text) {
		return fmt.Errorf("%w: [%d,%d) in %d bytes", ErrOutOfRange, pos, end, len(a.text))
	}

	if got := a.text[pos:end]; got != want {
		return fmt.Errorf("%w: want %q at %d, found %q", ErrTextMismatch, want, pos, got)
	}

	return nil
}

// Host reads and writes file contents by path.
type Host interface {
	Read(path string) (string, error)
	Write(path, content string) error
}

// Apply applies c to the file it targets on host.
func Apply(host Host, c Change) error {
	path := Path(c)
	if path == "" {
		return nil
	}

	text, err := host.Read(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	updated, err := ApplyToText(text, c)
	if err != nil {
		return fmt.Errorf("apply to %s: %w", path, err)
	}

	return host.Write(path, updated)
}

// ApplyAll applies changes in descending Order so that offsets computed
// against the original text stay valid. Every change is attempted; failures
// are joined.
func ApplyAll(host Host, changes []Change) error {
	sorted := Sorted(changes)

	var errs []error

	for _, c := range sorted {
		if err := Apply(host, c); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Sorted returns changes ordered for application, highest Order first.
// Changes with equal Order keep their relative order.
func Sorted(changes []Change) []Change {
	sorted := slices.Clone(changes)
	slices.SortStableFunc(sorted, func(a, b Change) int {
		return cmp.Compare(b.Order(), a.Order())
	})

	return sorted
}

// Path returns the file a change targets, or "" for a noop.
func Path(c Change) string {
	switch typed := c.(type) {
	case *InsertChange:
		return typed.Path
	case *RemoveChange:
		return typed.Path
	case *ReplaceChange:
		return typed.Path
	default:
		return ""
	}
}
