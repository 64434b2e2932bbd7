// Package change provides the append-only change log and the composite
// change machinery used to move simulation state between points in history.
package change

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRange is returned when a requested log slice has invalid bounds.
var ErrRange = errors.New("change log range out of bounds")

// Change is an opaque, invertible unit of simulation-state mutation.
// The state type is owned by the simulation; implementations assert it.
type Change interface {
	Apply(state any) error
	Invert() Change
}

// NoOp is returned when two points in history denote the same moment.
var NoOp Change = noOp{}

type noOp struct{}

func (noOp) Apply(any) error { return nil }
func (noOp) Invert() Change  { return NoOp }
func (noOp) String() string  { return "no-op" }

// IsNoOp reports whether c performs no state transformation.
func IsNoOp(c Change) bool {
	if c == nil || c == NoOp {
		return true
	}
	if comp, ok := c.(*Composite); ok {
		return comp.Len() == 0
	}
	return false
}

// Composite applies an ordered sequence of changes as a single unit.
type Composite struct {
	changes []Change
}

// NewComposite copies changes so later mutation of the input does not leak in.
func NewComposite(changes []Change) *Composite {
	owned := make([]Change, len(changes))
	copy(owned, changes)
	return &Composite{changes: owned}
}

// Apply applies each change in order and stops at the first failure.
func (c *Composite) Apply(state any) error {
	for i, ch := range c.changes {
		if err := ch.Apply(state); err != nil {
			return fmt.Errorf("apply change %d of %d: %w", i+1, len(c.changes), err)
		}
	}
	return nil
}

// Invert returns a composite of each inverse in reverse order.
func (c *Composite) Invert() Change {
	inverted := make([]Change, len(c.changes))
	for i, ch := range c.changes {
		inverted[len(c.changes)-1-i] = ch.Invert()
	}
	return &Composite{changes: inverted}
}

// Changes returns a copy of the underlying sequence.
func (c *Composite) Changes() []Change {
	out := make([]Change, len(c.changes))
	copy(out, c.changes)
	return out
}

// Len returns the number of changes in the composite.
func (c *Composite) Len() int { return len(c.changes) }

func (c *Composite) String() string {
	parts := make([]string, 0, len(c.changes))
	for _, ch := range c.changes {
		parts = append(parts, Describe(ch))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Describe returns a printable form of c.
func Describe(c Change) string {
	if c == nil {
		return "<nil>"
	}
	if s, ok := c.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", c)
}
