// Package game provides a small reference simulation state and the changes
// that mutate it, used to record and replay session histories.
package game

import (
	"errors"
	"fmt"
	"maps"
	"sort"

	"gamehistory/internal/change"
)

// ErrStateType is returned when a change is applied to something other than *State.
var ErrStateType = errors.New("state is not *game.State")

// ErrPropertyMismatch is returned when a property change does not match the
// current value it expects to replace.
var ErrPropertyMismatch = errors.New("property value mismatch")

// State holds named unit counters and string properties,
// e.g. "Russia/infantry" = 8, "Germany/capital" = "Berlin".
type State struct {
	Counters   map[string]int
	Properties map[string]string
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		Counters:   make(map[string]int),
		Properties: make(map[string]string),
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	return &State{
		Counters:   maps.Clone(s.Counters),
		Properties: maps.Clone(s.Properties),
	}
}

// Equal reports whether two states hold the same counters and properties.
func (s *State) Equal(other *State) bool {
	return maps.Equal(s.Counters, other.Counters) && maps.Equal(s.Properties, other.Properties)
}

// CounterKeys returns counter names in sorted order.
func (s *State) CounterKeys() []string {
	keys := make([]string, 0, len(s.Counters))
	for k := range s.Counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PropertyKeys returns property names in sorted order.
func (s *State) PropertyKeys() []string {
	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func asState(state any) (*State, error) {
	s, ok := state.(*State)
	if !ok || s == nil {
		return nil, fmt.Errorf("got %T: %w", state, ErrStateType)
	}
	return s, nil
}

// Adjust adds Delta to the counter named Key. Counters that reach zero are
// removed so a replayed state compares equal to the recorded one.
type Adjust struct {
	Key   string
	Delta int
}

// Apply implements change.Change.
func (a Adjust) Apply(state any) error {
	s, err := asState(state)
	if err != nil {
		return err
	}
	v := s.Counters[a.Key] + a.Delta
	if v == 0 {
		delete(s.Counters, a.Key)
		return nil
	}
	s.Counters[a.Key] = v
	return nil
}

// Invert implements change.Change.
func (a Adjust) Invert() change.Change {
	return Adjust{Key: a.Key, Delta: -a.Delta}
}

func (a Adjust) String() string {
	return fmt.Sprintf("%s %+d", a.Key, a.Delta)
}

// SetProperty replaces the property Key from Old to New. An empty value
// means the property is absent.
type SetProperty struct {
	Key string
	Old string
	New string
}

// Apply implements change.Change.
func (p SetProperty) Apply(state any) error {
	s, err := asState(state)
	if err != nil {
		return err
	}
	if cur := s.Properties[p.Key]; cur != p.Old {
		return fmt.Errorf("set %s: have %q, expected %q: %w", p.Key, cur, p.Old, ErrPropertyMismatch)
	}
	if p.New == "" {
		delete(s.Properties, p.Key)
		return nil
	}
	s.Properties[p.Key] = p.New
	return nil
}

// Invert implements change.Change.
func (p SetProperty) Invert() change.Change {
	return SetProperty{Key: p.Key, Old: p.New, New: p.Old}
}

func (p SetProperty) String() string {
	return fmt.Sprintf("%s: %q -> %q", p.Key, p.Old, p.New)
}
