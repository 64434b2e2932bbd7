package change

import "fmt"

// Log is the append-only, globally ordered sequence of changes for a session.
// It is appended by a single writer; readers must not interleave with appends.
type Log struct {
	entries []Change
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append adds c at the end and returns its index.
func (l *Log) Append(c Change) int {
	idx := len(l.entries)
	l.entries = append(l.entries, c)
	return idx
}

// Len returns the current number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// At returns the change stored at idx.
func (l *Log) At(idx int) (Change, error) {
	if idx < 0 || idx >= len(l.entries) {
		return nil, fmt.Errorf("index %d with length %d: %w", idx, len(l.entries), ErrRange)
	}
	return l.entries[idx], nil
}

// Slice returns the changes at indices [lo, hi) in original order.
// Bounds are never clamped.
func (l *Log) Slice(lo, hi int) ([]Change, error) {
	if lo < 0 || lo > hi || hi > len(l.entries) {
		return nil, fmt.Errorf("slice [%d, %d) with length %d: %w", lo, hi, len(l.entries), ErrRange)
	}
	out := make([]Change, hi-lo)
	copy(out, l.entries[lo:hi])
	return out, nil
}

// Compose builds a single change applying changes in order.
func (l *Log) Compose(changes []Change) *Composite {
	return NewComposite(changes)
}
