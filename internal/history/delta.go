package history

import (
	"fmt"

	"gamehistory/internal/change"
)

// Span is the pair of log positions two nodes resolve to.
type Span struct {
	From int
	To   int
}

// Forward reports whether moving along the span replays changes rather than
// undoing them. An empty span counts as forward.
func (s Span) Forward() bool { return s.To >= s.From }

// Empty reports whether both ends resolve to the same position.
func (s Span) Empty() bool { return s.From == s.To }

// Bounds returns the half-open log range [lo, hi) covered by the span.
func (s Span) Bounds() (lo, hi int) { return min(s.From, s.To), max(s.From, s.To) }

// Span resolves start and end to their effective indices.
func (h *History) Span(start, end NodeID) (Span, error) {
	first, err := h.EffectiveIndex(start)
	if err != nil {
		return Span{}, fmt.Errorf("resolve start node: %w", err)
	}
	last, err := h.EffectiveIndex(end)
	if err != nil {
		return Span{}, fmt.Errorf("resolve end node: %w", err)
	}
	return Span{From: first, To: last}, nil
}

// Delta returns the change that moves state consistent with start to state
// consistent with end. Equal points yield change.NoOp; moving backward yields
// the inverted composite. Out-of-range indices fail with change.ErrRange.
func (h *History) Delta(start, end NodeID) (change.Change, error) {
	span, err := h.Span(start, end)
	if err != nil {
		return nil, err
	}
	if span.Empty() {
		h.logger.Debug("delta is empty", "start", start, "end", end, "index", span.From)
		return change.NoOp, nil
	}

	lo, hi := span.Bounds()
	changes, err := h.log.Slice(lo, hi)
	if err != nil {
		return nil, fmt.Errorf("delta %d -> %d: %w", start, end, err)
	}
	composite := h.log.Compose(changes)

	h.logger.Debug("delta resolved",
		"start", start, "end", end, "lo", lo, "hi", hi, "forward", span.Forward())
	if span.Forward() {
		return composite, nil
	}
	return composite.Invert(), nil
}

// Seek applies Delta(from, to) to state.
func (h *History) Seek(state any, from, to NodeID) error {
	delta, err := h.Delta(from, to)
	if err != nil {
		return err
	}
	if err := delta.Apply(state); err != nil {
		return fmt.Errorf("seek %d -> %d: %w", from, to, err)
	}
	return nil
}
