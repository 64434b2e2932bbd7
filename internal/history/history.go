package history

import (
	"fmt"
	"io"
	"log/slog"

	"gamehistory/internal/change"
)

// History pairs the narrative tree with the flat change log it indexes into.
//
// A single writer appends changes and nodes; queries are read-only and must
// not interleave with an in-progress append. History does no locking itself.
type History struct {
	tree   *Tree
	log    *change.Log
	logger *slog.Logger
}

// New creates an empty history whose root node is labeled title.
// A nil logger discards output.
func New(title string, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &History{
		tree:   NewTree(title),
		log:    change.NewLog(),
		logger: logger,
	}
}

// Tree returns the narrative tree.
func (h *History) Tree() *Tree { return h.tree }

// Log returns the change log.
func (h *History) Log() *change.Log { return h.log }

// Root returns the root node.
func (h *History) Root() NodeID { return h.tree.Root() }

// LastNode returns the most recent point in recorded history.
func (h *History) LastNode() NodeID { return h.tree.LastNode() }

// EffectiveIndex resolves a node to its position in the change log timeline.
// Open events resolve to the current log length, so the value grows while
// the event is still being recorded and is fixed once it closes.
func (h *History) EffectiveIndex(id NodeID) (int, error) {
	n, err := h.tree.get(id)
	if err != nil {
		return 0, err
	}
	switch n.kind {
	case KindRoot:
		return 0, nil
	case KindRound, KindStep:
		return n.start, nil
	case KindEvent:
		return h.eventEnd(n), nil
	case KindEventDetail:
		evID, err := h.tree.EnclosingEvent(id)
		if err != nil {
			return 0, err
		}
		return h.eventEnd(&h.tree.nodes[evID]), nil
	default:
		return 0, fmt.Errorf("node %d has %s: %w", id, n.kind, ErrInvalidNodeVariant)
	}
}

func (h *History) eventEnd(n *node) int {
	if end, closed := n.end.Closed(); closed {
		return end
	}
	return h.log.Len()
}

// Writer returns a writer that records into h.
func (h *History) Writer() *Writer {
	return newWriter(h)
}
