// Package history records the narrative of a turn-based simulation as a tree
// of rounds, steps, events and event details, each anchored into a shared
// change log, and computes the composite change between any two nodes.
package history

import "fmt"

// NodeID is a stable index into a tree's node arena.
type NodeID int

// NoNode marks the absence of a node, e.g. the root's parent.
const NoNode NodeID = -1

// Kind is the closed set of node variants.
type Kind int

const (
	// KindRoot is the single game node created with the tree.
	KindRoot Kind = iota
	// KindRound is a game round, e.g. "Round 3".
	KindRound
	// KindStep is a phase within a round, e.g. "Britain Combat Move".
	KindStep
	// KindEvent is something that happened during a step and caused changes.
	KindEvent
	// KindEventDetail is auxiliary information attached under an event.
	KindEventDetail
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindRound:
		return "round"
	case KindStep:
		return "step"
	case KindEvent:
		return "event"
	case KindEventDetail:
		return "detail"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Indexed reports whether nodes of kind k anchor a point in the change log.
func (k Kind) Indexed() bool {
	return k == KindRound || k == KindStep || k == KindEvent
}

// EventEnd is the two-state end marker of an event: open while the event is
// still accumulating changes, closed once its end index is fixed.
type EventEnd struct {
	closed bool
	index  int
}

// OpenEnd returns the end marker of an event that is still being recorded.
func OpenEnd() EventEnd { return EventEnd{} }

// ClosedAt returns the end marker of an event closed at idx.
func ClosedAt(idx int) EventEnd { return EventEnd{closed: true, index: idx} }

// Closed returns the end index and true once the event is closed.
func (e EventEnd) Closed() (int, bool) { return e.index, e.closed }

func (e EventEnd) String() string {
	if !e.closed {
		return "open"
	}
	return fmt.Sprintf("closed@%d", e.index)
}

// Node is a read-only view of one arena entry.
type Node struct {
	ID       NodeID
	Kind     Kind
	Name     string
	Text     string // detail body; empty for other kinds
	Parent   NodeID
	Children []NodeID

	// StartIndex is the log length when the node was created.
	// Meaningful only for indexed kinds.
	StartIndex int

	// End is set only on events.
	End EventEnd
}

type node struct {
	kind     Kind
	name     string
	text     string
	parent   NodeID
	children []NodeID
	start    int
	end      EventEnd
}

func (n *node) view(id NodeID) Node {
	children := make([]NodeID, len(n.children))
	copy(children, n.children)
	return Node{
		ID:         id,
		Kind:       n.kind,
		Name:       n.name,
		Text:       n.text,
		Parent:     n.parent,
		Children:   children,
		StartIndex: n.start,
		End:        n.end,
	}
}

// allowedParent reports whether a node of kind child may hang under parent.
func allowedParent(parent, child Kind) bool {
	switch child {
	case KindRound:
		return parent == KindRoot
	case KindStep:
		return parent == KindRound
	case KindEvent:
		return parent == KindStep
	case KindEventDetail:
		return parent == KindEvent || parent == KindEventDetail
	default:
		return false
	}
}
