package history

import (
	"fmt"
	"strconv"
	"strings"
)

// RootID is the arena index of the root node.
const RootID NodeID = 0

// Tree owns every history node in a single arena. Parent and child links are
// arena indices, so navigation works in both directions without cycles.
type Tree struct {
	nodes []node

	// highest log index recorded by any node so far
	maxIndex int
}

// NewTree creates a tree holding only the root node.
func NewTree(title string) *Tree {
	return &Tree{
		nodes: []node{{kind: KindRoot, name: title, parent: NoNode}},
	}
}

// Root returns the root node id.
func (t *Tree) Root() NodeID {
	return RootID
}

// Len returns the number of nodes including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns a snapshot of the node with the given id.
func (t *Tree) Node(id NodeID) (Node, error) {
	n, err := t.get(id)
	if err != nil {
		return Node{}, err
	}
	return n.view(id), nil
}

// Kind returns the kind of id.
func (t *Tree) Kind(id NodeID) (Kind, error) {
	n, err := t.get(id)
	if err != nil {
		return 0, err
	}
	return n.kind, nil
}

// Parent returns the parent of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) (NodeID, error) {
	n, err := t.get(id)
	if err != nil {
		return NoNode, err
	}
	return n.parent, nil
}

// Children returns the children of id in insertion order.
func (t *Tree) Children(id NodeID) ([]NodeID, error) {
	n, err := t.get(id)
	if err != nil {
		return nil, err
	}
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out, nil
}

// LastNode descends from the root through the most recently added child
// until it reaches a childless node: the latest point in recorded history.
func (t *Tree) LastNode() NodeID {
	id := RootID
	for {
		children := t.nodes[id].children
		if len(children) == 0 {
			return id
		}
		id = children[len(children)-1]
	}
}

// Add attaches a new node under parent. start is the current log length and
// is ignored for kinds that carry no index. Events start open.
func (t *Tree) Add(parent NodeID, kind Kind, name string, start int) (NodeID, error) {
	p, err := t.get(parent)
	if err != nil {
		return NoNode, err
	}
	if !allowedParent(p.kind, kind) {
		return NoNode, fmt.Errorf("add %s under %s %d: %w", kind, p.kind, parent, ErrInvalidParent)
	}
	n := node{kind: kind, name: name, parent: parent}
	if kind.Indexed() {
		if start < t.maxIndex {
			return NoNode, fmt.Errorf("add %s at index %d after %d: %w", kind, start, t.maxIndex, ErrIndexRegression)
		}
		n.start = start
		t.maxIndex = start
	}
	if kind == KindEvent {
		n.end = OpenEnd()
	}

	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id, nil
}

// AddDetail attaches an event detail carrying text under an event or another detail.
func (t *Tree) AddDetail(parent NodeID, name, text string) (NodeID, error) {
	id, err := t.Add(parent, KindEventDetail, name, 0)
	if err != nil {
		return NoNode, err
	}
	t.nodes[id].text = text
	return id, nil
}

// Close fixes the end index of an open event. The transition happens once.
func (t *Tree) Close(id NodeID, end int) error {
	n, err := t.get(id)
	if err != nil {
		return err
	}
	if n.kind != KindEvent {
		return fmt.Errorf("close %s %d: %w", n.kind, id, ErrNotEvent)
	}
	if _, closed := n.end.Closed(); closed {
		return fmt.Errorf("close event %d: %w", id, ErrEventClosed)
	}
	if end < n.start || end < t.maxIndex {
		return fmt.Errorf("close event %d at %d: %w", id, end, ErrIndexRegression)
	}
	n.end = ClosedAt(end)
	t.maxIndex = end
	return nil
}

// EnclosingEvent returns the nearest event at or above id. The walk is
// bounded by tree depth.
func (t *Tree) EnclosingEvent(id NodeID) (NodeID, error) {
	for cur := id; cur != NoNode; {
		n, err := t.get(cur)
		if err != nil {
			return NoNode, err
		}
		if n.kind == KindEvent {
			return cur, nil
		}
		if n.kind != KindEventDetail {
			break
		}
		cur = n.parent
	}
	return NoNode, fmt.Errorf("node %d has no enclosing event: %w", id, ErrInvalidNodeVariant)
}

// Path returns the ids from the root down to id, inclusive.
func (t *Tree) Path(id NodeID) ([]NodeID, error) {
	if _, err := t.get(id); err != nil {
		return nil, err
	}
	var path []NodeID
	for cur := id; cur != NoNode; cur = t.nodes[cur].parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Find resolves a node expression: "root", "last", "#<id>", or a
// slash-separated list of child positions from the root such as "0/2/1".
func (t *Tree) Find(expr string) (NodeID, error) {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == "" || expr == "root" || expr == "/":
		return RootID, nil
	case expr == "last":
		return t.LastNode(), nil
	case strings.HasPrefix(expr, "#"):
		v, err := strconv.Atoi(expr[1:])
		if err != nil {
			return NoNode, fmt.Errorf("parse %q: %w", expr, ErrInvalidPath)
		}
		if _, err := t.get(NodeID(v)); err != nil {
			return NoNode, err
		}
		return NodeID(v), nil
	}

	cur := RootID
	for _, part := range strings.Split(strings.Trim(expr, "/"), "/") {
		pos, err := strconv.Atoi(part)
		if err != nil {
			return NoNode, fmt.Errorf("parse %q: %w", expr, ErrInvalidPath)
		}
		children := t.nodes[cur].children
		if pos < 0 || pos >= len(children) {
			return NoNode, fmt.Errorf("position %d under node %d: %w", pos, cur, ErrInvalidPath)
		}
		cur = children[pos]
	}
	return cur, nil
}

// Walk visits every node in pre-order with its depth below the root.
// Returning an error from fn stops the walk.
func (t *Tree) Walk(fn func(id NodeID, depth int) error) error {
	return t.walk(RootID, 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) error) error {
	if err := fn(id, depth); err != nil {
		return err
	}
	for _, child := range t.nodes[id].children {
		if err := t.walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) get(id NodeID) (*node, error) {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil, fmt.Errorf("node %d: %w", id, ErrNodeNotFound)
	}
	return &t.nodes[id], nil
}
