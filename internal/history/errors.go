package history

import "errors"

// Node errors
var (
	// ErrNodeNotFound indicates that a NodeID does not belong to this tree.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidNodeVariant indicates a node whose kind has no defined
	// effective index. This is a programming error and is never retried.
	ErrInvalidNodeVariant = errors.New("invalid node variant")

	// ErrInvalidParent indicates that a node kind cannot be attached under the given parent.
	ErrInvalidParent = errors.New("invalid parent for node kind")

	// ErrInvalidPath indicates that a node path expression could not be resolved.
	ErrInvalidPath = errors.New("invalid node path")
)

// Event errors
var (
	// ErrNotEvent indicates that an event-only operation was given another kind of node.
	ErrNotEvent = errors.New("node is not an event")

	// ErrEventClosed indicates that an event's end index is already fixed.
	ErrEventClosed = errors.New("event already closed")

	// ErrNoEvent indicates that the writer has no event to attach details to.
	ErrNoEvent = errors.New("no event recorded yet")
)

// Index errors
var (
	// ErrIndexRegression indicates a node recording a smaller log index than
	// a node created before it.
	ErrIndexRegression = errors.New("log index regression")
)
