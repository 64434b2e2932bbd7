package history

import (
	"fmt"

	"gamehistory/internal/change"
)

// Writer records live play: it appends changes to the log and keeps the
// currently open round, step and event in step with it.
type Writer struct {
	h      *History
	round  NodeID
	step   NodeID
	event  NodeID
	rounds int
}

func newWriter(h *History) *Writer {
	return &Writer{h: h, round: NoNode, step: NoNode, event: NoNode}
}

// Current returns the node most recently opened by the writer.
func (w *Writer) Current() NodeID {
	switch {
	case w.event != NoNode:
		return w.event
	case w.step != NoNode:
		return w.step
	case w.round != NoNode:
		return w.round
	default:
		return RootID
	}
}

// StartRound closes any open event and opens a new round under the root.
func (w *Writer) StartRound(name string) (NodeID, error) {
	if err := w.CloseEvent(); err != nil {
		return NoNode, err
	}
	id, err := w.h.tree.Add(RootID, KindRound, name, w.h.log.Len())
	if err != nil {
		return NoNode, err
	}
	w.rounds++
	w.round, w.step, w.event = id, NoNode, NoNode
	w.h.logger.Debug("round started", "node", id, "name", name, "index", w.h.log.Len())
	return id, nil
}

// StartStep closes any open event and opens a step in the current round,
// creating a round first if none exists.
func (w *Writer) StartStep(name string) (NodeID, error) {
	if err := w.CloseEvent(); err != nil {
		return NoNode, err
	}
	if w.round == NoNode {
		if _, err := w.StartRound(fmt.Sprintf("Round %d", w.rounds+1)); err != nil {
			return NoNode, err
		}
	}
	id, err := w.h.tree.Add(w.round, KindStep, name, w.h.log.Len())
	if err != nil {
		return NoNode, err
	}
	w.step, w.event = id, NoNode
	w.h.logger.Debug("step started", "node", id, "name", name, "index", w.h.log.Len())
	return id, nil
}

// StartEvent closes any open event and opens a new one in the current step,
// creating a step first if none exists.
func (w *Writer) StartEvent(name string) (NodeID, error) {
	if err := w.CloseEvent(); err != nil {
		return NoNode, err
	}
	if w.step == NoNode {
		if _, err := w.StartStep("Step"); err != nil {
			return NoNode, err
		}
	}
	id, err := w.h.tree.Add(w.step, KindEvent, name, w.h.log.Len())
	if err != nil {
		return NoNode, err
	}
	w.event = id
	w.h.logger.Debug("event started", "node", id, "name", name, "index", w.h.log.Len())
	return id, nil
}

// AddDetail attaches a detail to the most recent event, open or closed.
func (w *Writer) AddDetail(name, text string) (NodeID, error) {
	if w.event == NoNode {
		return NoNode, ErrNoEvent
	}
	return w.h.tree.AddDetail(w.event, name, text)
}

// AddChange applies c to state and appends it to the log. A change that
// fails to apply is not recorded. A nil state skips application.
func (w *Writer) AddChange(state any, c change.Change) (int, error) {
	if state != nil {
		if err := c.Apply(state); err != nil {
			return 0, fmt.Errorf("apply %s: %w", change.Describe(c), err)
		}
	}
	return w.h.log.Append(c), nil
}

// CloseEvent fixes the current event's end at the current log length.
// It is a no-op when no event is open.
func (w *Writer) CloseEvent() error {
	if w.event == NoNode {
		return nil
	}
	n := &w.h.tree.nodes[w.event]
	if _, closed := n.end.Closed(); closed {
		return nil
	}
	if err := w.h.tree.Close(w.event, w.h.log.Len()); err != nil {
		return err
	}
	w.h.logger.Debug("event closed", "node", w.event, "index", w.h.log.Len())
	return nil
}
