package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gamehistory/internal/change"
	"gamehistory/internal/game"
	"gamehistory/internal/history"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// NodeLabel returns the one-line label for a node resolved to effective.
func NodeLabel(n history.Node, effective int) string {
	switch n.Kind {
	case history.KindRoot:
		return fmt.Sprintf("%s @%d", n.Name, effective)
	case history.KindEvent:
		label := fmt.Sprintf("%s: %s [%d, %d)", n.Kind, n.Name, n.StartIndex, effective)
		if _, closed := n.End.Closed(); !closed {
			label += " open"
		}
		return label
	default:
		return fmt.Sprintf("%s: %s @%d", n.Kind, n.Name, effective)
	}
}

// RenderNodeLines returns the label followed by any detail text, wrapped
// to wrapWidth when positive.
func RenderNodeLines(n history.Node, effective int, wrapWidth int) []string {
	lines := []string{NodeLabel(n, effective)}
	body := strings.TrimSpace(n.Text)
	if body == "" {
		return lines
	}
	for _, para := range strings.Split(body, "\n") {
		lines = append(lines, strings.Split(wrapBody(strings.TrimSpace(para), wrapWidth), "\n")...)
	}
	return lines
}

// ChangeLines describes each atomic change in c, in application order.
func ChangeLines(c change.Change) []string {
	if change.IsNoOp(c) {
		return nil
	}
	comp, ok := c.(*change.Composite)
	if !ok {
		return []string{change.Describe(c)}
	}
	parts := comp.Changes()
	lines := make([]string, 0, len(parts))
	for _, ch := range parts {
		lines = append(lines, change.Describe(ch))
	}
	return lines
}

// DeltaReport is what the delta command prints.
type DeltaReport struct {
	From  string
	To    string
	Span  history.Span
	Delta change.Change
}

// Direction names the way the delta moves through the log.
func (r DeltaReport) Direction() string {
	switch {
	case r.Span.Empty():
		return "none"
	case r.Span.Forward():
		return "forward"
	default:
		return "backward"
	}
}

type deltaJSON struct {
	From      string   `json:"from"`
	To        string   `json:"to"`
	FromIndex int      `json:"from_index"`
	ToIndex   int      `json:"to_index"`
	Direction string   `json:"direction"`
	Changes   []string `json:"changes"`
}

// WriteDelta writes a delta report to w in the requested format.
func WriteDelta(w io.Writer, r DeltaReport, format string) error {
	lines := ChangeLines(r.Delta)
	lo, hi := r.Span.Bounds()
	switch strings.ToLower(format) {
	case "", "table":
		if _, err := fmt.Fprintf(w, "%s -> %s: %s over [%d, %d)\n", r.From, r.To, r.Direction(), lo, hi); err != nil {
			return err
		}
		tw := newTable(w)
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignCenter},
			{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		})
		tw.AppendHeader(table.Row{"#", "Change"})
		for i, line := range lines {
			tw.AppendRow(table.Row{i + 1, line})
		}
		if len(lines) == 0 {
			tw.AppendRow(table.Row{"-", "(no changes)"})
		}
		_ = tw.Render()
		return nil
	case "plain":
		if _, err := fmt.Fprintf(w, "direction\t%s\nrange\t%d\t%d\n", r.Direction(), lo, hi); err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	case "json":
		if lines == nil {
			lines = []string{}
		}
		return writeJSON(w, deltaJSON{
			From:      r.From,
			To:        r.To,
			FromIndex: r.Span.From,
			ToIndex:   r.Span.To,
			Direction: r.Direction(),
			Changes:   lines,
		})
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteState writes the counters and properties of s to w.
func WriteState(w io.Writer, s *game.State, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		tw := newTable(w)
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
			{Number: 2, Align: text.AlignCenter, AlignHeader: text.AlignCenter},
			{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		})
		tw.AppendHeader(table.Row{"Key", "Type", "Value"})
		for _, key := range s.CounterKeys() {
			tw.AppendRow(table.Row{key, "counter", s.Counters[key]})
		}
		for _, key := range s.PropertyKeys() {
			tw.AppendRow(table.Row{key, "property", s.Properties[key]})
		}
		if len(s.Counters)+len(s.Properties) == 0 {
			tw.AppendRow(table.Row{"(empty state)", "-", "-"})
		}
		_ = tw.Render()
		return nil
	case "plain":
		for _, key := range s.CounterKeys() {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", key, strconv.Itoa(s.Counters[key])); err != nil {
				return err
			}
		}
		for _, key := range s.PropertyKeys() {
			if _, err := fmt.Fprintf(w, "%s\t%s\n", key, escapeNewlines(s.Properties[key])); err != nil {
				return err
			}
		}
		return nil
	case "json":
		return writeJSON(w, s)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func wrapBody(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)

	return strings.Join(lines, "\n")
}
