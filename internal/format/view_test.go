package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gamehistory/internal/change"
	"gamehistory/internal/game"
	"gamehistory/internal/history"
)

func TestNodeLabel(t *testing.T) {
	open := history.Node{Kind: history.KindEvent, Name: "March", StartIndex: 4, End: history.OpenEnd()}
	if got := NodeLabel(open, 6); got != "event: March [4, 6) open" {
		t.Fatalf("unexpected open event label: %q", got)
	}

	closed := history.Node{Kind: history.KindEvent, Name: "Buy", StartIndex: 0, End: history.ClosedAt(2)}
	if got := NodeLabel(closed, 2); got != "event: Buy [0, 2)" {
		t.Fatalf("unexpected closed event label: %q", got)
	}

	round := history.Node{Kind: history.KindRound, Name: "Round 2", StartIndex: 4}
	if got := NodeLabel(round, 4); got != "round: Round 2 @4" {
		t.Fatalf("unexpected round label: %q", got)
	}
}

func TestRenderNodeLinesWrapsDetailText(t *testing.T) {
	detail := history.Node{Kind: history.KindEventDetail, Name: "note", Text: "one two three four five six"}

	lines := RenderNodeLines(detail, 2, 10)
	if len(lines) < 3 {
		t.Fatalf("expected label plus wrapped lines, got %v", lines)
	}
	if lines[0] != "detail: note @2" {
		t.Fatalf("unexpected label line: %q", lines[0])
	}
	for _, line := range lines[1:] {
		if len(line) > 10 {
			t.Fatalf("line exceeds wrap width: %q", line)
		}
	}
}

func TestChangeLines(t *testing.T) {
	if lines := ChangeLines(change.NoOp); lines != nil {
		t.Fatalf("expected no lines for no-op, got %v", lines)
	}

	comp := change.NewComposite([]change.Change{
		game.Adjust{Key: "Russia/infantry", Delta: 8},
		game.SetProperty{Key: "Ukraine/owner", New: "Russia"},
	})
	lines := ChangeLines(comp.Invert())
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lines)
	}
	if lines[0] != `Ukraine/owner: "Russia" -> ""` || lines[1] != "Russia/infantry -8" {
		t.Fatalf("unexpected inverse lines: %v", lines)
	}
}

func sampleDelta() DeltaReport {
	return DeltaReport{
		From:  "#7",
		To:    "#1",
		Span:  history.Span{From: 4, To: 0},
		Delta: change.NewComposite([]change.Change{game.Adjust{Key: "a", Delta: -1}}),
	}
}

func TestWriteDeltaTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDelta(&buf, sampleDelta(), "table"); err != nil {
		t.Fatalf("WriteDelta returned error: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "#7 -> #1: backward over [0, 4)\n") {
		t.Fatalf("unexpected delta heading:\n%s", out)
	}
	if !strings.Contains(out, "a -1") {
		t.Fatalf("delta table missing change:\n%s", out)
	}
}

func TestWriteDeltaJSON(t *testing.T) {
	var buf bytes.Buffer
	report := DeltaReport{From: "#1", To: "#1", Span: history.Span{From: 2, To: 2}, Delta: change.NoOp}
	if err := WriteDelta(&buf, report, "json"); err != nil {
		t.Fatalf("WriteDelta returned error: %v", err)
	}

	var decoded struct {
		Direction string   `json:"direction"`
		Changes   []string `json:"changes"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if decoded.Direction != "none" || decoded.Changes == nil || len(decoded.Changes) != 0 {
		t.Fatalf("unexpected decoded delta: %+v", decoded)
	}
}

func TestWriteState(t *testing.T) {
	s := game.NewState()
	s.Counters["Russia/infantry"] = 6
	s.Properties["Ukraine/owner"] = "Russia"

	var buf bytes.Buffer
	if err := WriteState(&buf, s, "plain"); err != nil {
		t.Fatalf("WriteState returned error: %v", err)
	}
	if got := buf.String(); got != "Russia/infantry\t6\nUkraine/owner\tRussia\n" {
		t.Fatalf("unexpected plain state: %q", got)
	}

	buf.Reset()
	if err := WriteState(&buf, game.NewState(), "table"); err != nil {
		t.Fatalf("WriteState returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "(empty state)") {
		t.Fatalf("expected empty placeholder:\n%s", buf.String())
	}

	if err := WriteState(&buf, s, "xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
