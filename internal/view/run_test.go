package view

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"gamehistory/internal/script"
)

func loadClassic(t *testing.T) *script.Session {
	t.Helper()
	sess, err := script.Load(filepath.Join("..", "..", "testdata", "sessions", "classic.jsonl"), nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return sess
}

func TestRunRendersTree(t *testing.T) {
	sess := loadClassic(t)
	var buf bytes.Buffer
	opts := Options{History: sess.History, Width: 200, ForceNoColor: true, Out: &buf}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	want := strings.Join([]string{
		"#0 Classic 1942 @0",
		"├─ #1 round: Round 1 @0",
		"│  ├─ #2 step: Russia Purchase @0",
		"│  │  └─ #3 event: Russia buys 8 infantry [0, 2)",
		"│  │     └─ #4 detail: purchase @2",
		"│  └─ #5 step: Russia Combat Move @2",
		"│     └─ #6 event: Russia attacks Ukraine [2, 4)",
		"└─ #7 round: Round 2 @4",
		"   └─ #8 step: Germany Purchase @4",
		"      └─ #9 event: Germany buys 2 tanks [4, 6) open",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Fatalf("tree output mismatch\nwant:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestRunDetailsAndDepth(t *testing.T) {
	sess := loadClassic(t)

	var buf bytes.Buffer
	opts := Options{History: sess.History, Width: 200, Details: true, ForceNoColor: true, Out: &buf}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "│  │          8 infantry for 24 IPC\n") {
		t.Fatalf("expected detail text under its node:\n%s", buf.String())
	}

	buf.Reset()
	opts = Options{History: sess.History, Width: 200, MaxDepth: 1, ForceNoColor: true, Out: &buf}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected root and two rounds, got %v", lines)
	}
}

func TestRunFromSubtree(t *testing.T) {
	sess := loadClassic(t)
	var buf bytes.Buffer
	opts := Options{History: sess.History, From: "1", Width: 200, ForceNoColor: true, Out: &buf}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "#7 round: Round 2 @4\n") {
		t.Fatalf("subtree should start at round 2:\n%s", buf.String())
	}

	opts.From = "9/9"
	if err := Run(opts); err == nil {
		t.Fatal("expected error for unknown node path")
	}
}

func TestRunClipsToWidth(t *testing.T) {
	sess := loadClassic(t)
	var buf bytes.Buffer
	opts := Options{History: sess.History, Width: 20, ForceNoColor: true, Out: &buf}
	if err := Run(opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if w := visibleWidth(line); w > 20 {
			t.Fatalf("line wider than 20 cells (%d): %q", w, line)
		}
	}
	if !strings.Contains(buf.String(), "…") {
		t.Fatalf("expected clipped labels:\n%s", buf.String())
	}
}

func TestRunForceColor(t *testing.T) {
	sess := loadClassic(t)
	var buf bytes.Buffer
	if err := Run(Options{History: sess.History, Width: 200, ForceColor: true, Out: &buf}); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !strings.Contains(buf.String(), ansiOpen) {
		t.Fatalf("open event should be highlighted: %q", buf.String())
	}
}

func TestTruncateToWidthKeepsEscapes(t *testing.T) {
	colored := colorize(true, ansiEvent, "abcdefghij")
	got := truncateToWidth(colored, 4)
	if visibleWidth(got) != 4 {
		t.Fatalf("expected 4 visible cells, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("truncated colored text should be reset: %q", got)
	}
}

func TestShouldUseColorAutoRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if shouldUseColorAuto(&bytes.Buffer{}) {
		t.Fatal("NO_COLOR should disable color")
	}
}
