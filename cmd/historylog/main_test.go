package main

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func sessionsDir() string {
	return filepath.Join("..", "..", "testdata", "sessions")
}

func runCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HISTORYLOG_COLOR", "never")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append(args, "--sessions-dir", sessionsDir()))
	err := cmd.Execute()
	return buf.String(), err
}

func TestListCommandPlain(t *testing.T) {
	out, err := runCommand(t, newListCmd(), "--format", "plain", "--no-header")
	if err != nil {
		t.Fatalf("list command failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 sessions, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "2025-11-02T08:00:00Z\tskirmish\tSkirmish\t") {
		t.Fatalf("newest session should come first: %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "-\t") {
		t.Fatalf("untimed session should come last: %q", lines[2])
	}
}

func TestListCommandRejectsBadTimestamp(t *testing.T) {
	if _, err := runCommand(t, newListCmd(), "--after", "yesterday"); err == nil {
		t.Fatal("expected error for invalid --after")
	}
}

func TestTreeCommand(t *testing.T) {
	out, err := runCommand(t, newTreeCmd(), "classic-1942", "--width", "200")
	if err != nil {
		t.Fatalf("tree command failed: %v", err)
	}
	if !strings.HasPrefix(out, "#0 Classic 1942 @0\n") {
		t.Fatalf("unexpected tree root line:\n%s", out)
	}
	if !strings.Contains(out, "#9 event: Germany buys 2 tanks [4, 6) open") {
		t.Fatalf("open event missing from tree:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("HISTORYLOG_COLOR=never should disable color:\n%q", out)
	}
}

func TestTreeCommandByPath(t *testing.T) {
	path := filepath.Join(sessionsDir(), "skirmish.yaml")
	out, err := runCommand(t, newTreeCmd(), path, "--width", "200")
	if err != nil {
		t.Fatalf("tree command failed: %v", err)
	}
	if !strings.Contains(out, "step: Step @0") {
		t.Fatalf("implicit step missing:\n%s", out)
	}
}

func TestDeltaCommandBackward(t *testing.T) {
	out, err := runCommand(t, newDeltaCmd(), "classic-1942", "--from", "last", "--to", "1", "--format", "plain")
	if err != nil {
		t.Fatalf("delta command failed: %v", err)
	}
	want := "direction\tbackward\nrange\t4\t6\nGermany/ipc +10\nGermany/armour -2\n"
	if out != want {
		t.Fatalf("delta output mismatch\nwant: %q\ngot:  %q", want, out)
	}
}

func TestDeltaCommandJSON(t *testing.T) {
	out, err := runCommand(t, newDeltaCmd(), "classic-1942", "--from", "0", "--to", "0/0/0", "--format", "json")
	if err != nil {
		t.Fatalf("delta command failed: %v", err)
	}
	var decoded struct {
		From      string   `json:"from"`
		Direction string   `json:"direction"`
		Changes   []string `json:"changes"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if decoded.From != "#1 Round 1" || decoded.Direction != "forward" || len(decoded.Changes) != 2 {
		t.Fatalf("unexpected delta: %+v", decoded)
	}
}

func TestDeltaCommandInvalidNode(t *testing.T) {
	_, err := runCommand(t, newDeltaCmd(), "classic-1942", "--from", "5/5")
	if err == nil || !strings.Contains(err.Error(), "invalid --from value") {
		t.Fatalf("expected invalid --from error, got %v", err)
	}
}

func TestSeekCommand(t *testing.T) {
	out, err := runCommand(t, newSeekCmd(), "classic-1942", "--to", "0/1", "--format", "plain")
	if err != nil {
		t.Fatalf("seek command failed: %v", err)
	}
	if out != "Russia/infantry\t8\nRussia/ipc\t-24\n" {
		t.Fatalf("unexpected state after seek: %q", out)
	}
}

func TestInfoCommandJSON(t *testing.T) {
	out, err := runCommand(t, newInfoCmd(), "classic-1942", "--format", "json")
	if err != nil {
		t.Fatalf("info command failed: %v", err)
	}
	var payload infoPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if payload.Rounds != 2 || payload.Events != 3 || payload.Changes != 6 || payload.Nodes != 10 {
		t.Fatalf("unexpected counts: %+v", payload)
	}
	if payload.LastNode != "#9 Germany buys 2 tanks" || payload.DurationDisplay != "00:30:00" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestInfoCommandText(t *testing.T) {
	out, err := runCommand(t, newInfoCmd(), "skirmish")
	if err != nil {
		t.Fatalf("info command failed: %v", err)
	}
	if !strings.Contains(out, "Session ID  : skirmish\n") || !strings.Contains(out, "Summary     : Scout moves\n") {
		t.Fatalf("unexpected info text:\n%s", out)
	}
}

func TestResolveSessionPathUnknown(t *testing.T) {
	if _, err := resolveSessionPath("", sessionsDir()); err == nil {
		t.Fatal("expected error for empty identifier")
	}
	if _, err := resolveSessionPath("missing-session", sessionsDir()); err == nil {
		t.Fatal("expected error for unknown session")
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(3725); got != "01:02:05" {
		t.Fatalf("formatDuration unexpected result: %q", got)
	}
	if got := formatDuration(-1); got != "00:00:00" {
		t.Fatalf("negative durations should render as zero: %q", got)
	}
}
