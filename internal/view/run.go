// Package view renders a replayed session history for the terminal.
package view

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"gamehistory/internal/history"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Options defines the configurable parameters for rendering a tree view.
type Options struct {
	History      *history.History
	From         string // node expression for the subtree root; empty means root
	MaxDepth     int    // 0 renders every level
	Width        int    // 0 detects the terminal width
	Details      bool   // include event detail text
	ForceColor   bool
	ForceNoColor bool
	Pager        bool
	Out          io.Writer
	OutFile      *os.File
}

// Run renders the history tree according to the provided options.
func Run(opts Options) error {
	if opts.History == nil {
		return errors.New("history is required")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.MaxDepth < 0 {
		return fmt.Errorf("invalid max depth: %d", opts.MaxDepth)
	}

	start := opts.History.Root()
	if opts.From != "" {
		id, err := opts.History.Tree().Find(opts.From)
		if err != nil {
			return err
		}
		start = id
	}

	r := treeRenderer{
		h:        opts.History,
		width:    determineWidth(opts.OutFile, opts.Width),
		maxDepth: opts.MaxDepth,
		details:  opts.Details,
		color:    resolveColorChoice(opts),
	}
	lines, err := r.render(start)
	if err != nil {
		return err
	}

	if opts.Pager && opts.OutFile != nil && isatty.IsTerminal(opts.OutFile.Fd()) {
		return pipeThroughPager(opts.OutFile, lines, r.color)
	}
	return writeLines(opts.Out, lines)
}

func determineWidth(out *os.File, width int) int {
	if width > 0 {
		return width
	}
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
		if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
			return v
		}
	}
	return 80
}

func pipeThroughPager(out *os.File, lines []string, colorEnabled bool) error {
	text := strings.Join(lines, "\n")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	pagerCmd := os.Getenv("PAGER")
	var cmd *exec.Cmd
	if pagerCmd == "" {
		args := []string{"less"}
		if colorEnabled {
			args = append(args, "-R")
		}
		cmd = exec.Command(args[0], args[1:]...) // #nosec G204
	} else {
		cmd = exec.Command("sh", "-c", pagerCmd) // #nosec G204
	}

	cmd.Stdout = out
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create pager pipe: %w", err)
	}
	go func() {
		defer stdin.Close()
		io.WriteString(stdin, text) //nolint:errcheck
	}()

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run pager: %w", err)
	}

	return nil
}

func writeLines(out io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

const (
	ansiReset     = "\x1b[0m"
	ansiBoldWhite = "\x1b[1;97m"
	ansiTimestamp = "\x1b[38;5;245m"
	ansiSeparator = "\x1b[38;5;240m"
	ansiEvent     = "\x1b[38;5;44m"
	ansiOpen      = "\x1b[38;5;220m"
	ansiStep      = "\x1b[38;5;207m"
)

func colorize(enabled bool, code string, text string) string {
	if !enabled {
		return text
	}
	return code + text + ansiReset
}

func kindColor(n history.Node) string {
	switch n.Kind {
	case history.KindRoot, history.KindRound:
		return ansiBoldWhite
	case history.KindStep:
		return ansiStep
	case history.KindEvent:
		if _, closed := n.End.Closed(); !closed {
			return ansiOpen
		}
		return ansiEvent
	default:
		return ansiTimestamp
	}
}

func resolveColorChoice(opts Options) bool {
	if opts.ForceColor {
		return true
	}
	if opts.ForceNoColor {
		return false
	}
	return shouldUseColorAuto(opts.Out)
}

func shouldUseColorAuto(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
