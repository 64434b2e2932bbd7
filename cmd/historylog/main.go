// Package main provides the historylog CLI for inspecting recorded game histories.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gamehistory/internal/config"
	"gamehistory/internal/format"
	"gamehistory/internal/game"
	"gamehistory/internal/history"
	"gamehistory/internal/script"
	"gamehistory/internal/store"
	"gamehistory/internal/view"

	"github.com/spf13/cobra"
)

var version = "dev"

var logLevel string

var rootCmd = &cobra.Command{
	Use:     "historylog",
	Short:   "Browse recorded game histories and jump between points in them",
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn, or error (env: HISTORYLOG_LOG_LEVEL, default: warn)")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newTreeCmd())
	rootCmd.AddCommand(newDeltaCmd())
	rootCmd.AddCommand(newSeekCmd())
	rootCmd.AddCommand(newInfoCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "historylog: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the environment config and builds a logger on the command's
// error stream. The --log-level flag wins over HISTORYLOG_LOG_LEVEL.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger, err := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newListCmd() *cobra.Command {
	var (
		title        string
		afterStr     string
		beforeStr    string
		limit        int
		formatFlag   string
		noHeader     bool
		summaryWidth int
		sessionsDir  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded sessions in reverse chronological order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if sessionsDir == "" {
				sessionsDir = cfg.SessionsDir
			}
			if formatFlag == "" {
				formatFlag = cfg.Format
			}

			var after, before *time.Time
			if afterStr != "" {
				t, err := time.Parse(time.RFC3339, afterStr)
				if err != nil {
					return fmt.Errorf("invalid --after value: %w", err)
				}
				after = &t
			}
			if beforeStr != "" {
				t, err := time.Parse(time.RFC3339, beforeStr)
				if err != nil {
					return fmt.Errorf("invalid --before value: %w", err)
				}
				before = &t
			}

			logger.Debug("listing sessions", "dir", sessionsDir)
			result, err := store.ListSessions(store.ListOptions{
				Root:       sessionsDir,
				Title:      title,
				After:      after,
				Before:     before,
				Limit:      limit,
				MaxSummary: summaryWidth,
				Logger:     logger,
			})
			if err != nil {
				return err
			}

			errs := cmd.ErrOrStderr()
			for _, warn := range result.Warnings {
				fmt.Fprintf(errs, "warning: %v\n", warn)
			}

			return format.WriteSummaries(cmd.OutOrStdout(), result.Summaries, !noHeader, strings.ToLower(formatFlag))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&title, "title", "", "only include sessions whose title contains the given text")
	flags.StringVar(&afterStr, "after", "", "include sessions starting on/after the given RFC3339 timestamp")
	flags.StringVar(&beforeStr, "before", "", "include sessions starting on/before the given RFC3339 timestamp")
	flags.IntVar(&limit, "limit", 0, "limit number of sessions returned (0 means no limit)")
	flags.StringVar(&formatFlag, "format", "", "output format: table, plain, json, or jsonl (env: HISTORYLOG_FORMAT)")
	flags.BoolVar(&noHeader, "no-header", false, "omit header row for table and plain output")
	flags.IntVar(&summaryWidth, "summary-width", 60, "maximum characters included in the summary column")
	flags.StringVar(&sessionsDir, "sessions-dir", "", "override the sessions directory (env: HISTORYLOG_SESSIONS_DIR)")

	return cmd
}

func newTreeCmd() *cobra.Command {
	var (
		from         string
		depth        int
		width        int
		details      bool
		forceColor   bool
		forceNoColor bool
		pager        bool
		sessionsDir  string
	)

	cmd := &cobra.Command{
		Use:   "tree <session-id-or-path>",
		Short: "Render the round/step/event tree with effective log indices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if forceColor && forceNoColor {
				return errors.New("--color and --no-color cannot be used together")
			}
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			sess, err := loadSession(args[0], sessionsDir, cfg, logger)
			if err != nil {
				return err
			}

			switch {
			case forceColor, forceNoColor:
			case cfg.Color == config.ColorAlways:
				forceColor = true
			case cfg.Color == config.ColorNever:
				forceNoColor = true
			}

			out := cmd.OutOrStdout()
			outFile, _ := out.(*os.File)
			return view.Run(view.Options{
				History:      sess.History,
				From:         from,
				MaxDepth:     depth,
				Width:        width,
				Details:      details,
				ForceColor:   forceColor,
				ForceNoColor: forceNoColor,
				Pager:        pager,
				Out:          out,
				OutFile:      outFile,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&from, "from", "", "render only the subtree at this node (e.g. 0/1, #5, last)")
	flags.IntVar(&depth, "depth", 0, "maximum depth below the starting node (0 means unlimited)")
	flags.IntVar(&width, "width", 0, "clip lines to this many columns (0 detects the terminal width)")
	flags.BoolVar(&details, "details", false, "include event detail text")
	flags.BoolVar(&forceColor, "color", false, "force colored output")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable colored output")
	flags.BoolVar(&pager, "pager", false, "page output through $PAGER when writing to a terminal")
	flags.StringVar(&sessionsDir, "sessions-dir", "", "override the sessions directory (env: HISTORYLOG_SESSIONS_DIR)")

	return cmd
}

func newDeltaCmd() *cobra.Command {
	var (
		fromArg     string
		toArg       string
		formatFlag  string
		sessionsDir string
	)

	cmd := &cobra.Command{
		Use:   "delta <session-id-or-path>",
		Short: "Show the changes that move state from one node to another",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if formatFlag == "" {
				formatFlag = cfg.Format
			}
			sess, err := loadSession(args[0], sessionsDir, cfg, logger)
			if err != nil {
				return err
			}

			h := sess.History
			from, err := findNode(h, "--from", fromArg)
			if err != nil {
				return err
			}
			to, err := findNode(h, "--to", toArg)
			if err != nil {
				return err
			}

			span, err := h.Span(from, to)
			if err != nil {
				return err
			}
			delta, err := h.Delta(from, to)
			if err != nil {
				return err
			}

			return format.WriteDelta(cmd.OutOrStdout(), format.DeltaReport{
				From:  nodeRef(h, from),
				To:    nodeRef(h, to),
				Span:  span,
				Delta: delta,
			}, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&fromArg, "from", "root", "starting node (root, last, #id, or a child-index path like 0/1/2)")
	flags.StringVar(&toArg, "to", "last", "target node")
	flags.StringVar(&formatFlag, "format", "", "output format: table, plain, or json (env: HISTORYLOG_FORMAT)")
	flags.StringVar(&sessionsDir, "sessions-dir", "", "override the sessions directory (env: HISTORYLOG_SESSIONS_DIR)")

	return cmd
}

func newSeekCmd() *cobra.Command {
	var (
		toArg       string
		formatFlag  string
		sessionsDir string
	)

	cmd := &cobra.Command{
		Use:   "seek <session-id-or-path>",
		Short: "Replay from the start of the game to a node and print the resulting state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			if formatFlag == "" {
				formatFlag = cfg.Format
			}
			sess, err := loadSession(args[0], sessionsDir, cfg, logger)
			if err != nil {
				return err
			}

			h := sess.History
			to, err := findNode(h, "--to", toArg)
			if err != nil {
				return err
			}

			state := game.NewState()
			if err := h.Seek(state, h.Root(), to); err != nil {
				return err
			}
			logger.Debug("seek complete", "to", to, "counters", len(state.Counters), "properties", len(state.Properties))
			return format.WriteState(cmd.OutOrStdout(), state, formatFlag)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&toArg, "to", "last", "target node (root, last, #id, or a child-index path like 0/1/2)")
	flags.StringVar(&formatFlag, "format", "", "output format: table, plain, or json (env: HISTORYLOG_FORMAT)")
	flags.StringVar(&sessionsDir, "sessions-dir", "", "override the sessions directory (env: HISTORYLOG_SESSIONS_DIR)")

	return cmd
}

type infoPayload struct {
	SessionID       string `json:"session_id"`
	Title           string `json:"title"`
	Path            string `json:"path"`
	StartedAt       string `json:"started_at,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
	DurationDisplay string `json:"duration_display"`
	Records         int    `json:"records"`
	Nodes           int    `json:"nodes"`
	Rounds          int    `json:"rounds"`
	Events          int    `json:"events"`
	Changes         int    `json:"changes"`
	LastNode        string `json:"last_node"`
	Summary         string `json:"summary"`
}

func newInfoCmd() *cobra.Command {
	var (
		formatFlag  string
		sessionsDir string
	)

	cmd := &cobra.Command{
		Use:   "info <session-id-or-path>",
		Short: "Show session metadata and history counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			sess, err := loadSession(args[0], sessionsDir, cfg, logger)
			if err != nil {
				return err
			}

			summary := store.Summarize(sess)
			payload := infoPayload{
				SessionID:       summary.ID,
				Title:           summary.Title,
				Path:            summary.Path,
				DurationSeconds: summary.DurationSeconds,
				DurationDisplay: formatDuration(summary.DurationSeconds),
				Records:         sess.Records,
				Nodes:           sess.History.Tree().Len(),
				Rounds:          summary.Rounds,
				Events:          summary.Events,
				Changes:         summary.Changes,
				LastNode:        nodeRef(sess.History, sess.History.LastNode()),
				Summary:         summary.Summary,
			}
			if !summary.StartedAt.IsZero() {
				payload.StartedAt = summary.StartedAt.Format(time.RFC3339)
			}

			switch strings.ToLower(formatFlag) {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(payload)
			case "", "text":
				renderInfoText(cmd.OutOrStdout(), payload)
				return nil
			default:
				return fmt.Errorf("unsupported format: %s", formatFlag)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "text", "output format: text or json")
	flags.StringVar(&sessionsDir, "sessions-dir", "", "override the sessions directory (env: HISTORYLOG_SESSIONS_DIR)")

	return cmd
}

func loadSession(arg, sessionsDir string, cfg config.Config, logger *slog.Logger) (*script.Session, error) {
	if sessionsDir == "" {
		sessionsDir = cfg.SessionsDir
	}
	path, err := resolveSessionPath(arg, sessionsDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("loading session", "path", path)
	return script.Load(path, logger)
}

func resolveSessionPath(arg, root string) (string, error) {
	if arg == "" {
		return "", errors.New("session identifier is empty")
	}

	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		return arg, nil
	}

	candidate := filepath.Join(root, arg)
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate, nil
	}

	return store.FindSessionPath(root, arg)
}

func findNode(h *history.History, flag, expr string) (history.NodeID, error) {
	id, err := h.Tree().Find(expr)
	if err != nil {
		return history.NoNode, fmt.Errorf("invalid %s value: %w", flag, err)
	}
	return id, nil
}

// nodeRef names a node as "#id name" for headings.
func nodeRef(h *history.History, id history.NodeID) string {
	n, err := h.Tree().Node(id)
	if err != nil {
		return fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("#%d %s", id, n.Name)
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "00:00:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func renderInfoText(out io.Writer, payload infoPayload) {
	const labelWidth = 12
	startedAt := payload.StartedAt
	if startedAt == "" {
		startedAt = "-"
	}
	writeKV(out, labelWidth, "Session ID", payload.SessionID)
	writeKV(out, labelWidth, "Title", payload.Title)
	writeKV(out, labelWidth, "Started At", startedAt)
	writeKV(out, labelWidth, "Duration", payload.DurationDisplay)
	writeKV(out, labelWidth, "Rounds", fmt.Sprintf("%d", payload.Rounds))
	writeKV(out, labelWidth, "Events", fmt.Sprintf("%d", payload.Events))
	writeKV(out, labelWidth, "Changes", fmt.Sprintf("%d", payload.Changes))
	writeKV(out, labelWidth, "Nodes", fmt.Sprintf("%d", payload.Nodes))
	writeKV(out, labelWidth, "Records", fmt.Sprintf("%d", payload.Records))
	writeKV(out, labelWidth, "Last Node", payload.LastNode)
	writeKV(out, labelWidth, "Path", payload.Path)
	writeKV(out, labelWidth, "Summary", payload.Summary)
}

func writeKV(out io.Writer, width int, label string, value string) {
	fmt.Fprintf(out, "%-*s: %s\n", width, label, value) //nolint:errcheck
}
