// Package store provides session enumeration and lookup over a directory of
// recorded session scripts.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gamehistory/internal/history"
	"gamehistory/internal/script"
)

var errStop = errors.New("stop iteration")

// SessionSummary holds lightweight information about a recorded session.
type SessionSummary struct {
	ID              string
	Path            string
	Title           string
	StartedAt       time.Time
	Summary         string // name of the first event
	Rounds          int
	Events          int
	Changes         int
	DurationSeconds int
}

// ListOptions controls how sessions are enumerated.
type ListOptions struct {
	Root       string
	Title      string // case-insensitive substring match
	After      *time.Time
	Before     *time.Time
	Limit      int
	MaxSummary int
	Logger     *slog.Logger
}

// ListResult contains session summaries and non-fatal warnings.
type ListResult struct {
	Summaries []SessionSummary
	Warnings  []error
}

// ListSessions enumerates scripts under Root according to options, newest first.
func ListSessions(opts ListOptions) (ListResult, error) {
	root := opts.Root
	if root == "" {
		return ListResult{}, errors.New("root directory is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var result ListResult

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("walk %s: %w", path, walkErr))
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := script.FormatForPath(path); !ok {
			return nil
		}

		meta, err := script.ReadSessionMeta(path)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("parse meta %s: %w", path, err))
			return nil
		}

		if opts.Title != "" && !strings.Contains(strings.ToLower(meta.Title), strings.ToLower(opts.Title)) {
			return nil
		}
		if opts.After != nil && meta.StartedAt.Before(*opts.After) {
			return nil
		}
		if opts.Before != nil && meta.StartedAt.After(*opts.Before) {
			return nil
		}

		sess, err := script.Load(path, logger)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Errorf("load %s: %w", path, err))
			return nil
		}

		summary := Summarize(sess)
		if opts.MaxSummary > 0 {
			summary.Summary = truncate(summary.Summary, opts.MaxSummary)
		}
		result.Summaries = append(result.Summaries, summary)
		return nil
	})
	if err != nil {
		return result, err
	}

	sort.SliceStable(result.Summaries, func(i, j int) bool {
		return result.Summaries[i].StartedAt.After(result.Summaries[j].StartedAt)
	})

	if opts.Limit > 0 && len(result.Summaries) > opts.Limit {
		result.Summaries = result.Summaries[:opts.Limit]
	}

	return result, nil
}

// Summarize counts rounds and events and picks the first event name.
func Summarize(sess *script.Session) SessionSummary {
	s := SessionSummary{
		ID:              sess.Meta.ID,
		Path:            sess.Meta.Path,
		Title:           sess.Meta.Title,
		StartedAt:       sess.Meta.StartedAt,
		Changes:         sess.History.Log().Len(),
		DurationSeconds: durationSeconds(sess.Meta.StartedAt, sess.LastTimestamp),
	}
	tree := sess.History.Tree()
	_ = tree.Walk(func(id history.NodeID, _ int) error {
		n, err := tree.Node(id)
		if err != nil {
			return err
		}
		switch n.Kind {
		case history.KindRound:
			s.Rounds++
		case history.KindEvent:
			s.Events++
			if s.Summary == "" {
				s.Summary = n.Name
			}
		}
		return nil
	})
	return s
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}

// FindSessionPath searches root for a script whose session id matches id.
func FindSessionPath(root, id string) (string, error) {
	if root == "" {
		return "", errors.New("root directory is required")
	}
	if id == "" {
		return "", errors.New("session id is required")
	}

	var matched string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := script.FormatForPath(path); !ok {
			return nil
		}
		meta, err := script.ReadSessionMeta(path)
		if err != nil {
			return nil
		}
		if meta.ID == id {
			matched = path
			return errStop
		}
		return nil
	})

	if matched != "" {
		return matched, nil
	}
	if err != nil && !errors.Is(err, errStop) {
		return "", err
	}
	return "", fmt.Errorf("session id %s not found under %s", id, root)
}

func durationSeconds(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Seconds())
}
