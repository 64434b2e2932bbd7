package script

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"gamehistory/internal/game"
	"gamehistory/internal/history"
)

var errStop = errors.New("stop iteration")

// Meta describes a recorded session.
type Meta struct {
	ID        string
	Title     string
	Path      string
	StartedAt time.Time
}

// Session is a fully replayed script.
type Session struct {
	Meta    Meta
	History *history.History
	State   *game.State

	// Records counts decoded records; LastTimestamp is the latest seen.
	Records       int
	LastTimestamp time.Time
}

// IterateRecords decodes the script at path, picking the decoder from the
// file extension, and calls fn for each record.
func IterateRecords(path string, fn func(Record) error) error {
	format, ok := FormatForPath(path)
	if !ok {
		return fmt.Errorf("%s: %w", filepath.Ext(path), ErrUnknownFormat)
	}
	dec, err := NewDecoder(format)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer file.Close() //nolint:errcheck

	return dec.Decode(file, fn)
}

// ReadSessionMeta loads metadata from the leading session record in path.
// Scripts without a session id get a stable one derived from their path.
func ReadSessionMeta(path string) (*Meta, error) {
	var meta *Meta
	sawRecord := false
	err := IterateRecords(path, func(rec Record) error {
		sawRecord = true
		if rec.Type == RecordSession {
			meta = &Meta{ID: rec.ID, Title: rec.Title, StartedAt: rec.Timestamp}
		}
		return errStop
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, err
	}
	if !sawRecord {
		return nil, ErrSessionMetaNotFound
	}
	if meta == nil {
		meta = &Meta{}
	}
	meta.Path = path
	if meta.ID == "" {
		meta.ID = derivedID(path)
	}
	if meta.Title == "" {
		meta.Title = "Game History"
	}
	return meta, nil
}

func derivedID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs)).String()
}

// Load replays the script at path through a history writer and returns the
// rebuilt session. The final event, if any, is left open.
func Load(path string, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	meta, err := ReadSessionMeta(path)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		Meta:    *meta,
		History: history.New(meta.Title, logger),
		State:   game.NewState(),
	}
	w := sess.History.Writer()

	err = IterateRecords(path, func(rec Record) error {
		sess.Records++
		if rec.Timestamp.After(sess.LastTimestamp) {
			sess.LastTimestamp = rec.Timestamp
		}
		if err := apply(w, sess.State, rec); err != nil {
			return fmt.Errorf("record %d (%s): %w", rec.Line, rec.Type, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	logger.Debug("session loaded",
		"id", sess.Meta.ID,
		"records", sess.Records,
		"nodes", sess.History.Tree().Len(),
		"changes", sess.History.Log().Len())
	return sess, nil
}

func apply(w *history.Writer, state *game.State, rec Record) error {
	var err error
	switch rec.Type {
	case RecordSession:
	case RecordRound:
		_, err = w.StartRound(rec.Name)
	case RecordStep:
		_, err = w.StartStep(rec.Name)
	case RecordEvent:
		_, err = w.StartEvent(rec.Name)
	case RecordDetail:
		_, err = w.AddDetail(rec.Name, rec.Text)
	case RecordAdjust:
		_, err = w.AddChange(state, game.Adjust{Key: rec.Key, Delta: rec.Delta})
	case RecordSet:
		_, err = w.AddChange(state, game.SetProperty{Key: rec.Key, Old: state.Properties[rec.Key], New: rec.Value})
	default:
		err = ErrUnknownRecord
	}
	return err
}
