// Package script reads recorded session scripts: ordered writer records that
// rebuild a session's history tree, change log and final game state.
package script

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrSessionMetaNotFound is returned when a script has no records at all.
	ErrSessionMetaNotFound = errors.New("session record not found")

	// ErrUnknownFormat is returned for script formats with no registered decoder.
	ErrUnknownFormat = errors.New("unknown script format")

	// ErrUnknownRecord is returned for records whose type is not recognized.
	ErrUnknownRecord = errors.New("unknown record type")
)

// RecordType captures the "type" field of a script record.
type RecordType string

const (
	RecordSession RecordType = "session"
	RecordRound   RecordType = "round"
	RecordStep    RecordType = "step"
	RecordEvent   RecordType = "event"
	RecordDetail  RecordType = "detail"
	RecordAdjust  RecordType = "adjust"
	RecordSet     RecordType = "set"
)

// Record is one decoded script entry.
type Record struct {
	Line      int
	Type      RecordType
	Timestamp time.Time
	ID        string // session
	Title     string // session
	Name      string // round, step, event, detail
	Text      string // detail
	Key       string // adjust, set
	Delta     int    // adjust
	Value     string // set
	Raw       string
}

// Format names a script encoding.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Decoder streams records from a script encoding.
type Decoder interface {
	// Decode calls fn for each record in order. An error from fn stops decoding.
	Decode(r io.Reader, fn func(Record) error) error
}

// DecoderFactory creates a Decoder.
type DecoderFactory func() Decoder

var decoders = map[Format]DecoderFactory{}

// RegisterDecoder registers the decoder factory for a format.
func RegisterDecoder(format Format, factory DecoderFactory) {
	decoders[format] = factory
}

// NewDecoder creates a decoder for the specified format.
func NewDecoder(format Format) (Decoder, error) {
	factory, ok := decoders[format]
	if !ok || factory == nil {
		return nil, fmt.Errorf("%s: %w", format, ErrUnknownFormat)
	}
	return factory(), nil
}

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

type rawRecord struct {
	Type      string `json:"type" yaml:"type"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Name      string `json:"name" yaml:"name"`
	Text      string `json:"text" yaml:"text"`
	Key       string `json:"key" yaml:"key"`
	Delta     int    `json:"delta" yaml:"delta"`
	Value     string `json:"value" yaml:"value"`
}

func (r rawRecord) record(line int, raw string) (Record, error) {
	rec := Record{
		Line:  line,
		Type:  RecordType(strings.ToLower(strings.TrimSpace(r.Type))),
		ID:    r.ID,
		Title: r.Title,
		Name:  r.Name,
		Text:  r.Text,
		Key:   r.Key,
		Delta: r.Delta,
		Value: r.Value,
		Raw:   raw,
	}
	switch rec.Type {
	case RecordSession, RecordRound, RecordStep, RecordEvent, RecordDetail:
	case RecordAdjust, RecordSet:
		if rec.Key == "" {
			return Record{}, fmt.Errorf("record %d: %s requires a key", line, rec.Type)
		}
	default:
		return Record{}, fmt.Errorf("record %d: %q: %w", line, r.Type, ErrUnknownRecord)
	}
	if r.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, r.Timestamp)
		if err != nil {
			return Record{}, fmt.Errorf("record %d: parse timestamp: %w", line, err)
		}
		rec.Timestamp = ts
	}
	return rec, nil
}
