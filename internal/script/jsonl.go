package script

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

func init() {
	RegisterDecoder(FormatJSONL, func() Decoder { return jsonlDecoder{} })
}

type jsonlDecoder struct{}

func (jsonlDecoder) Decode(r io.Reader, fn func(Record) error) error {
	scanner := newScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		recBytes := bytes.TrimSpace(scanner.Bytes())
		if len(recBytes) == 0 {
			continue
		}
		var raw rawRecord
		if err := json.Unmarshal(recBytes, &raw); err != nil {
			return fmt.Errorf("record %d: decode json: %w", line, err)
		}
		rec, err := raw.record(line, string(recBytes))
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan script: %w", err)
	}
	return nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	// Allow long detail texts.
	const maxCapacity = 8 * 1024 * 1024
	buf := make([]byte, 1024)
	scanner.Buffer(buf, maxCapacity)
	return scanner
}
