package script

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

func init() {
	RegisterDecoder(FormatYAML, func() Decoder { return yamlDecoder{} })
}

// yamlDecoder reads a script written as a top-level YAML sequence of records.
type yamlDecoder struct{}

func (yamlDecoder) Decode(r io.Reader, fn func(Record) error) error {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	seq := doc.Content[0]
	if seq.Kind != yaml.SequenceNode {
		return fmt.Errorf("decode yaml: line %d: expected a sequence of records", seq.Line)
	}
	for _, item := range seq.Content {
		var raw rawRecord
		if err := item.Decode(&raw); err != nil {
			return fmt.Errorf("record %d: decode yaml: %w", item.Line, err)
		}
		rendered, err := yaml.Marshal(item)
		if err != nil {
			return fmt.Errorf("record %d: encode yaml: %w", item.Line, err)
		}
		rec, err := raw.record(item.Line, string(rendered))
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}
