package parse

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// YAML parses a single YAML document. A stream holding more than one
// document is a syntax error.
type YAML struct{}

// Parse implements Parser.
func (YAML) Parse(data []byte) (any, error) {
	var v any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, syntaxError(FormatYAML, err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, syntaxError(FormatYAML, errors.New("multiple documents in stream"))
	}
	return Normalize(v)
}
