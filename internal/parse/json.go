package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/tidwall/jsonc"
)

// JSON parses JSON documents. Comments and trailing commas are accepted.
type JSON struct{}

// Parse implements Parser.
func (JSON) Parse(data []byte) (any, error) {
	clean := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(clean)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, syntaxError(FormatJSON, err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, syntaxError(FormatJSON, errors.New("unexpected data after top-level value"))
	}
	return Normalize(v)
}
