package parse

import (
	"bytes"

	kdl "github.com/sblinch/kdl-go"
)

// KDL parses KDL documents. Each top-level node becomes a key; a node with
// a single argument becomes a scalar and a node with children a mapping.
type KDL struct{}

// Parse implements Parser.
func (KDL) Parse(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	doc := map[string]interface{}{}
	if err := kdl.Unmarshal(data, &doc); err != nil {
		return nil, syntaxError(FormatKDL, err)
	}
	return Normalize(doc)
}
