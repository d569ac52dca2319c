package render

import (
	"bytes"
	"encoding/json"
)

// JSON marshals the interchange document, indented, with a trailing
// newline so the output is shell-friendly.
func JSON(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
