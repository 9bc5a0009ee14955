package display

import (
	"bytes"
	"encoding/json"
	"io"
)

// MarshalJSON indents with two spaces and leaves &, < and > unescaped so
// dataset URLs stay readable.
func MarshalJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteJSON encodes v to w the way MarshalJSON does, newline terminated
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
