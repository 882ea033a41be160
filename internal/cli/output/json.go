package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes one indented JSON document per result, suitable
// for piping into jq.
type JSONFormatter struct{}

// Format encodes data with two-space indentation. Characters such as < and
// & are written as-is; server addresses and error text stay readable.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}
