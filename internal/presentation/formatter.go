package presentation

import (
	"encoding/json"
	"io"
)

// Formatter handles JSON output.
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatJSON writes v as JSON indented with two spaces.
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatCompact writes v as single-line JSON.
func (f *Formatter) FormatCompact(v any) error {
	return json.NewEncoder(f.writer).Encode(v)
}
