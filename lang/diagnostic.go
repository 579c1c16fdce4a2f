package lang

import (
	"io"
	"strconv"
	"strings"
)

// Diagnostic is one message of an analysis violation.
type Diagnostic struct {
	Check      string `json:"check,omitempty"       yaml:"check,omitempty"`
	File       string `json:"file"                  yaml:"file"`
	Line       int    `json:"line"                  yaml:"line"`
	Column     int    `json:"column"                yaml:"column"`
	Message    string `json:"message"               yaml:"message"`
	SourceLine string `json:"source_line,omitempty" yaml:"source_line,omitempty"`
}

// Position returns "file:line:column".
func (d Diagnostic) Position() string {
	return d.File + ":" + strconv.Itoa(d.Line) + ":" + strconv.Itoa(d.Column)
}

// String returns "file:line:column: message".
func (d Diagnostic) String() string {
	return d.Position() + ": " + d.Message
}

// Render writes each violation as its cause with a source excerpt, followed
// by one note per remaining message. Violations are separated by a blank
// line.
func Render(w io.Writer, violations [][]Diagnostic) error {
	var b strings.Builder

	for i, v := range violations {
		if i > 0 {
			b.WriteByte('\n')
		}

		for j, d := range v {
			b.WriteString(d.Position())

			if j == 0 {
				b.WriteString(": error: ")
			} else {
				b.WriteString(": note: ")
			}

			b.WriteString(d.Message)

			if j == 0 && d.Check != "" {
				b.WriteString(" [")
				b.WriteString(d.Check)
				b.WriteByte(']')
			}

			b.WriteByte('\n')

			if j == 0 {
				_ = excerpt(&b, d.Line, d.Column, d.SourceLine)
			}
		}
	}

	_, err := io.WriteString(w, b.String())

	return err
}
