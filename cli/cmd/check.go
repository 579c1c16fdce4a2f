package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/macro/lang"
	"github.com/ardnew/macro/log"
)

// Check analyses a program and reports every violation found.
type Check struct {
	Format string `default:"text" enum:"text,json,yaml" help:"Report format (${enum})" short:"F"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin" name:"source"`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := streamsFrom(ctx)
	file := sourceName(c.Source)

	root, err := parseSource(ctx, c.Source)
	if err != nil {
		return excerpt(s.Err, err)
	}

	violations := lang.Analyse(root, file)

	log.DebugContext(ctx, "analysis complete",
		slog.String("file", file),
		slog.Int("violations", len(violations)))

	if err := report(ctx, s.Out, c.Format, violations); err != nil {
		return err
	}

	if len(violations) > 0 {
		return ErrViolations.With(
			slog.String("file", file),
			slog.Int("count", len(violations)),
		)
	}

	return nil
}

// report writes violations to w in the named format. Structured formats
// always write a document, even when there are no violations.
func report(
	ctx context.Context,
	w io.Writer,
	format string,
	violations [][]lang.Diagnostic,
) error {
	if violations == nil {
		violations = [][]lang.Diagnostic{}
	}

	switch format {
	case "text":
		return lang.Render(w, violations)

	case "json":
		data, err := json.MarshalIndent(violations, "", "  ")
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case "yaml":
		data, err := yaml.MarshalContext(ctx, violations)
		if err != nil {
			return err
		}

		_, err = w.Write(data)

		return err
	}

	return ErrInvalidFormat.With(slog.String("format", format))
}
