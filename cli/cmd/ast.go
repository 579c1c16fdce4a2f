package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/macro/lang"
)

// AST prints the syntax tree of a program.
type AST struct {
	Format string `default:"tree" enum:"tree,json,yaml" help:"Output format (${enum})" short:"F"`
	Indent int    `default:"2"                          help:"Indent width for JSON and YAML output; 0 is compact" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin" name:"source"`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := streamsFrom(ctx)

	root, err := parseSource(ctx, a.Source)
	if err != nil {
		return excerpt(s.Err, err)
	}

	switch a.Format {
	case "tree":
		return lang.FormatTree(s.Out, root)
	case "json":
		return lang.FormatJSON(ctx, s.Out, root, a.Indent)
	case "yaml":
		return lang.FormatYAML(ctx, s.Out, root, a.Indent)
	}

	return ErrInvalidFormat.With(slog.String("format", a.Format))
}
