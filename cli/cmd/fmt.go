package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/macro/lang"
	"github.com/ardnew/macro/log"
)

// Fmt prints a program in canonical form.
type Fmt struct {
	Indent int  `default:"2" help:"Indent width; 0 prints the program on one line" short:"i"`
	Write  bool `            help:"Write the result back to the source file"        short:"w"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin" name:"source"`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := streamsFrom(ctx)

	root, err := parseSource(ctx, f.Source)
	if err != nil {
		return excerpt(s.Err, err)
	}

	formatted := lang.FormatString(root, f.Indent)
	if f.Indent == 0 {
		formatted += "\n"
	}

	if !f.Write || f.Source == stdinSource {
		_, err = io.WriteString(s.Out, formatted)

		return err
	}

	info, err := os.Stat(f.Source)
	if err != nil {
		return ErrWriteSource.Wrap(err).With(slog.String("file", f.Source))
	}

	err = os.WriteFile(f.Source, []byte(formatted), info.Mode().Perm())
	if err != nil {
		return ErrWriteSource.Wrap(err).With(slog.String("file", f.Source))
	}

	log.DebugContext(ctx, "formatted source file",
		slog.String("file", f.Source),
		slog.Int("indent", f.Indent))

	return nil
}
