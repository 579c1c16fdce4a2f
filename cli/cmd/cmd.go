package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/macro/command"
	"github.com/ardnew/macro/lang"
	"github.com/ardnew/macro/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Streams are the standard streams a command reads from and writes to.
// Nil fields fall back to the process streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type streamsKey struct{}

// WithStreams returns a new context.Context carrying s.
func WithStreams(ctx context.Context, s Streams) context.Context {
	return context.WithValue(ctx, streamsKey{}, s)
}

func streamsFrom(ctx context.Context) Streams {
	s, _ := ctx.Value(streamsKey{}).(Streams)

	if s.In == nil {
		s.In = os.Stdin
	}

	if s.Out == nil {
		s.Out = os.Stdout
	}

	if s.Err == nil {
		s.Err = os.Stderr
	}

	return s
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinName is the file name reported for programs read from stdin.
const stdinName = "<stdin>"

// sourceName returns the file name reported in positions for source.
func sourceName(source string) string {
	if source == stdinSource {
		return stdinName
	}

	return source
}

// readSource returns the text of the program named by source.
func readSource(ctx context.Context, source string) (string, error) {
	if source == stdinSource {
		data, err := io.ReadAll(streamsFrom(ctx).In)
		if err != nil {
			return "", lang.ErrReadInput.Wrap(err).
				With(slog.String("file", stdinName))
		}

		return string(data), nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", lang.ErrReadInput.Wrap(err).
			With(slog.String("file", source))
	}

	return string(data), nil
}

// parseSource parses the program named by source through the parse cache.
func parseSource(
	ctx context.Context,
	source string,
	opts ...lang.Option,
) (*lang.Scope, error) {
	opts = append([]lang.Option{lang.WithLogger(log.Default())}, opts...)

	if source == stdinSource {
		return lang.ParseReader(ctx, streamsFrom(ctx).In,
			append(opts, lang.WithFileName(stdinName))...)
	}

	return lang.ParseFile(ctx, source, opts...)
}

// excerpt writes the position, message, and offending source line of err to
// w when err carries a source position, and returns err joined with any
// write error.
func excerpt(w io.Writer, err error) error {
	var se *lang.SourceError
	if !errors.As(err, &se) {
		return err
	}

	if _, werr := fmt.Fprintf(w, "%s: error: %s\n", se.Position(), se.Err); werr != nil {
		return errors.Join(err, werr)
	}

	if werr := se.Excerpt(w); werr != nil {
		return errors.Join(err, werr)
	}

	return err
}

// newRegistry returns a command registry holding the built-in host
// commands.
func newRegistry() (*command.Registry, error) {
	r := command.NewRegistry()

	if err := command.RegisterBuiltins(r); err != nil {
		return nil, err
	}

	return r, nil
}
