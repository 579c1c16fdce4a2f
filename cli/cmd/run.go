package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ardnew/macro/command"
	"github.com/ardnew/macro/lang"
	"github.com/ardnew/macro/log"
)

// defaultDebounce is the quiet period after a change to a watched source
// before it runs again.
const defaultDebounce = 100 * time.Millisecond

// Run interprets a program and prints the value returned by main.
type Run struct {
	Args         []string `help:"Argument bound to a parameter of main"             name:"arg"  placeholder:"NAME=VALUE" sep:"none" short:"a"`
	Scope        string   `help:"Command scope for calls to undefined functions"`
	Check        bool     `help:"Analyse the program before running it"                                                            negatable:""`
	Watch        bool     `help:"Run again whenever the source file changes"                                                    short:"w"`
	MaxCallDepth int      `help:"Maximum depth of nested function calls"           default:"1000"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin" name:"source"`
}

// ParseArguments converts name=value pairs into arguments for main.
// Values are typed by literal classification: integers and doubles (either
// possibly negative), booleans, and quoted strings become the corresponding
// values. Anything else is kept as a raw string.
func ParseArguments(pairs []string) (*command.Arguments, error) {
	args := command.NewArguments()

	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)

		if !ok || name == "" {
			return nil, ErrInvalidArgument.With(slog.String("arg", pair))
		}

		args.Add(name, "", literal(raw), false)
	}

	return args, nil
}

// literal classifies raw, accepting a leading minus sign on numbers.
func literal(raw string) lang.Value {
	if digits, neg := strings.CutPrefix(raw, "-"); neg {
		switch v, _ := lang.ClassifyLiteral(digits); v := v.(type) {
		case int64:
			return -v
		case float64:
			return -v
		}

		return raw
	}

	if v, ok := lang.ClassifyLiteral(raw); ok {
		return v
	}

	return raw
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	args, err := ParseArguments(r.Args)
	if err != nil {
		return err
	}

	if !r.Watch {
		return r.once(ctx, args)
	}

	if r.Source == stdinSource {
		return ErrWatchStdin
	}

	return watch(ctx, r.Source, defaultDebounce, func(ctx context.Context) {
		// Cached trees are keyed by content, so edits reparse.
		if err := r.once(ctx, args); err != nil {
			log.ErrorContext(ctx, "run failed",
				slog.String("file", r.Source),
				slog.Any("error", err))
		}
	})
}

// once parses, optionally analyses, and runs the program a single time.
func (r *Run) once(ctx context.Context, args *command.Arguments) error {
	s := streamsFrom(ctx)
	file := sourceName(r.Source)

	root, err := parseSource(ctx, r.Source)
	if err != nil {
		return excerpt(s.Err, err)
	}

	if r.Check {
		if v := lang.Analyse(root, file); len(v) > 0 {
			verr := ErrViolations.With(
				slog.String("file", file),
				slog.Int("count", len(v)),
			)
			if werr := lang.Render(s.Err, v); werr != nil {
				return errors.Join(verr, werr)
			}

			return verr
		}
	}

	registry, err := newRegistry()
	if err != nil {
		return err
	}

	in := lang.NewInterpreter(
		lang.WithOutput(s.Out),
		lang.WithCommands(registry),
		lang.WithLogger(log.Default()),
		lang.WithMaxCallDepth(r.MaxCallDepth),
	)

	result, err := in.Run(ctx, root, args.Clone(), r.Scope, file)
	if err != nil {
		return excerpt(s.Err, err)
	}

	if result != nil {
		fmt.Fprintln(s.Out, lang.FormatValue(result))
	}

	return nil
}
