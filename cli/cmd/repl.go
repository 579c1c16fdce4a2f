package cmd

import (
	"context"

	"github.com/ardnew/macro/cli/cmd/repl"
	"github.com/ardnew/macro/log"
)

// REPL starts an interactive session.
type REPL struct {
	Scope string `help:"Command scope for calls to undefined functions"`

	Source string `arg:"" help:"Program whose top-level statements run before the first prompt" name:"source" optional:""`
}

// Run executes the repl command.
func (r *REPL) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	registry, err := newRegistry()
	if err != nil {
		return err
	}

	opts := repl.Options{
		Scope:    r.Scope,
		Commands: registry,
		Logger:   log.Default(),
	}

	if ktx := kongContextFrom(ctx); ktx != nil {
		opts.CacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	if r.Source != "" {
		root, err := parseSource(ctx, r.Source)
		if err != nil {
			return excerpt(streamsFrom(ctx).Err, err)
		}

		opts.Preload = root
		opts.File = sourceName(r.Source)
	}

	return repl.Run(ctx, opts)
}
