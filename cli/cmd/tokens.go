package cmd

import (
	"bufio"
	"context"

	"github.com/ardnew/macro/lang"
)

// Tokens prints the tokens of a program, one per line.
type Tokens struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for stdin" name:"source"`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := readSource(ctx, t.Source)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(streamsFrom(ctx).Out)

	for _, tok := range lang.Tokenize(src) {
		w.WriteString(tok.String())
		w.WriteByte('\n')
	}

	return w.Flush()
}
