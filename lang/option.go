package lang

import (
	"io"

	"github.com/ardnew/macro/command"
	"github.com/ardnew/macro/log"
)

// Default limits and names.
const (
	DefaultFileName     = "Anonymous"
	DefaultMaxDepth     = 256
	DefaultMaxCallDepth = 1000
)

// Option applies a configuration option to config.
type Option func(config) config

type config struct {
	fileName     string
	logger       log.Logger
	maxDepth     int
	maxCallDepth int
	output       io.Writer
	operators    *OperatorProvider
	commands     command.Provider
}

func makeConfig(opts ...Option) config {
	return apply(config{
		fileName:     DefaultFileName,
		maxDepth:     DefaultMaxDepth,
		maxCallDepth: DefaultMaxCallDepth,
	}, opts...)
}

// apply applies multiple options to a config.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}

// WithFileName sets the file name reported in positions.
func WithFileName(name string) Option {
	return func(c config) config {
		if name != "" {
			c.fileName = name
		}

		return c
	}
}

// WithLogger sets the logger. The zero [log.Logger] discards everything.
func WithLogger(l log.Logger) Option {
	return func(c config) config {
		c.logger = l

		return c
	}
}

// WithMaxDepth limits the nesting depth of parsed expressions and scopes.
func WithMaxDepth(depth int) Option {
	return func(c config) config {
		if depth > 0 {
			c.maxDepth = depth
		}

		return c
	}
}

// WithMaxCallDepth limits the depth of user function calls at run time.
func WithMaxCallDepth(depth int) Option {
	return func(c config) config {
		if depth > 0 {
			c.maxCallDepth = depth
		}

		return c
	}
}

// WithOutput sets the sink written by print. It is ignored when
// [WithOperators] supplies a provider.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		c.output = w

		return c
	}
}

// WithOperators sets the operator table.
func WithOperators(p *OperatorProvider) Option {
	return func(c config) config {
		c.operators = p

		return c
	}
}

// WithCommands sets the provider of host commands.
func WithCommands(p command.Provider) Option {
	return func(c config) config {
		c.commands = p

		return c
	}
}
