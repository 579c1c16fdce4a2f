package command

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Command is a host capability callable from a macro.
type Command interface {
	// Arguments returns the argument declarations of the command.
	// Callers clone the result before assigning values.
	Arguments() *Arguments
	// Execute runs the command with the given argument values.
	Execute(ctx context.Context, args *Arguments) (any, error)
}

// Provider resolves commands by scope and name.
type Provider interface {
	Command(scope, name string) (Command, error)
}

// Func adapts a function and its argument declarations to [Command].
type Func struct {
	Args *Arguments
	Run  func(ctx context.Context, args *Arguments) (any, error)
}

// Arguments implements [Command].
func (f Func) Arguments() *Arguments { return f.Args }

// Execute implements [Command].
func (f Func) Execute(ctx context.Context, args *Arguments) (any, error) {
	return f.Run(ctx, args)
}

// GlobalScope is the scope consulted when a command is not registered in the
// requested scope.
const GlobalScope = ""

// Registry is a concurrency-safe [Provider] backed by a map of scopes.
type Registry struct {
	mu     sync.RWMutex
	scopes map[string]map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{scopes: make(map[string]map[string]Command)}
}

// Register adds a command under the given scope.
func (r *Registry) Register(scope, name string, c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scopes == nil {
		r.scopes = make(map[string]map[string]Command)
	}

	cmds, ok := r.scopes[scope]
	if !ok {
		cmds = make(map[string]Command)
		r.scopes[scope] = cmds
	}

	if _, exists := cmds[name]; exists {
		return ErrExists.With(
			slog.String("scope", scope),
			slog.String("command", name),
		)
	}

	cmds[name] = c

	return nil
}

// Command implements [Provider]. Lookup falls back to [GlobalScope].
func (r *Registry) Command(scope, name string) (Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.scopes[scope][name]; ok {
		return c, nil
	}

	if c, ok := r.scopes[GlobalScope][name]; ok {
		return c, nil
	}

	return nil, ErrNotFound.With(
		slog.String("scope", scope),
		slog.String("command", name),
	)
}

// Names returns the sorted command names visible from scope.
func (r *Registry) Names(scope string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := maps.Clone(r.scopes[GlobalScope])
	if names == nil {
		names = make(map[string]Command)
	}

	maps.Copy(names, r.scopes[scope])

	return slices.Sorted(maps.Keys(names))
}

// Scopes returns the sorted names of all non-global scopes.
func (r *Registry) Scopes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scopes := make([]string, 0, len(r.scopes))

	for s := range r.scopes {
		if s != GlobalScope {
			scopes = append(scopes, s)
		}
	}

	slices.Sort(scopes)

	return scopes
}
