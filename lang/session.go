package lang

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Session evaluates successive inputs against one persistent global frame.
// Functions may be redefined; main is not called implicitly.
type Session struct {
	in     *Interpreter
	scope  string
	file   string
	id     string
	mu     sync.Mutex
	global *Stack
}

// NewSession returns a session running on in. Calls to unknown functions are
// delegated to commands in commandScope.
func NewSession(in *Interpreter, commandScope, fileName string) *Session {
	if fileName == "" {
		fileName = DefaultFileName
	}

	return &Session{
		in:     in,
		scope:  commandScope,
		file:   fileName,
		id:     uuid.NewString(),
		global: NewStack(nil),
	}
}

// Interpreter returns the interpreter the session runs on.
func (s *Session) Interpreter() *Interpreter { return s.in }

// Eval parses source as a sequence of statements, or failing that as a
// single expression, and runs it. It returns the value of the last
// expression evaluated at the top level.
func (s *Session) Eval(ctx context.Context, source string) (Value, error) {
	opts := []Option{
		WithFileName(s.file),
		WithLogger(s.in.logger),
		WithMaxDepth(s.in.maxDepth),
	}

	root, err := Parse(ctx, source, opts...)
	if err != nil {
		expr, exprErr := ParseExpression(ctx, source, opts...)
		if exprErr != nil {
			return nil, err
		}

		root = &Scope{Tok: expr.Token()}
		if st, ok := expr.(Statement); ok {
			root.Statements = []Statement{st}
		} else {
			return s.value(ctx, expr)
		}
	}

	return s.Exec(ctx, root)
}

// value evaluates a lone operand such as a variable or literal.
func (s *Session) value(ctx context.Context, p Producer) (Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.run(ctx).eval(&state{stack: s.global}, p)
}

// Exec runs the statements of root in the session frame.
func (s *Session) Exec(ctx context.Context, root *Scope) (Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.run(ctx)

	for _, stmt := range root.Statements {
		d, ok := stmt.(*Define)
		if !ok {
			continue
		}

		if fn, ok := d.Target.(Invocable); ok {
			err := s.global.RedefineFunction(fn.Signature().Name, &FunctionRef{
				Def: fn, Frame: s.global,
			})
			if err != nil {
				return nil, r.errorAt(fn, err)
			}
		}
	}

	var (
		last Value
		st   = &state{stack: s.global, hoisted: true}
	)

	for _, stmt := range root.Statements {
		if p, ok := stmt.(Producer); ok {
			v, err := r.eval(st, p)
			if err != nil {
				return nil, err
			}

			last = v

			continue
		}

		if err := r.statement(st, stmt); err != nil {
			return nil, err
		}
	}

	return last, nil
}

func (s *Session) run(ctx context.Context) *run {
	return &run{
		Interpreter: s.in,
		ctx:         ctx,
		file:        s.file,
		scope:       s.scope,
		logger:      s.in.logger.With(slog.String("session", s.id)),
	}
}

// Names returns the sorted names bound in the session frame.
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := s.global.Names()
	slices.Sort(names)

	return names
}

// Signatures returns the definitions bound to the function name in the
// session frame.
func (s *Session) Signatures(name string) []Signature {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sigs []Signature

	_ = s.global.LookupFunction(name, func(refs []*FunctionRef) error {
		for _, ref := range refs {
			sigs = append(sigs, ref.Signature())
		}

		return nil
	})

	return sigs
}

// CommandScope returns the scope calls to unknown functions are delegated
// to.
func (s *Session) CommandScope() string { return s.scope }

// Reset discards every binding.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.global = NewStack(nil)
}
