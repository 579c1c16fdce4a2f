package lang

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ardnew/macro/command"
	"github.com/ardnew/macro/log"
)

// Interpreter evaluates programs against an operator table and a provider
// of host commands.
//
// An Interpreter holds no per-run state, so one value may run any number of
// programs concurrently.
type Interpreter struct {
	operators    *OperatorProvider
	commands     command.Provider
	logger       log.Logger
	maxDepth     int
	maxCallDepth int
}

// NewInterpreter returns an Interpreter configured by opts.
// Without [WithOperators], it uses a new provider of the built-in operators
// writing to the sink given by [WithOutput].
func NewInterpreter(opts ...Option) *Interpreter {
	cfg := makeConfig(opts...)

	ops := cfg.operators
	if ops == nil {
		ops = NewOperatorProvider(cfg.output)
	}

	return &Interpreter{
		operators:    ops,
		commands:     cfg.commands,
		logger:       cfg.logger,
		maxDepth:     cfg.maxDepth,
		maxCallDepth: cfg.maxCallDepth,
	}
}

// Operators returns the operator table.
func (in *Interpreter) Operators() *OperatorProvider { return in.operators }

// Commands returns the command provider, which may be nil.
func (in *Interpreter) Commands() command.Provider { return in.commands }

// Interpret parses source and runs it. See [Interpreter.Run].
func (in *Interpreter) Interpret(
	ctx context.Context,
	source string,
	args *command.Arguments,
	commandScope, fileName string,
) (Value, error) {
	root, err := Parse(ctx, source,
		WithFileName(fileName),
		WithLogger(in.logger),
		WithMaxDepth(in.maxDepth),
	)
	if err != nil {
		return nil, err
	}

	return in.Run(ctx, root, args, commandScope, fileName)
}

// Run executes a parsed program.
//
// Top-level functions are registered first, so they may be referenced before
// their definition. The top-level statements then run in order, and finally
// main is called with args bound to its parameters by name. The value
// returned by main is returned.
//
// Calls that resolve to no user function are delegated to the command
// provider under commandScope.
func (in *Interpreter) Run(
	ctx context.Context,
	root *Scope,
	args *command.Arguments,
	commandScope, fileName string,
) (Value, error) {
	if fileName == "" {
		fileName = DefaultFileName
	}

	if root == nil {
		return nil, ErrInvalidNode.With(slog.String("file", fileName))
	}

	r := &run{
		Interpreter: in,
		ctx:         ctx,
		file:        fileName,
		scope:       commandScope,
		logger: in.logger.With(
			slog.String("run", uuid.NewString()),
			slog.String("file", fileName),
		),
	}

	r.logger.DebugContext(ctx, "run start",
		slog.String("scope", commandScope),
		slog.Int("arguments", args.Len()))

	global := NewStack(nil)
	st := &state{stack: global, hoisted: true}

	if err := r.hoist(global, root); err != nil {
		return nil, err
	}

	if err := r.statements(st, root.Statements); err != nil {
		return nil, r.fail(err)
	}

	var entry *FunctionRef

	_ = global.LookupFunction(EntryName, func(refs []*FunctionRef) error {
		for _, ref := range refs {
			if _, ok := ref.Def.(*EntryFunction); ok {
				entry = ref

				break
			}
		}

		return nil
	})

	if entry == nil {
		return nil, r.fail(&SourceError{
			File: fileName, Token: root.Tok, Err: ErrNoEntry,
		})
	}

	result, err := r.enter(entry, args)
	if err != nil {
		return nil, r.fail(err)
	}

	r.logger.DebugContext(ctx, "run complete",
		slog.String("type", TypeName(TypeOf(result))))

	return result, nil
}

// run is the state of one program execution.
type run struct {
	*Interpreter

	ctx    context.Context
	file   string
	scope  string
	logger log.Logger
	depth  int
}

// state is the evaluation state of one scope.
//
// repeat is set while a loop body runs its second or later iteration in the
// shared loop frame. Definitions then replace those of earlier iterations.
//
// breaking, continuing, and returning latch when set and stop the remaining
// statements of the scope. Each enclosing scope copies them from its child
// until a loop consumes breaking and continuing, or a call consumes
// returning.
type state struct {
	stack      *Stack
	loop       bool
	function   bool
	hoisted    bool
	repeat     bool
	breaking   bool
	continuing bool
	returning  bool
	result     Value
}

// child returns the state of a nested scope evaluated in frame.
func (st *state) child(frame *Stack) *state {
	return &state{stack: frame, loop: st.loop, function: st.function}
}

// absorb copies the control flags of a finished child scope.
func (st *state) absorb(c *state) {
	st.breaking = c.breaking
	st.continuing = c.continuing
	st.returning = c.returning

	if c.returning {
		st.result = c.result
	}
}

func (st *state) halted() bool {
	return st.breaking || st.continuing || st.returning
}

func (r *run) fail(err error) error {
	r.logger.DebugContext(r.ctx, "run failed", slog.Any("error", err))

	return err
}

func (r *run) errorAt(n Node, err error) error {
	return at(r.file, n.Token(), err)
}

// hoist registers the functions defined directly in root.
func (r *run) hoist(global *Stack, root *Scope) error {
	for _, s := range root.Statements {
		d, ok := s.(*Define)
		if !ok {
			continue
		}

		fn, ok := d.Target.(Invocable)
		if !ok {
			continue
		}

		sig := fn.Signature()
		if err := global.DeclareFunction(sig.Name, &FunctionRef{
			Def: fn, Frame: global,
		}); err != nil {
			return r.errorAt(fn, err)
		}

		if r.logger.Enabled(r.ctx, log.LevelTrace) {
			r.logger.TraceContext(r.ctx, "function registered",
				slog.String("signature", sig.String()))
		}
	}

	return nil
}

func (r *run) statements(st *state, stmts []Statement) error {
	for _, s := range stmts {
		if err := r.statement(st, s); err != nil {
			return err
		}

		if st.halted() {
			break
		}
	}

	return nil
}

func (r *run) statement(st *state, s Statement) error {
	switch n := s.(type) {
	case *Define:
		return r.define(st, n)

	case *Scope:
		return r.block(st, n)

	case *If:
		if n.Then == nil {
			return r.errorAt(n, ErrInvalidNode)
		}

		ok, err := r.truth(st, n.Condition)
		if err != nil {
			return err
		}

		if ok {
			return r.block(st, n.Then)
		}

		if n.Else != nil {
			return r.block(st, n.Else)
		}

		return nil

	case *While:
		return r.loop(st, n, n.Condition, n.Body, false)

	case *DoWhile:
		return r.loop(st, n, n.Condition, n.Body, true)

	case *For:
		r.logger.WarnContext(r.ctx, "for loops are not executed",
			slog.String("position", r.file+":"+n.Tok.String()))

		return nil

	case *Return:
		if !st.function {
			return r.errorAt(n, ErrReturnOutsideFunction)
		}

		var result Value

		if n.Output != nil {
			v, err := r.eval(st, n.Output)
			if err != nil {
				return err
			}

			result = v
		}

		st.result = result
		st.returning = true

		return nil

	case *Break:
		if !st.loop {
			return r.errorAt(n, ErrBreakOutsideLoop)
		}

		st.breaking = true

		return nil

	case *Continue:
		if !st.loop {
			return r.errorAt(n, ErrBreakOutsideLoop)
		}

		st.continuing = true

		return nil

	case Producer:
		_, err := r.eval(st, n)

		return err
	}

	return r.errorAt(s, ErrInvalidNode)
}

// block runs a nested scope in a fresh frame.
func (r *run) block(st *state, s *Scope) error {
	c := st.child(NewStack(st.stack))
	err := r.statements(c, s.Statements)
	st.absorb(c)

	return err
}

func (r *run) define(st *state, n *Define) error {
	switch t := n.Target.(type) {
	case *Variable:
		// Parameters are bound before the body runs.
		if n.Param && st.stack.Owns(t.Name) {
			return nil
		}

		declare := st.stack.DeclareVariable
		if st.repeat {
			declare = st.stack.RedeclareVariable
		}

		if _, err := declare(t.Name); err != nil {
			return r.errorAt(t, err)
		}

		return nil

	case Invocable:
		if st.hoisted {
			return nil
		}

		sig := t.Signature()

		declare := st.stack.DeclareFunction
		if st.repeat {
			declare = st.stack.RedefineFunction
		}

		if err := declare(sig.Name, &FunctionRef{
			Def: t, Frame: st.stack,
		}); err != nil {
			return r.errorAt(t, err)
		}

		return nil
	}

	return r.errorAt(n, ErrInvalidNode)
}

// loop runs a while or do-while loop. The condition and the body share one
// frame across all iterations, so names the body binds in one iteration are
// visible to the condition and to the next iteration.
func (r *run) loop(st *state, n Node, cond Producer, body *Scope, first bool) error {
	if body == nil || cond == nil {
		return r.errorAt(n, ErrInvalidNode)
	}

	ls := &state{stack: NewStack(st.stack), loop: true, function: st.function}

	for iter := 0; ; iter++ {
		if err := r.ctx.Err(); err != nil {
			return r.errorAt(n, err)
		}

		if !first || iter > 0 {
			ok, err := r.truth(ls, cond)
			if err != nil {
				return err
			}

			if !ok {
				return nil
			}
		}

		ls.continuing = false
		ls.repeat = iter > 0

		if err := r.statements(ls, body.Statements); err != nil {
			return err
		}

		if ls.returning {
			st.returning = true
			st.result = ls.result

			return nil
		}

		if ls.breaking {
			return nil
		}
	}
}

// truth evaluates p and converts the result to bool.
func (r *run) truth(st *state, p Producer) (bool, error) {
	v, err := r.eval(st, p)
	if err != nil {
		return false, err
	}

	b, err := r.operators.ToBool(v)
	if err != nil {
		return false, r.errorAt(p, err)
	}

	return b, nil
}

func (r *run) eval(st *state, p Producer) (Value, error) {
	if p == nil {
		return nil, ErrInvalidNode
	}

	switch n := p.(type) {
	case *Literal[bool]:
		return n.Value, nil

	case *Literal[int64]:
		return n.Value, nil

	case *Literal[float64]:
		return n.Value, nil

	case *Literal[string]:
		return n.Value, nil

	case *Variable:
		var v Value

		err := st.stack.LookupVariable(n.Name, func(s *Slot) error {
			v = s.Value

			return nil
		})
		if err != nil {
			return nil, r.errorAt(n, err)
		}

		return v, nil

	case *UnaryOperator:
		if n.Operand == nil {
			return nil, r.errorAt(n, ErrInvalidNode)
		}

		v, err := r.eval(st, n.Operand)
		if err != nil {
			return nil, err
		}

		res, err := r.operators.EvaluateUnary(n.Op, v)
		if err != nil {
			return nil, r.errorAt(n, err)
		}

		return res, nil

	case *BinaryOperator:
		if n.LHS == nil || n.RHS == nil {
			return nil, r.errorAt(n, ErrInvalidNode)
		}

		if n.Op == OpAssign {
			return r.assign(st, n)
		}

		lhs, err := r.eval(st, n.LHS)
		if err != nil {
			return nil, err
		}

		rhs, err := r.eval(st, n.RHS)
		if err != nil {
			return nil, err
		}

		res, err := r.operators.EvaluateBinary(n.Op, lhs, rhs)
		if err != nil {
			return nil, r.errorAt(n, err)
		}

		return res, nil

	case *Callable:
		return r.call(st, n)
	}

	return nil, r.errorAt(p, ErrInvalidNode)
}

// assign evaluates the right side and stores it in the variable on the left.
//
// An undeclared name is declared in the current frame. A name bound to an
// alias is rebound, in the frame holding the alias, to a new variable owned
// by that frame; the aliased slot is left unchanged. Other variables are
// written in place.
func (r *run) assign(st *state, n *BinaryOperator) (Value, error) {
	v, err := r.eval(st, n.RHS)
	if err != nil {
		return nil, err
	}

	target, ok := n.LHS.(*Variable)
	if !ok {
		return nil, r.errorAt(n, ErrInvalidAssignment.With(
			slog.String("target", n.LHS.Kind().String())))
	}

	frame, alias, found := st.stack.Binding(target.Name)

	switch {
	case !found:
		slot, err := st.stack.DeclareVariable(target.Name)
		if err != nil {
			return nil, r.errorAt(target, err)
		}

		slot.Value = v

	case alias:
		frame.RemoveAlias(target.Name)

		slot, err := frame.DeclareVariable(target.Name)
		if err != nil {
			return nil, r.errorAt(target, err)
		}

		slot.Value = v

	default:
		err := st.stack.LookupVariable(target.Name, func(s *Slot) error {
			s.Value = v

			return nil
		})
		if err != nil {
			return nil, r.errorAt(target, err)
		}
	}

	return v, nil
}
