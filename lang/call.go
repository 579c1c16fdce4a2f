package lang

import (
	"errors"
	"log/slog"

	"github.com/ardnew/macro/command"
	"github.com/ardnew/macro/log"
)

// call runs a user function accepting the call's argument names, or else the
// host command of the same name.
func (r *run) call(st *state, n *Callable) (Value, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, r.errorAt(n, err)
	}

	ref, err := st.stack.ResolveFunction(n.Name, n.ArgNames())

	switch {
	case err == nil:
		return r.callFunction(st, n, ref)
	case errors.Is(err, ErrNotFound):
		return r.callCommand(st, n)
	}

	return nil, r.errorAt(n, err)
}

// callFunction binds the arguments in a frame chained to the function's
// declaration frame. A variable argument becomes an alias of the caller's
// slot; any other argument is copied.
func (r *run) callFunction(st *state, n *Callable, ref *FunctionRef) (Value, error) {
	frame := NewStack(ref.Frame)

	for _, a := range n.Args {
		if v, ok := a.Value.(*Variable); ok {
			err := st.stack.LookupVariable(v.Name, func(s *Slot) error {
				return frame.DeclareAlias(a.Name, s)
			})
			if err != nil {
				return nil, r.errorAt(v, err)
			}

			continue
		}

		val, err := r.eval(st, a.Value)
		if err != nil {
			return nil, err
		}

		slot, err := frame.DeclareVariable(a.Name)
		if err != nil {
			return nil, r.errorAt(a, err)
		}

		slot.Value = val
	}

	v, err := r.invoke(ref, frame)
	if err != nil {
		return nil, r.errorAt(n, err)
	}

	return v, nil
}

// callCommand evaluates the arguments into a copy of the command's argument
// declarations and executes it.
func (r *run) callCommand(st *state, n *Callable) (Value, error) {
	if r.commands == nil {
		return nil, r.errorAt(n, ErrMissingProvider.With(
			slog.String("name", n.Name)))
	}

	cmd, err := r.commands.Command(r.scope, n.Name)
	if err != nil {
		return nil, r.errorAt(n, ErrNotFound.Wrap(err).With(
			slog.String("name", n.Name),
			slog.String("scope", r.scope)))
	}

	args := cmd.Arguments().Clone()

	for _, a := range n.Args {
		v, err := r.eval(st, a.Value)
		if err != nil {
			return nil, err
		}

		if err := args.Set(a.Name, v); err != nil {
			return nil, r.errorAt(a, ErrUnknownArgument.Wrap(err))
		}
	}

	if err := args.Validate(); err != nil {
		return nil, r.errorAt(n, ErrMissingArgument.Wrap(err))
	}

	if r.logger.Enabled(r.ctx, log.LevelTrace) {
		r.logger.TraceContext(r.ctx, "command",
			slog.String("name", n.Name),
			slog.String("scope", r.scope),
			slog.Int("arguments", args.Len()))
	}

	res, err := cmd.Execute(r.ctx, args)
	if err != nil {
		return nil, r.errorAt(n, ErrCommand.Wrap(err).With(
			slog.String("name", n.Name)))
	}

	return Normalize(res), nil
}

// enter calls main with args bound to its parameters by name.
func (r *run) enter(entry *FunctionRef, args *command.Arguments) (Value, error) {
	sig := entry.Signature()
	attrs := []slog.Attr{
		slog.String("function", sig.String()),
		slog.Any("arguments", args.Names()),
	}

	if args.Len() != len(sig.Params) {
		return nil, r.errorAt(entry.Def, ErrArgumentCount.With(attrs...))
	}

	frame := NewStack(entry.Frame)

	for _, p := range sig.Params {
		v, ok := args.Value(p)
		if !ok {
			return nil, r.errorAt(entry.Def, ErrMissingArgument.With(
				append(attrs, slog.String("parameter", p))...))
		}

		slot, err := frame.DeclareVariable(p)
		if err != nil {
			return nil, r.errorAt(entry.Def, err)
		}

		slot.Value = Normalize(v)
	}

	return r.invoke(entry, frame)
}

// invoke runs the body of ref directly in frame, which already holds the
// bound parameters.
func (r *run) invoke(ref *FunctionRef, frame *Stack) (Value, error) {
	body := ref.Def.Block()
	if body == nil {
		return nil, r.errorAt(ref.Def, ErrInvalidNode)
	}

	r.depth++
	defer func() { r.depth-- }()

	if r.depth > r.maxCallDepth {
		return nil, r.errorAt(ref.Def, ErrMaxDepthExceeded.With(
			slog.Int("max_call_depth", r.maxCallDepth)))
	}

	if r.logger.Enabled(r.ctx, log.LevelTrace) {
		r.logger.TraceContext(r.ctx, "call",
			slog.String("function", ref.Signature().String()),
			slog.Int("depth", r.depth))
	}

	fs := &state{stack: frame, function: true}
	if err := r.statements(fs, body.Statements); err != nil {
		return nil, err
	}

	return fs.result, nil
}
