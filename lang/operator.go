package lang

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

type (
	// BinaryFunc evaluates a binary operation on operands of registered types.
	BinaryFunc func(lhs, rhs Value) (Value, error)

	// UnaryFunc evaluates a unary operation on an operand of a registered
	// type.
	UnaryFunc func(v Value) (Value, error)
)

type binaryEntry struct {
	lhs, rhs Type
	fn       BinaryFunc
}

type unaryEntry struct {
	typ Type
	fn  UnaryFunc
}

// OperatorProvider maps operations and operand types to implementations.
//
// AND, OR, and NOT are derived from the BOOL conversion table and cannot be
// registered. Both operands of AND and OR are always evaluated.
//
// An OperatorProvider is safe for concurrent use. Hosts are expected to
// register their operators before running scripts.
type OperatorProvider struct {
	mu     sync.RWMutex
	binary map[Op][]binaryEntry
	unary  map[Op][]unaryEntry
	out    io.Writer
}

// NewOperatorProvider returns a provider populated with the built-in
// operators. Print writes to out, or to standard output if out is nil.
func NewOperatorProvider(out io.Writer) *OperatorProvider {
	if out == nil {
		out = os.Stdout
	}

	p := &OperatorProvider{
		binary: make(map[Op][]binaryEntry),
		unary:  make(map[Op][]unaryEntry),
		out:    out,
	}

	registerBuiltins(p)

	return p
}

func reserved(op Op) bool {
	switch op {
	case OpNone, OpAnd, OpOr, OpNot, OpAssign:
		return true
	}

	return false
}

// RegisterBinary adds the implementation of op for operand types lhs and rhs.
func (p *OperatorProvider) RegisterBinary(
	op Op,
	lhs, rhs Type,
	fn BinaryFunc,
) error {
	attrs := []slog.Attr{
		slog.String("op", op.String()),
		slog.String("lhs", TypeName(lhs)),
		slog.String("rhs", TypeName(rhs)),
	}

	switch {
	case reserved(op):
		return ErrReservedOperator.With(attrs...)
	case !op.valid() || op.IsUnary() || fn == nil:
		return ErrMalformedOperator.With(attrs...)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range p.binary[op] {
		if e.lhs == lhs && e.rhs == rhs {
			return ErrOperatorExists.With(attrs...)
		}
	}

	p.binary[op] = append(p.binary[op], binaryEntry{lhs: lhs, rhs: rhs, fn: fn})

	return nil
}

// RegisterUnary adds the implementation of op for operand type t.
func (p *OperatorProvider) RegisterUnary(op Op, t Type, fn UnaryFunc) error {
	attrs := []slog.Attr{
		slog.String("op", op.String()),
		slog.String("type", TypeName(t)),
	}

	switch {
	case reserved(op):
		return ErrReservedOperator.With(attrs...)
	case !op.IsUnary() || fn == nil:
		return ErrMalformedOperator.With(attrs...)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range p.unary[op] {
		if e.typ == t {
			return ErrOperatorExists.With(attrs...)
		}
	}

	p.unary[op] = append(p.unary[op], unaryEntry{typ: t, fn: fn})

	return nil
}

func (p *OperatorProvider) findBinary(op Op, lhs, rhs Type) BinaryFunc {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, e := range p.binary[op] {
		if e.lhs == lhs && e.rhs == rhs {
			return e.fn
		}
	}

	return nil
}

func (p *OperatorProvider) findUnary(op Op, t Type) UnaryFunc {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, e := range p.unary[op] {
		if e.typ == t {
			return e.fn
		}
	}

	return nil
}

// HasBinary reports whether op is defined for operand types lhs and rhs.
// AND and OR are defined wherever both types convert to bool.
func (p *OperatorProvider) HasBinary(op Op, lhs, rhs Type) bool {
	if op == OpAnd || op == OpOr {
		return p.convertible(lhs) && p.convertible(rhs)
	}

	return p.findBinary(op, lhs, rhs) != nil
}

// HasUnary reports whether op is defined for operand type t.
// NOT is defined wherever t converts to bool.
func (p *OperatorProvider) HasUnary(op Op, t Type) bool {
	if op == OpNot {
		return p.convertible(t)
	}

	return p.findUnary(op, t) != nil
}

func (p *OperatorProvider) convertible(t Type) bool {
	return t == TypeBool || p.findUnary(OpBool, t) != nil
}

// EvaluateBinary applies op to lhs and rhs.
func (p *OperatorProvider) EvaluateBinary(op Op, lhs, rhs Value) (Value, error) {
	if op == OpAnd || op == OpOr {
		l, err := p.ToBool(lhs)
		if err != nil {
			return nil, err
		}

		r, err := p.ToBool(rhs)
		if err != nil {
			return nil, err
		}

		if op == OpAnd {
			return l && r, nil
		}

		return l || r, nil
	}

	fn := p.findBinary(op, TypeOf(lhs), TypeOf(rhs))
	if fn == nil {
		return nil, ErrMissingOperator.With(
			slog.String("op", op.Symbol()),
			slog.String("lhs", TypeName(TypeOf(lhs))),
			slog.String("rhs", TypeName(TypeOf(rhs))),
		)
	}

	return fn(lhs, rhs)
}

// EvaluateUnary applies op to v.
func (p *OperatorProvider) EvaluateUnary(op Op, v Value) (Value, error) {
	if op == OpNot {
		b, err := p.ToBool(v)
		if err != nil {
			return nil, err
		}

		return !b, nil
	}

	fn := p.findUnary(op, TypeOf(v))
	if fn == nil {
		return nil, ErrMissingOperator.With(
			slog.String("op", op.Symbol()),
			slog.String("type", TypeName(TypeOf(v))),
		)
	}

	return fn(v)
}

// ToBool converts v to bool through the BOOL conversion table.
func (p *OperatorProvider) ToBool(v Value) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}

	fail := ErrBadBoolConversion.With(slog.String("type", TypeName(TypeOf(v))))

	fn := p.findUnary(OpBool, TypeOf(v))
	if fn == nil {
		return false, fail
	}

	r, err := fn(v)
	if err != nil {
		return false, fail.Wrap(err)
	}

	b, ok := r.(bool)
	if !ok {
		return false, fail
	}

	return b, nil
}

// Output returns the sink written by print.
func (p *OperatorProvider) Output() io.Writer { return p.out }
