package lang

import "math"

// epsilon is the tolerance used when comparing double literals.
const epsilon = 1e-9

// equal reports whether a and b are structurally equal, treating nil and
// typed-nil nodes as equal to each other.
func equal(a, b Node) bool {
	an, bn := isNil(a), isNil(b)
	if an || bn {
		return an == bn
	}

	return a.Equal(b)
}

func equalSlice[S ~[]E, E Node](a, b S) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !equal(a[i], b[i]) {
			return false
		}
	}

	return true
}

func (n *Scope) Equal(o Node) bool {
	m, ok := o.(*Scope)

	return ok && n.Tok.Equal(m.Tok) && equalSlice(n.Statements, m.Statements)
}

func (n *Define) Equal(o Node) bool {
	m, ok := o.(*Define)

	return ok && n.Tok.Equal(m.Tok) && n.Param == m.Param &&
		equal(n.Target, m.Target)
}

func (n *Variable) Equal(o Node) bool {
	m, ok := o.(*Variable)

	return ok && n.Tok.Equal(m.Tok) && n.Name == m.Name
}

func (n *Literal[T]) Equal(o Node) bool {
	m, ok := o.(*Literal[T])
	if !ok || !n.Tok.Equal(m.Tok) {
		return false
	}

	if f, isFloat := any(n.Value).(float64); isFloat {
		return math.Abs(f-any(m.Value).(float64)) < epsilon
	}

	return n.Value == m.Value
}

func (n *UnaryOperator) Equal(o Node) bool {
	m, ok := o.(*UnaryOperator)

	return ok && n.Tok.Equal(m.Tok) && n.Op == m.Op &&
		equal(n.Operand, m.Operand)
}

func (n *BinaryOperator) Equal(o Node) bool {
	m, ok := o.(*BinaryOperator)

	return ok && n.Tok.Equal(m.Tok) && n.Op == m.Op &&
		equal(n.LHS, m.LHS) && equal(n.RHS, m.RHS)
}

func (n *Argument) Equal(o Node) bool {
	m, ok := o.(*Argument)

	return ok && n.Tok.Equal(m.Tok) && n.Name == m.Name &&
		equal(n.Value, m.Value)
}

func (n *Callable) Equal(o Node) bool {
	m, ok := o.(*Callable)

	return ok && n.Tok.Equal(m.Tok) && n.Name == m.Name &&
		equalSlice(n.Args, m.Args)
}

func (n *Function) Equal(o Node) bool {
	m, ok := o.(*Function)

	return ok && n.Tok.Equal(m.Tok) && n.Name == m.Name &&
		equalSlice(n.Params, m.Params) && equal(n.Body, m.Body)
}

func (n *EntryFunction) Equal(o Node) bool {
	m, ok := o.(*EntryFunction)

	return ok && n.Tok.Equal(m.Tok) &&
		equalSlice(n.Params, m.Params) && equal(n.Body, m.Body)
}

func (n *Return) Equal(o Node) bool {
	m, ok := o.(*Return)

	return ok && n.Tok.Equal(m.Tok) && equal(n.Output, m.Output)
}

func (n *If) Equal(o Node) bool {
	m, ok := o.(*If)

	return ok && n.Tok.Equal(m.Tok) && equal(n.Condition, m.Condition) &&
		equal(n.Then, m.Then) && equal(n.Else, m.Else)
}

func (n *While) Equal(o Node) bool {
	m, ok := o.(*While)

	return ok && n.Tok.Equal(m.Tok) && equal(n.Condition, m.Condition) &&
		equal(n.Body, m.Body)
}

func (n *DoWhile) Equal(o Node) bool {
	m, ok := o.(*DoWhile)

	return ok && n.Tok.Equal(m.Tok) && equal(n.Condition, m.Condition) &&
		equal(n.Body, m.Body)
}

func (n *For) Equal(o Node) bool {
	m, ok := o.(*For)

	return ok && n.Tok.Equal(m.Tok) && equalSlice(n.Init, m.Init) &&
		equal(n.Condition, m.Condition) && equal(n.Step, m.Step) &&
		equal(n.Body, m.Body)
}

func (n *Break) Equal(o Node) bool {
	m, ok := o.(*Break)

	return ok && n.Tok.Equal(m.Tok)
}

func (n *Continue) Equal(o Node) bool {
	m, ok := o.(*Continue)

	return ok && n.Tok.Equal(m.Tok)
}
