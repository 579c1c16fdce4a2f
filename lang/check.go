package lang

import (
	"slices"
	"strings"
)

// DefaultChecks returns a fresh instance of every built-in check.
func DefaultChecks() []Check {
	return []Check{
		&LoopCheck{},
		&UnreachableCheck{},
		&RootReturnCheck{},
		&ParametersCheck{},
		&EntryCheck{},
		&UndefinedCheck{},
		&DuplicateCheck{},
		&OperatorCheck{},
		&AssignmentCheck{},
		&StructureCheck{},
	}
}

func on(phase Phase, kinds ...Kind) []Signal {
	sigs := make([]Signal, len(kinds))
	for i, k := range kinds {
		sigs[i] = Signal{Phase: phase, Kind: k}
	}

	return sigs
}

// LoopCheck reports break and continue outside a loop of the same function.
type LoopCheck struct{}

func (*LoopCheck) Name() string { return "loop" }

func (*LoopCheck) Signals() []Signal { return on(Start, KindBreak, KindContinue) }

func (*LoopCheck) Handle(a *Analysis, _ Signal, n Node) {
	if a.enclosing(isLoop, isInvocable) == nil {
		a.Reportf(n, "%s outside loop", n.Token().Lexeme)
	}
}

// UnreachableCheck reports the first statement following a break, continue,
// or return in the same scope.
type UnreachableCheck struct{}

func (*UnreachableCheck) Name() string { return "unreachable" }

func (*UnreachableCheck) Signals() []Signal { return on(Start, KindScope) }

func (*UnreachableCheck) Handle(a *Analysis, _ Signal, n Node) {
	stmts := n.(*Scope).Statements

	for i, s := range stmts[:max(len(stmts)-1, 0)] {
		switch s.(type) {
		case *Break, *Continue, *Return:
			a.Report(
				a.Diagnostic(stmts[i+1], "unreachable statement"),
				a.Diagnostic(s, "after %s", s.Token().Lexeme),
			)

			return
		}
	}
}

// RootReturnCheck reports return statements outside any function.
type RootReturnCheck struct{}

func (*RootReturnCheck) Name() string { return "root-return" }

func (*RootReturnCheck) Signals() []Signal { return on(Start, KindReturn) }

func (*RootReturnCheck) Handle(a *Analysis, _ Signal, n Node) {
	if a.enclosing(isInvocable, nil) == nil {
		a.Reportf(n, "return outside function")
	}
}

// ParametersCheck reports repeated parameter names of a function and
// repeated argument names of a call.
type ParametersCheck struct{}

func (*ParametersCheck) Name() string { return "parameters" }

func (*ParametersCheck) Signals() []Signal {
	return on(Start, KindFunction, KindEntryFunction, KindCallable)
}

func (*ParametersCheck) Handle(a *Analysis, _ Signal, n Node) {
	var names []Node

	switch n := n.(type) {
	case *Function:
		for _, p := range n.Params {
			names = append(names, p)
		}
	case *EntryFunction:
		for _, p := range n.Params {
			names = append(names, p)
		}
	case *Callable:
		for _, arg := range n.Args {
			names = append(names, arg)
		}
	}

	seen := make(map[string]Node, len(names))

	for _, p := range names {
		name := p.Token().Lexeme
		if first, ok := seen[name]; ok {
			a.Report(
				a.Diagnostic(p, "duplicate name %q", name),
				a.Diagnostic(first, "first use of %q", name),
			)

			continue
		}

		seen[name] = p
	}
}

// EntryCheck reports a missing or repeated main function, and main defined
// outside the root scope.
type EntryCheck struct {
	entries []Node
}

func (*EntryCheck) Name() string { return "entry" }

func (*EntryCheck) Signals() []Signal {
	return append(on(Start, KindScope, KindEntryFunction), on(End, KindScope)...)
}

func (c *EntryCheck) Handle(a *Analysis, sig Signal, n Node) {
	switch {
	case sig.Kind == KindEntryFunction:
		// The root scope and the Define enclose every top-level definition.
		if len(a.Ancestors()) != 2 {
			a.Reportf(n, "function %q must be defined in the root scope", EntryName)

			return
		}

		c.entries = append(c.entries, n)

	case !a.AtRoot():

	case sig.Phase == Start:
		c.entries = nil

	case len(c.entries) == 0:
		a.Reportf(n, "no function %q defined", EntryName)

	default:
		for _, e := range c.entries[1:] {
			a.Report(
				a.Diagnostic(e, "function %q redefined", EntryName),
				a.Diagnostic(c.entries[0], "first defined here"),
			)
		}
	}
}

// UndefinedCheck reports references to variables that are not declared in
// an enclosing scope. Function bodies also see every variable declared at
// the top level, since main runs after the top-level statements.
type UndefinedCheck struct {
	names  []string
	frames []int
	global map[string]struct{}
}

func (*UndefinedCheck) Name() string { return "undefined" }

func (*UndefinedCheck) Signals() []Signal {
	return append(
		on(Start, KindScope, KindFor, KindDefine, KindVariable),
		on(End, KindScope, KindFor, KindBinary)...,
	)
}

func (c *UndefinedCheck) push() { c.frames = append(c.frames, len(c.names)) }

func (c *UndefinedCheck) pop() {
	c.names = c.names[:c.frames[len(c.frames)-1]]
	c.frames = c.frames[:len(c.frames)-1]
}

func (c *UndefinedCheck) declare(name string) { c.names = append(c.names, name) }

func (c *UndefinedCheck) resolves(a *Analysis, name string) bool {
	if slices.Contains(c.names, name) {
		return true
	}

	if a.enclosing(isInvocable, nil) == nil {
		return false
	}

	_, ok := c.global[name]

	return ok
}

// collectGlobals records the variables declared or assigned at top level.
func (c *UndefinedCheck) collectGlobals(root *Scope) {
	c.global = make(map[string]struct{})

	for _, s := range root.Statements {
		switch s := s.(type) {
		case *Define:
			if v, ok := s.Target.(*Variable); ok {
				c.global[v.Name] = struct{}{}
			}
		case *BinaryOperator:
			if v, ok := s.LHS.(*Variable); ok && s.Op == OpAssign {
				c.global[v.Name] = struct{}{}
			}
		}
	}
}

func (c *UndefinedCheck) Handle(a *Analysis, sig Signal, n Node) {
	if sig.Phase == End {
		switch n := n.(type) {
		case *Scope, *For:
			c.pop()
		case *BinaryOperator:
			if v, ok := n.LHS.(*Variable); ok && n.Op == OpAssign &&
				!c.resolves(a, v.Name) {
				c.declare(v.Name)
			}
		}

		return
	}

	switch n := n.(type) {
	case *Scope:
		if a.AtRoot() {
			c.names, c.frames = c.names[:0], c.frames[:0]
			c.collectGlobals(n)
		}

		c.push()

	case *For:
		c.push()

	case *Define:
		if v, ok := n.Target.(*Variable); ok {
			c.declare(v.Name)
		}

	case *Variable:
		switch p := a.Parent().(type) {
		case *Define, *Function, *EntryFunction:
			return
		case *BinaryOperator:
			if p.Op == OpAssign && p.LHS == Producer(n) {
				return
			}
		}

		if !c.resolves(a, n.Name) {
			a.Reportf(n, "undefined variable %q", n.Name)
		}
	}
}

// DuplicateCheck reports variables and functions defined twice in one scope.
// Functions are distinguished by name and parameter set; a variable and a
// function may not share a name.
type DuplicateCheck struct{}

func (*DuplicateCheck) Name() string { return "duplicate" }

func (*DuplicateCheck) Signals() []Signal { return on(Start, KindScope) }

func (*DuplicateCheck) Handle(a *Analysis, _ Signal, n Node) {
	var (
		vars  = make(map[string]*Define)
		funcs = make(map[string]*Define)
		names = make(map[string]*Define)
	)

	report := func(d, first *Define, what string) {
		a.Report(
			a.Diagnostic(d.Target, "duplicate definition of %s", what),
			a.Diagnostic(first.Target, "previous definition of %s", what),
		)
	}

	for _, s := range n.(*Scope).Statements {
		d, ok := s.(*Define)
		if !ok || d.Target == nil {
			continue
		}

		name := d.DefinedName()

		switch t := d.Target.(type) {
		case *Variable:
			if first, ok := vars[name]; ok {
				// Repeated parameters are reported by ParametersCheck.
				if !first.Param || !d.Param {
					report(d, first, "variable "+quote(name))
				}

				continue
			}

			if first, ok := names[name]; ok {
				report(d, first, quote(name))

				continue
			}

			vars[name] = d

		case Invocable:
			key := t.Signature().Key()
			if first, ok := funcs[key]; ok {
				report(d, first, "function "+t.Signature().String())

				continue
			}

			if first, ok := vars[name]; ok {
				report(d, first, quote(name))

				continue
			}

			funcs[key] = d

			if _, ok := names[name]; !ok {
				names[name] = d
			}
		}
	}
}

func quote(s string) string { return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"` }

// OperatorCheck reports operators missing an operand or an operation.
type OperatorCheck struct{}

func (*OperatorCheck) Name() string { return "operator" }

func (*OperatorCheck) Signals() []Signal { return on(Start, KindUnary, KindBinary) }

func (*OperatorCheck) Handle(a *Analysis, _ Signal, n Node) {
	switch n := n.(type) {
	case *UnaryOperator:
		if n.Op == OpNone || !n.Op.IsUnary() {
			a.Reportf(n, "invalid unary operation %s", n.Op)
		}

		if n.Operand == nil {
			a.Reportf(n, "operator %q is missing its operand", n.Op.Symbol())
		}

	case *BinaryOperator:
		if n.Op == OpNone || n.Op.IsUnary() {
			a.Reportf(n, "invalid binary operation %s", n.Op)
		}

		if n.LHS == nil || n.RHS == nil {
			a.Reportf(n, "operator %q is missing an operand", n.Op.Symbol())
		}
	}
}

// AssignmentCheck reports assignments to anything but a variable.
type AssignmentCheck struct{}

func (*AssignmentCheck) Name() string { return "assignment" }

func (*AssignmentCheck) Signals() []Signal { return on(Start, KindBinary) }

func (*AssignmentCheck) Handle(a *Analysis, _ Signal, n Node) {
	b := n.(*BinaryOperator)
	if b.Op != OpAssign || b.LHS == nil {
		return
	}

	if _, ok := b.LHS.(*Variable); !ok {
		a.Reportf(b, "cannot assign to %s", b.LHS.Kind())
	}
}

// StructureCheck reports nodes missing a required child.
type StructureCheck struct{}

func (*StructureCheck) Name() string { return "structure" }

func (*StructureCheck) Signals() []Signal {
	return on(Start, KindDefine, KindFunction, KindEntryFunction, KindIf,
		KindWhile, KindDoWhile, KindFor, KindArgument)
}

func (*StructureCheck) Handle(a *Analysis, _ Signal, n Node) {
	missing := func(what string) { a.Reportf(n, "%s is missing its %s", n.Kind(), what) }

	switch n := n.(type) {
	case *Define:
		if n.Target == nil {
			missing("target")
		}
	case *Function:
		if n.Body == nil {
			missing("body")
		}
	case *EntryFunction:
		if n.Body == nil {
			missing("body")
		}
	case *If:
		if n.Condition == nil {
			missing("condition")
		}

		if n.Then == nil {
			missing("body")
		}
	case *While:
		if n.Condition == nil {
			missing("condition")
		}

		if n.Body == nil {
			missing("body")
		}
	case *DoWhile:
		if n.Condition == nil {
			missing("condition")
		}

		if n.Body == nil {
			missing("body")
		}
	case *For:
		if n.Body == nil {
			missing("body")
		}
	case *Argument:
		if n.Value == nil {
			missing("value")
		}
	}
}
