package lang

import (
	"fmt"
	"slices"
)

// Phase distinguishes entering a node from leaving it.
type Phase int

// Walk phases.
const (
	Start Phase = iota
	End
)

func (p Phase) String() string {
	if p == End {
		return "End"
	}

	return "Start"
}

// Signal is emitted to checks when the walker enters or leaves a node.
type Signal struct {
	Phase Phase
	Kind  Kind
}

// Check is one independent analysis rule. The walker calls Handle for every
// signal the check subscribes to.
type Check interface {
	Name() string
	Signals() []Signal
	Handle(a *Analysis, sig Signal, n Node)
}

// Analysis is the walk state shared by the checks of one [Analyse] call.
type Analysis struct {
	file       string
	root       *Scope
	ancestors  []Node
	context    []Diagnostic
	violations [][]Diagnostic
	check      string
}

// Analyse walks root once and returns the violations found by checks,
// or by [DefaultChecks] if none are given.
//
// Each violation lists its cause first, then any related locations, then the
// enclosing constructs from innermost to outermost.
func Analyse(root *Scope, fileName string, checks ...Check) [][]Diagnostic {
	if root == nil {
		return nil
	}

	if fileName == "" {
		fileName = DefaultFileName
	}

	if len(checks) == 0 {
		checks = DefaultChecks()
	}

	subs := make(map[Signal][]Check)

	for _, c := range checks {
		for _, sig := range c.Signals() {
			subs[sig] = append(subs[sig], c)
		}
	}

	a := &Analysis{file: fileName, root: root}
	a.walk(root, subs)

	return a.violations
}

// File returns the file name diagnostics are reported against.
func (a *Analysis) File() string { return a.file }

// Root returns the scope being analysed.
func (a *Analysis) Root() *Scope { return a.root }

// Ancestors returns the nodes enclosing the current node, outermost first.
// The slice must not be modified.
func (a *Analysis) Ancestors() []Node { return a.ancestors }

// Parent returns the node directly enclosing the current node, or nil.
func (a *Analysis) Parent() Node {
	if len(a.ancestors) == 0 {
		return nil
	}

	return a.ancestors[len(a.ancestors)-1]
}

// AtRoot reports whether the current node is the root scope.
func (a *Analysis) AtRoot() bool { return len(a.ancestors) == 0 }

// Diagnostic returns a diagnostic positioned at n.
func (a *Analysis) Diagnostic(n Node, format string, args ...any) Diagnostic {
	tok := n.Token()

	return Diagnostic{
		Check:      a.check,
		File:       a.file,
		Line:       tok.Line,
		Column:     tok.Column,
		Message:    fmt.Sprintf(format, args...),
		SourceLine: tok.SourceLine,
	}
}

// Report records a violation caused by n, followed by related diagnostics
// and the current context.
func (a *Analysis) Report(cause Diagnostic, related ...Diagnostic) {
	v := make([]Diagnostic, 0, 1+len(related)+len(a.context))
	v = append(v, cause)
	v = append(v, related...)

	for i := len(a.context) - 1; i >= 0; i-- {
		v = append(v, a.context[i])
	}

	a.violations = append(a.violations, v)
}

// Reportf records a violation caused by n with no related locations.
func (a *Analysis) Reportf(n Node, format string, args ...any) {
	a.Report(a.Diagnostic(n, format, args...))
}

// describe returns the context message pushed while walking inside n.
func describe(n Node) (string, bool) {
	switch n := n.(type) {
	case *Function:
		return fmt.Sprintf("in function %q", n.Name), true
	case *EntryFunction:
		return fmt.Sprintf("in function %q", EntryName), true
	case *While:
		return "in while loop", true
	case *DoWhile:
		return "in do-while loop", true
	case *For:
		return "in for loop", true
	case *If:
		return "in if statement", true
	case *Callable:
		return fmt.Sprintf("in call to %q", n.Name), true
	}

	return "", false
}

func (a *Analysis) emit(sig Signal, n Node, subs map[Signal][]Check) {
	for _, c := range subs[sig] {
		a.check = c.Name()
		c.Handle(a, sig, n)
	}

	a.check = ""
}

func (a *Analysis) walk(n Node, subs map[Signal][]Check) {
	if isNil(n) {
		return
	}

	a.emit(Signal{Phase: Start, Kind: n.Kind()}, n, subs)

	msg, ok := describe(n)
	if ok {
		a.context = append(a.context, a.Diagnostic(n, "%s", msg))
	}

	a.ancestors = append(a.ancestors, n)

	for _, c := range Children(n) {
		a.walk(c, subs)
	}

	a.ancestors = a.ancestors[:len(a.ancestors)-1]

	if ok {
		a.context = a.context[:len(a.context)-1]
	}

	a.emit(Signal{Phase: End, Kind: n.Kind()}, n, subs)
}

// enclosing returns the innermost ancestor for which match is true, stopping
// at the first ancestor for which stop is true.
func (a *Analysis) enclosing(match, stop func(Node) bool) Node {
	for _, n := range slices.Backward(a.ancestors) {
		if match(n) {
			return n
		}

		if stop != nil && stop(n) {
			return nil
		}
	}

	return nil
}

func isLoop(n Node) bool {
	switch n.(type) {
	case *While, *DoWhile, *For:
		return true
	}

	return false
}

func isInvocable(n Node) bool {
	_, ok := n.(Invocable)

	return ok
}
