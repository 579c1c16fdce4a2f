//go:generate go tool stringer --linecomment --type Kind --output kind_string.go

package lang

import (
	"slices"
	"strings"
)

// Kind identifies the concrete type of a [Node].
type Kind int

// Node kinds.
const (
	KindInvalid       Kind = iota // Invalid
	KindScope                     // Scope
	KindDefine                    // Define
	KindVariable                  // Variable
	KindBool                      // Bool
	KindInt                       // Int
	KindDouble                    // Double
	KindString                    // String
	KindUnary                     // UnaryOperator
	KindBinary                    // BinaryOperator
	KindArgument                  // Argument
	KindCallable                  // Callable
	KindFunction                  // Function
	KindEntryFunction             // EntryFunction
	KindReturn                    // Return
	KindIf                        // If
	KindWhile                     // While
	KindDoWhile                   // DoWhile
	KindFor                       // For
	KindBreak                     // Break
	KindContinue                  // Continue
)

// EntryName is the name of the function called when a program runs.
const EntryName = "main"

// Node is any element of a syntax tree.
// The set of implementations is closed to this package.
type Node interface {
	Token() Token
	Kind() Kind
	Equal(Node) bool
	node()
}

// Statement is a node that may appear directly in a [Scope].
type Statement interface {
	Node
	statement()
}

// Producer is a node that evaluates to a value.
type Producer interface {
	Node
	producer()
}

// Definable is a node that a [Define] introduces into a scope.
type Definable interface {
	Node
	definable()
}

// Invocable is a definable with a parameter list and a body.
type Invocable interface {
	Definable
	Signature() Signature
	Block() *Scope
}

// Signature identifies a function by name and parameter set.
type Signature struct {
	Name   string
	Params []string
}

// Key returns a string unique to the name and the unordered parameter set.
func (s Signature) Key() string {
	p := slices.Clone(s.Params)
	slices.Sort(p)

	return s.Name + "(" + strings.Join(p, ",") + ")"
}

// Accepts reports whether names is exactly the parameter set.
func (s Signature) Accepts(names []string) bool {
	if len(names) != len(s.Params) {
		return false
	}

	for _, n := range names {
		if !slices.Contains(s.Params, n) {
			return false
		}
	}

	return true
}

func (s Signature) String() string {
	return s.Name + "(" + strings.Join(s.Params, ", ") + ")"
}

type (
	// Scope is a block of statements with its own namespace.
	// The root of every parsed program is a Scope.
	Scope struct {
		Tok        Token
		Statements []Statement
	}

	// Define introduces a variable or function. Param is set for the
	// definitions injected at the front of a function body for each
	// parameter.
	Define struct {
		Tok    Token
		Target Definable
		Param  bool
	}

	// Variable references or defines a named value.
	Variable struct {
		Tok  Token
		Name string
	}

	// Literal is a constant of one of the built-in value types.
	Literal[T bool | int64 | float64 | string] struct {
		Tok   Token
		Value T
	}

	// UnaryOperator applies Op to a single operand.
	UnaryOperator struct {
		Tok     Token
		Op      Op
		Operand Producer
	}

	// BinaryOperator applies Op to two operands.
	BinaryOperator struct {
		Tok Token
		Op  Op
		LHS Producer
		RHS Producer
	}

	// Argument is one name: value pair of a call.
	Argument struct {
		Tok   Token
		Name  string
		Value Producer
	}

	// Callable invokes a function or host command with named arguments.
	Callable struct {
		Tok  Token
		Name string
		Args []*Argument
	}

	// Function is a named user-defined function.
	Function struct {
		Tok    Token
		Name   string
		Params []*Variable
		Body   *Scope
	}

	// EntryFunction is the "main" function of a program.
	EntryFunction struct {
		Tok    Token
		Params []*Variable
		Body   *Scope
	}

	// Return leaves the enclosing function. Output may be nil.
	Return struct {
		Tok    Token
		Output Producer
	}

	// If runs Then when Condition holds, otherwise Else (which may be nil).
	If struct {
		Tok       Token
		Condition Producer
		Then      *Scope
		Else      *Scope
	}

	// While runs Body as long as Condition holds.
	While struct {
		Tok       Token
		Condition Producer
		Body      *Scope
	}

	// DoWhile runs Body once, then as long as Condition holds.
	DoWhile struct {
		Tok       Token
		Condition Producer
		Body      *Scope
	}

	// For is a C-style loop. Condition and Step may be nil.
	For struct {
		Tok       Token
		Init      []Statement
		Condition Producer
		Step      Producer
		Body      *Scope
	}

	// Break leaves the innermost loop.
	Break struct{ Tok Token }

	// Continue skips to the next iteration of the innermost loop.
	Continue struct{ Tok Token }
)

func (n *Scope) Token() Token          { return n.Tok }
func (n *Define) Token() Token         { return n.Tok }
func (n *Variable) Token() Token       { return n.Tok }
func (n *Literal[T]) Token() Token     { return n.Tok }
func (n *UnaryOperator) Token() Token  { return n.Tok }
func (n *BinaryOperator) Token() Token { return n.Tok }
func (n *Argument) Token() Token       { return n.Tok }
func (n *Callable) Token() Token       { return n.Tok }
func (n *Function) Token() Token       { return n.Tok }
func (n *EntryFunction) Token() Token  { return n.Tok }
func (n *Return) Token() Token         { return n.Tok }
func (n *If) Token() Token             { return n.Tok }
func (n *While) Token() Token          { return n.Tok }
func (n *DoWhile) Token() Token        { return n.Tok }
func (n *For) Token() Token            { return n.Tok }
func (n *Break) Token() Token          { return n.Tok }
func (n *Continue) Token() Token       { return n.Tok }

func (*Scope) Kind() Kind          { return KindScope }
func (*Define) Kind() Kind         { return KindDefine }
func (*Variable) Kind() Kind       { return KindVariable }
func (*UnaryOperator) Kind() Kind  { return KindUnary }
func (*BinaryOperator) Kind() Kind { return KindBinary }
func (*Argument) Kind() Kind       { return KindArgument }
func (*Callable) Kind() Kind       { return KindCallable }
func (*Function) Kind() Kind       { return KindFunction }
func (*EntryFunction) Kind() Kind  { return KindEntryFunction }
func (*Return) Kind() Kind         { return KindReturn }
func (*If) Kind() Kind             { return KindIf }
func (*While) Kind() Kind          { return KindWhile }
func (*DoWhile) Kind() Kind        { return KindDoWhile }
func (*For) Kind() Kind            { return KindFor }
func (*Break) Kind() Kind          { return KindBreak }
func (*Continue) Kind() Kind       { return KindContinue }

func (n *Literal[T]) Kind() Kind {
	switch any(n.Value).(type) {
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindDouble
	case string:
		return KindString
	}

	return KindInvalid
}

func (*Scope) node()          {}
func (*Define) node()         {}
func (*Variable) node()       {}
func (*Literal[T]) node()     {}
func (*UnaryOperator) node()  {}
func (*BinaryOperator) node() {}
func (*Argument) node()       {}
func (*Callable) node()       {}
func (*Function) node()       {}
func (*EntryFunction) node()  {}
func (*Return) node()         {}
func (*If) node()             {}
func (*While) node()          {}
func (*DoWhile) node()        {}
func (*For) node()            {}
func (*Break) node()          {}
func (*Continue) node()       {}

func (*Scope) statement()          {}
func (*Define) statement()         {}
func (*UnaryOperator) statement()  {}
func (*BinaryOperator) statement() {}
func (*Callable) statement()       {}
func (*Return) statement()         {}
func (*If) statement()             {}
func (*While) statement()          {}
func (*DoWhile) statement()        {}
func (*For) statement()            {}
func (*Break) statement()          {}
func (*Continue) statement()       {}

func (*Variable) producer()       {}
func (*Literal[T]) producer()     {}
func (*UnaryOperator) producer()  {}
func (*BinaryOperator) producer() {}
func (*Callable) producer()       {}

func (*Variable) definable()      {}
func (*Function) definable()      {}
func (*EntryFunction) definable() {}

func paramNames(params []*Variable) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}

	return names
}

// Signature returns the function name and parameter names.
func (n *Function) Signature() Signature {
	return Signature{Name: n.Name, Params: paramNames(n.Params)}
}

// Block returns the function body.
func (n *Function) Block() *Scope { return n.Body }

// Signature returns [EntryName] and the parameter names.
func (n *EntryFunction) Signature() Signature {
	return Signature{Name: EntryName, Params: paramNames(n.Params)}
}

// Block returns the function body.
func (n *EntryFunction) Block() *Scope { return n.Body }

// ArgNames returns the argument names of a call in order.
func (n *Callable) ArgNames() []string {
	names := make([]string, len(n.Args))
	for i, a := range n.Args {
		names[i] = a.Name
	}

	return names
}

// DefinedName returns the name a Define introduces.
func (n *Define) DefinedName() string {
	switch t := n.Target.(type) {
	case *Variable:
		return t.Name
	case Invocable:
		return t.Signature().Name
	}

	return ""
}

// Children returns the direct children of n in source order.
// Nil optional children are omitted.
func Children(n Node) []Node {
	var out []Node

	add := func(c ...Node) {
		for _, x := range c {
			if !isNil(x) {
				out = append(out, x)
			}
		}
	}

	switch n := n.(type) {
	case *Scope:
		for _, s := range n.Statements {
			add(s)
		}
	case *Define:
		add(n.Target)
	case *UnaryOperator:
		add(n.Operand)
	case *BinaryOperator:
		add(n.LHS, n.RHS)
	case *Argument:
		add(n.Value)
	case *Callable:
		for _, a := range n.Args {
			add(a)
		}
	case *Function:
		for _, p := range n.Params {
			add(p)
		}

		add(n.Body)
	case *EntryFunction:
		for _, p := range n.Params {
			add(p)
		}

		add(n.Body)
	case *Return:
		add(n.Output)
	case *If:
		add(n.Condition, n.Then, n.Else)
	case *While:
		add(n.Condition, n.Body)
	case *DoWhile:
		add(n.Body, n.Condition)
	case *For:
		for _, s := range n.Init {
			add(s)
		}

		add(n.Condition, n.Step, n.Body)
	}

	return out
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n Node) bool {
	if n == nil {
		return true
	}

	switch n := n.(type) {
	case *Scope:
		return n == nil
	case *Define:
		return n == nil
	case *Variable:
		return n == nil
	case *Literal[bool]:
		return n == nil
	case *Literal[int64]:
		return n == nil
	case *Literal[float64]:
		return n == nil
	case *Literal[string]:
		return n == nil
	case *UnaryOperator:
		return n == nil
	case *BinaryOperator:
		return n == nil
	case *Argument:
		return n == nil
	case *Callable:
		return n == nil
	case *Function:
		return n == nil
	case *EntryFunction:
		return n == nil
	case *Return:
		return n == nil
	case *If:
		return n == nil
	case *While:
		return n == nil
	case *DoWhile:
		return n == nil
	case *For:
		return n == nil
	case *Break:
		return n == nil
	case *Continue:
		return n == nil
	}

	return false
}
