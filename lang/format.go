package lang

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format writes n as source text. With indent > 0 each statement is placed
// on its own line, nested blocks indented by that many spaces; otherwise
// the output is a single line.
//
// Formatting a parsed program and parsing the result yields a tree of the
// same shape.
func Format(_ context.Context, w io.Writer, n Node, indent int) error {
	p := &printer{indent: indent}

	if s, ok := n.(*Scope); ok {
		p.statements(s.Statements, 0)
	} else {
		p.node(n, 0)
	}

	p.newline()

	_, err := io.WriteString(w, p.String())

	return err
}

// FormatString returns the source text of n with the given indentation.
func FormatString(n Node, indent int) string {
	var b strings.Builder

	_ = Format(context.Background(), &b, n, indent)

	return b.String()
}

type printer struct {
	strings.Builder

	indent int
	fresh  bool // at the start of a line
}

func (p *printer) newline() {
	if p.indent > 0 {
		p.WriteByte('\n')
		p.fresh = true
	}
}

// line starts a statement at the given depth.
func (p *printer) line(depth int) {
	switch {
	case p.Len() == 0:
	case p.indent > 0:
		if !p.fresh {
			p.WriteByte('\n')
		}

		p.WriteString(strings.Repeat(" ", p.indent*depth))
	default:
		p.WriteByte(' ')
	}

	p.fresh = false
}

func (p *printer) statements(stmts []Statement, depth int) {
	for i := 0; i < len(stmts); i++ {
		d, ok := stmts[i].(*Define)
		if ok && d.Param {
			continue
		}

		p.line(depth)

		// Rejoin "var x = e;" split by the parser.
		if v, ok := varTarget(d); ok && i+1 < len(stmts) {
			if rhs, ok := initializer(v, stmts[i+1]); ok {
				p.WriteString("var " + v.Name + " = ")
				p.expr(rhs, len(precedence))
				p.WriteByte(';')

				i++

				continue
			}
		}

		p.node(stmts[i], depth)
	}
}

func varTarget(d *Define) (*Variable, bool) {
	if d == nil {
		return nil, false
	}

	v, ok := d.Target.(*Variable)

	return v, ok
}

// initializer returns the value assigned by s if s is the assignment the
// parser generates for the initializer of v. Its target shares the token of
// the declared name.
func initializer(v *Variable, s Statement) (Producer, bool) {
	a, ok := s.(*BinaryOperator)
	if !ok || a.Op != OpAssign {
		return nil, false
	}

	lhs, ok := a.LHS.(*Variable)
	if !ok || lhs.Name != v.Name || !lhs.Tok.Equal(v.Tok) {
		return nil, false
	}

	return a.RHS, true
}

func (p *printer) block(s *Scope, depth int) {
	p.WriteByte('{')

	if s != nil && len(s.Statements) > 0 {
		p.statements(s.Statements, depth+1)
		p.line(depth)
	}

	p.WriteByte('}')
}

func (p *printer) params(params []*Variable) {
	p.WriteByte('(')

	for i, v := range params {
		if i > 0 {
			p.WriteString(", ")
		}

		p.WriteString(v.Name)
	}

	p.WriteByte(')')
}

func (p *printer) node(n Node, depth int) {
	switch n := n.(type) {
	case *Scope:
		p.block(n, depth)

	case *Define:
		switch t := n.Target.(type) {
		case *Variable:
			p.WriteString("var " + t.Name + ";")
		case *Function:
			p.WriteString("def " + t.Name)
			p.params(t.Params)
			p.WriteByte(' ')
			p.block(t.Body, depth)
		case *EntryFunction:
			p.WriteString("def " + EntryName)
			p.params(t.Params)
			p.WriteByte(' ')
			p.block(t.Body, depth)
		}

	case *If:
		p.ifElse(n, depth)

	case *While:
		p.WriteString("while (")
		p.expr(n.Condition, len(precedence))
		p.WriteString(") ")
		p.block(n.Body, depth)

	case *DoWhile:
		p.WriteString("do ")
		p.block(n.Body, depth)
		p.WriteString(" while (")
		p.expr(n.Condition, len(precedence))
		p.WriteString(");")

	case *For:
		p.WriteString("for (")

		for i, s := range n.Init {
			if d, ok := s.(*Define); ok {
				if v, ok := varTarget(d); ok {
					p.WriteString("var " + v.Name)

					if i+1 < len(n.Init) {
						if rhs, ok := initializer(v, n.Init[i+1]); ok {
							p.WriteString(" = ")
							p.expr(rhs, len(precedence))
						}
					}

					break
				}
			}

			if e, ok := s.(Producer); ok {
				p.expr(e, len(precedence))
			}
		}

		p.WriteString("; ")
		p.expr(n.Condition, len(precedence))
		p.WriteString("; ")
		p.expr(n.Step, len(precedence))
		p.WriteString(") ")
		p.block(n.Body, depth)

	case *Return:
		p.WriteString("return")

		if n.Output != nil {
			p.WriteByte(' ')
			p.expr(n.Output, len(precedence))
		}

		p.WriteByte(';')

	case *Break:
		p.WriteString("break;")

	case *Continue:
		p.WriteString("continue;")

	case Producer:
		p.expr(n, len(precedence))

		if _, ok := n.(Statement); ok {
			p.WriteByte(';')
		}

	case *Argument:
		p.WriteString(n.Name + ": ")
		p.expr(n.Value, len(precedence))

	case *Function, *EntryFunction:
		p.node(&Define{Tok: n.Token(), Target: n.(Definable)}, depth)
	}
}

func (p *printer) ifElse(n *If, depth int) {
	p.WriteString("if (")
	p.expr(n.Condition, len(precedence))
	p.WriteString(") ")
	p.block(n.Then, depth)

	if n.Else == nil {
		return
	}

	p.WriteString(" else ")

	if len(n.Else.Statements) == 1 {
		if nested, ok := n.Else.Statements[0].(*If); ok && nested.Tok.Equal(n.Else.Tok) {
			p.ifElse(nested, depth)

			return
		}
	}

	p.block(n.Else, depth)
}

// expr writes e, parenthesized when it binds looser than its context.
// outer is the precedence level of the enclosing operator.
func (p *printer) expr(e Producer, outer int) {
	switch n := e.(type) {
	case nil:

	case *Literal[bool]:
		p.WriteString(strconv.FormatBool(n.Value))

	case *Literal[int64]:
		p.WriteString(strconv.FormatInt(n.Value, 10))

	case *Literal[float64]:
		s := strconv.FormatFloat(n.Value, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}

		p.WriteString(s)

	case *Literal[string]:
		p.WriteString(quoteString(n.Value))

	case *Variable:
		p.WriteString(n.Name)

	case *Callable:
		p.WriteString(n.Name + "(")

		for i, a := range n.Args {
			if i > 0 {
				p.WriteString(", ")
			}

			p.WriteString(a.Name + ": ")
			p.expr(a.Value, len(precedence))
		}

		p.WriteByte(')')

	case *UnaryOperator:
		level := n.Op.level()
		open := level > outer

		if open {
			p.WriteByte('(')
		}

		p.WriteString(n.Op.Symbol())

		if n.Op == OpPrint {
			p.WriteByte(' ')
		}

		// Operands of prefix operators must be operands or prefixed operands.
		p.expr(n.Operand, level)

		if open {
			p.WriteByte(')')
		}

	case *BinaryOperator:
		level := n.Op.level()
		open := level > outer

		if open {
			p.WriteByte('(')
		}

		p.expr(n.LHS, level)
		p.WriteString(" " + n.Op.Symbol() + " ")
		// Binary operators associate left, so an equal right operand needs
		// parentheses.
		p.expr(n.RHS, level-1)

		if open {
			p.WriteByte(')')
		}
	}
}

// quoteString returns s as a string literal.
func quoteString(s string) string {
	var b strings.Builder

	b.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte('"')

	return b.String()
}

// FormatTree writes an indented outline of n and its descendants, one node
// per line with its position.
func FormatTree(w io.Writer, n Node) error {
	var b strings.Builder

	var walk func(n Node, depth int)

	walk = func(n Node, depth int) {
		if isNil(n) {
			return
		}

		tok := n.Token()
		fmt.Fprintf(&b, "%s%s %d:%d%s\n",
			strings.Repeat("  ", depth), n.Kind(), tok.Line, tok.Column, label(n))

		for _, c := range Children(n) {
			walk(c, depth+1)
		}
	}

	walk(n, 0)

	_, err := io.WriteString(w, b.String())

	return err
}

// label returns the node details shown by FormatTree.
func label(n Node) string {
	switch n := n.(type) {
	case *Define:
		if n.Param {
			return " param"
		}
	case *Variable:
		return " " + n.Name
	case *Literal[bool]:
		return " " + strconv.FormatBool(n.Value)
	case *Literal[int64]:
		return " " + strconv.FormatInt(n.Value, 10)
	case *Literal[float64]:
		return " " + strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *Literal[string]:
		return " " + strconv.Quote(n.Value)
	case *UnaryOperator:
		return " " + n.Op.String()
	case *BinaryOperator:
		return " " + n.Op.String()
	case *Argument:
		return " " + n.Name
	case *Callable:
		return " " + n.Name
	case *Function:
		return " " + n.Signature().String()
	case *EntryFunction:
		return " " + n.Signature().String()
	}

	return ""
}
