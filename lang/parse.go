package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"unicode/utf8"

	"github.com/ardnew/macro/log"
)

// Parse parses source as a program and returns its root scope.
//
// Failures are *SourceError values wrapping [ErrUnexpectedToken],
// [ErrMalformedExpression], [ErrSyntax], [ErrMaxDepthExceeded], or
// [ErrTrailingTokens] when parsing stops before the end of input.
func Parse(ctx context.Context, source string, opts ...Option) (*Scope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := newParser(source, makeConfig(opts...))

	root, err := p.program()
	if err != nil {
		p.logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.String("file", p.file),
		slog.Int("tokens", len(p.toks)),
		slog.Int("statements", len(root.Statements)))

	return root, nil
}

// ParseExpression parses source as a single expression. A trailing ';' is
// permitted.
func ParseExpression(
	ctx context.Context,
	source string,
	opts ...Option,
) (Producer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := newParser(source, makeConfig(opts...))

	if len(p.toks) == 0 {
		return nil, p.unexpected(0, "expression")
	}

	expr, pos, err := p.expression(0)
	if err != nil {
		return nil, err
	}

	if p.is(pos, ";") {
		pos++
	}

	if pos < len(p.toks) {
		return nil, p.errorAt(pos, ErrTrailingTokens)
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.String("file", p.file),
		slog.String("kind", expr.Kind().String()))

	return expr, nil
}

// parser is a recursive-descent parser over a token slice.
// Every method takes the cursor by value and returns the advanced cursor only
// on success, so a failed alternative leaves no trace.
type parser struct {
	toks     []Token
	file     string
	logger   log.Logger
	maxDepth int
	depth    int
}

func newParser(source string, cfg config) *parser {
	return &parser{
		toks:     Tokenize(source),
		file:     cfg.fileName,
		logger:   cfg.logger,
		maxDepth: cfg.maxDepth,
	}
}

// token returns the token at pos. Past the end of input it returns a
// zero-width token positioned just after the last token.
func (p *parser) token(pos int) Token {
	if pos < len(p.toks) {
		return p.toks[pos]
	}

	if len(p.toks) == 0 {
		return Token{Line: 1, Column: 1}
	}

	last := p.toks[len(p.toks)-1]

	return Token{
		Line:       last.Line,
		Column:     last.Column + utf8.RuneCountInString(last.Lexeme),
		SourceLine: last.SourceLine,
	}
}

func (p *parser) is(pos int, lexeme string) bool {
	return pos < len(p.toks) && p.toks[pos].Lexeme == lexeme
}

func (p *parser) errorAt(pos int, err error) error {
	return &SourceError{File: p.file, Token: p.token(pos), Err: err}
}

func (p *parser) unexpected(pos int, want string) error {
	found := "end of input"
	if pos < len(p.toks) {
		found = fmt.Sprintf("%q", p.toks[pos].Lexeme)
	}

	return p.errorAt(pos, ErrUnexpectedToken.
		Wrap(fmt.Errorf("expected %s, found %s", want, found)).
		With(slog.String("expected", want), slog.String("found", found)))
}

// expect consumes lexeme at pos.
func (p *parser) expect(pos int, lexeme string) (Token, int, error) {
	if !p.is(pos, lexeme) {
		return Token{}, pos, p.unexpected(pos, fmt.Sprintf("%q", lexeme))
	}

	return p.toks[pos], pos + 1, nil
}

// ident consumes an identifier at pos.
func (p *parser) ident(pos int, what string) (Token, int, error) {
	if pos >= len(p.toks) || !isIdent(p.toks[pos].Lexeme) {
		return Token{}, pos, p.unexpected(pos, what)
	}

	return p.toks[pos], pos + 1, nil
}

// enter guards recursion depth. Each successful call must be paired with
// leave.
func (p *parser) enter(pos int) error {
	if p.depth >= p.maxDepth {
		return p.errorAt(pos, ErrMaxDepthExceeded.With(
			slog.Int("max_depth", p.maxDepth)))
	}

	p.depth++

	return nil
}

func (p *parser) leave() { p.depth-- }

// statementStart reports whether the token at pos can begin a statement.
func (p *parser) statementStart(pos int) bool {
	if pos >= len(p.toks) {
		return false
	}

	switch p.toks[pos].Lexeme {
	case "def", "var", "if", "while", "do", "for", "return", "break",
		"continue", "{":
		return true
	}

	return p.operandStart(pos)
}

// program parses statements until the end of input.
func (p *parser) program() (*Scope, error) {
	root := &Scope{Tok: p.token(0)}

	for pos := 0; pos < len(p.toks); {
		stmts, next, err := p.statement(pos)
		if err != nil {
			if !p.statementStart(pos) {
				return nil, p.errorAt(pos, ErrTrailingTokens.With(
					slog.String("lexeme", p.toks[pos].Lexeme)))
			}

			return nil, err
		}

		root.Statements = append(root.Statements, stmts...)
		pos = next
	}

	return root, nil
}

// one adapts a single-statement result.
func one[S Statement](s S, pos int, err error) ([]Statement, int, error) {
	if err != nil {
		return nil, pos, err
	}

	return []Statement{s}, pos, nil
}

func (p *parser) statement(pos int) ([]Statement, int, error) {
	if err := p.enter(pos); err != nil {
		return nil, pos, err
	}
	defer p.leave()

	switch p.token(pos).Lexeme {
	case "def":
		return one(p.function(pos))

	case "var":
		stmts, next, err := p.variable(pos)
		if err != nil {
			return nil, pos, err
		}

		_, next, err = p.expect(next, ";")
		if err != nil {
			return nil, pos, err
		}

		return stmts, next, nil

	case "if":
		return one(p.ifElse(pos))

	case "while":
		return one(p.while(pos))

	case "do":
		return one(p.doWhile(pos))

	case "for":
		return one(p.forLoop(pos))

	case "return":
		return one(p.ret(pos))

	case "break":
		_, next, err := p.expect(pos+1, ";")
		if err != nil {
			return nil, pos, err
		}

		return []Statement{&Break{Tok: p.toks[pos]}}, next, nil

	case "continue":
		_, next, err := p.expect(pos+1, ";")
		if err != nil {
			return nil, pos, err
		}

		return []Statement{&Continue{Tok: p.toks[pos]}}, next, nil

	case "{":
		return one(p.scope(pos))
	}

	s, next, err := p.expressionStatement(pos)
	if err != nil {
		return nil, pos, err
	}

	_, next, err = p.expect(next, ";")
	if err != nil {
		return nil, pos, err
	}

	return []Statement{s}, next, nil
}

// expressionStatement parses an expression that may stand alone: a call or
// an operator application.
func (p *parser) expressionStatement(pos int) (Statement, int, error) {
	expr, next, err := p.expression(pos)
	if err != nil {
		return nil, pos, err
	}

	s, ok := expr.(Statement)
	if !ok {
		return nil, pos, p.errorAt(pos, ErrSyntax.Wrap(
			errors.New("expression is not a statement")))
	}

	return s, next, nil
}

// scope parses '{' statement* '}'.
func (p *parser) scope(pos int) (*Scope, int, error) {
	tok, next, err := p.expect(pos, "{")
	if err != nil {
		return nil, pos, err
	}

	s := &Scope{Tok: tok}

	for !p.is(next, "}") {
		if next >= len(p.toks) {
			return nil, pos, p.unexpected(next, `"}"`)
		}

		stmts, after, err := p.statement(next)
		if err != nil {
			return nil, pos, err
		}

		s.Statements = append(s.Statements, stmts...)
		next = after
	}

	return s, next + 1, nil
}

// function parses 'def' IDENT '(' params ')' scope. Parameters are injected
// as definitions at the front of the body.
func (p *parser) function(pos int) (*Define, int, error) {
	defTok := p.toks[pos]

	nameTok, next, err := p.ident(pos+1, "function name")
	if err != nil {
		return nil, pos, err
	}

	params, next, err := p.params(next)
	if err != nil {
		return nil, pos, err
	}

	body, next, err := p.scope(next)
	if err != nil {
		return nil, pos, err
	}

	stmts := make([]Statement, 0, len(params)+len(body.Statements))
	for _, v := range params {
		stmts = append(stmts, &Define{
			Tok:    v.Tok,
			Target: &Variable{Tok: v.Tok, Name: v.Name},
			Param:  true,
		})
	}

	body.Statements = append(stmts, body.Statements...)

	var target Definable = &Function{
		Tok: nameTok, Name: nameTok.Lexeme, Params: params, Body: body,
	}
	if nameTok.Lexeme == EntryName {
		target = &EntryFunction{Tok: nameTok, Params: params, Body: body}
	}

	return &Define{Tok: defTok, Target: target}, next, nil
}

// params parses '(' [IDENT {',' IDENT}] ')'.
func (p *parser) params(pos int) ([]*Variable, int, error) {
	_, next, err := p.expect(pos, "(")
	if err != nil {
		return nil, pos, err
	}

	var params []*Variable

	for !p.is(next, ")") {
		if len(params) > 0 {
			if _, next, err = p.expect(next, ","); err != nil {
				return nil, pos, err
			}
		}

		var tok Token

		tok, next, err = p.ident(next, "parameter name")
		if err != nil {
			return nil, pos, err
		}

		params = append(params, &Variable{Tok: tok, Name: tok.Lexeme})
	}

	return params, next + 1, nil
}

// variable parses 'var' IDENT ['=' expr] without the terminating ';'.
// An initializer yields a second statement assigning it.
func (p *parser) variable(pos int) ([]Statement, int, error) {
	varTok := p.toks[pos]

	nameTok, next, err := p.ident(pos+1, "variable name")
	if err != nil {
		return nil, pos, err
	}

	stmts := []Statement{&Define{
		Tok:    varTok,
		Target: &Variable{Tok: nameTok, Name: nameTok.Lexeme},
	}}

	if !p.is(next, "=") {
		return stmts, next, nil
	}

	eqTok := p.toks[next]

	init, next, err := p.expression(next + 1)
	if err != nil {
		return nil, pos, err
	}

	return append(stmts, &BinaryOperator{
		Tok: eqTok,
		Op:  OpAssign,
		LHS: &Variable{Tok: nameTok, Name: nameTok.Lexeme},
		RHS: init,
	}), next, nil
}

// condition parses '(' expr ')'.
func (p *parser) condition(pos int) (Producer, int, error) {
	_, next, err := p.expect(pos, "(")
	if err != nil {
		return nil, pos, err
	}

	expr, next, err := p.expression(next)
	if err != nil {
		return nil, pos, err
	}

	_, next, err = p.expect(next, ")")
	if err != nil {
		return nil, pos, err
	}

	return expr, next, nil
}

// ifElse parses 'if' cond scope ['else' (scope | if)].
func (p *parser) ifElse(pos int) (*If, int, error) {
	cond, next, err := p.condition(pos + 1)
	if err != nil {
		return nil, pos, err
	}

	then, next, err := p.scope(next)
	if err != nil {
		return nil, pos, err
	}

	n := &If{Tok: p.toks[pos], Condition: cond, Then: then}

	if !p.is(next, "else") {
		return n, next, nil
	}

	if p.is(next+1, "if") {
		if err := p.enter(next + 1); err != nil {
			return nil, pos, err
		}
		defer p.leave()

		nested, after, err := p.ifElse(next + 1)
		if err != nil {
			return nil, pos, err
		}

		n.Else = &Scope{Tok: nested.Tok, Statements: []Statement{nested}}

		return n, after, nil
	}

	n.Else, next, err = p.scope(next + 1)
	if err != nil {
		return nil, pos, err
	}

	return n, next, nil
}

// while parses 'while' cond scope.
func (p *parser) while(pos int) (*While, int, error) {
	cond, next, err := p.condition(pos + 1)
	if err != nil {
		return nil, pos, err
	}

	body, next, err := p.scope(next)
	if err != nil {
		return nil, pos, err
	}

	return &While{Tok: p.toks[pos], Condition: cond, Body: body}, next, nil
}

// doWhile parses 'do' scope 'while' cond ';'.
func (p *parser) doWhile(pos int) (*DoWhile, int, error) {
	body, next, err := p.scope(pos + 1)
	if err != nil {
		return nil, pos, err
	}

	_, next, err = p.expect(next, "while")
	if err != nil {
		return nil, pos, err
	}

	cond, next, err := p.condition(next)
	if err != nil {
		return nil, pos, err
	}

	_, next, err = p.expect(next, ";")
	if err != nil {
		return nil, pos, err
	}

	return &DoWhile{Tok: p.toks[pos], Condition: cond, Body: body}, next, nil
}

// forLoop parses 'for' '(' [init] ';' [expr] ';' [expr] ')' scope.
func (p *parser) forLoop(pos int) (*For, int, error) {
	n := &For{Tok: p.toks[pos]}

	_, next, err := p.expect(pos+1, "(")
	if err != nil {
		return nil, pos, err
	}

	switch {
	case p.is(next, "var"):
		n.Init, next, err = p.variable(next)
	case !p.is(next, ";"):
		var s Statement

		s, next, err = p.expressionStatement(next)
		n.Init = []Statement{s}
	}

	if err != nil {
		return nil, pos, err
	}

	if _, next, err = p.expect(next, ";"); err != nil {
		return nil, pos, err
	}

	if !p.is(next, ";") {
		if n.Condition, next, err = p.expression(next); err != nil {
			return nil, pos, err
		}
	}

	if _, next, err = p.expect(next, ";"); err != nil {
		return nil, pos, err
	}

	if !p.is(next, ")") {
		if n.Step, next, err = p.expression(next); err != nil {
			return nil, pos, err
		}
	}

	if _, next, err = p.expect(next, ")"); err != nil {
		return nil, pos, err
	}

	if n.Body, next, err = p.scope(next); err != nil {
		return nil, pos, err
	}

	return n, next, nil
}

// ret parses 'return' [expr] ';'.
func (p *parser) ret(pos int) (*Return, int, error) {
	n := &Return{Tok: p.toks[pos]}
	next := pos + 1

	if !p.is(next, ";") {
		var err error

		if n.Output, next, err = p.expression(next); err != nil {
			return nil, pos, err
		}
	}

	_, next, err := p.expect(next, ";")
	if err != nil {
		return nil, pos, err
	}

	return n, next, nil
}

// entry is one element of a flat expression: either a completed operand
// (node set) or an operator still waiting for its operands.
type entry struct {
	tok  Token
	op   Op
	node Producer
}

// operandStart reports whether the token at pos can begin an operand.
func (p *parser) operandStart(pos int) bool {
	if pos >= len(p.toks) {
		return false
	}

	s := p.toks[pos].Lexeme
	if _, ok := unaryLexeme[s]; ok || s == "(" {
		return true
	}

	if lit, err := literal(p.toks[pos]); lit != nil || err != nil {
		return true
	}

	return isIdent(s)
}

// expression collects a flat list of operands and operators, then
// assembles it into a tree by precedence.
func (p *parser) expression(pos int) (Producer, int, error) {
	if err := p.enter(pos); err != nil {
		return nil, pos, err
	}
	defer p.leave()

	var (
		list    []entry
		next    = pos
		operand = true // an operand is expected next
	)

	for next < len(p.toks) {
		tok := p.toks[next]

		if !operand {
			op, ok := binaryLexeme[tok.Lexeme]
			if !ok {
				break
			}

			list = append(list, entry{tok: tok, op: op})
			operand = true
			next++

			continue
		}

		if !p.operandStart(next) {
			break
		}

		if op, ok := unaryLexeme[tok.Lexeme]; ok {
			list = append(list, entry{tok: tok, op: op})
			next++

			continue
		}

		var (
			node Producer
			err  error
		)

		if tok.Lexeme == "(" {
			node, next, err = p.expression(next + 1)
			if err == nil {
				_, next, err = p.expect(next, ")")
			}
		} else {
			node, next, err = p.operand(next)
		}

		if err != nil {
			return nil, pos, err
		}

		list = append(list, entry{tok: tok, node: node})
		operand = false
	}

	if len(list) == 0 {
		return nil, pos, p.unexpected(pos, "expression")
	}

	node, err := p.assemble(list)
	if err != nil {
		return nil, pos, err
	}

	return node, next, nil
}

// operand parses a literal, variable, or call.
func (p *parser) operand(pos int) (Producer, int, error) {
	tok := p.toks[pos]

	lit, err := literal(tok)
	if err != nil {
		return nil, pos, p.errorAt(pos, err)
	}

	if lit != nil {
		return lit, pos + 1, nil
	}

	if !isIdent(tok.Lexeme) {
		return nil, pos, p.unexpected(pos, "operand")
	}

	if p.is(pos+1, "(") {
		return p.call(pos)
	}

	return &Variable{Tok: tok, Name: tok.Lexeme}, pos + 1, nil
}

// call parses IDENT '(' [IDENT ':' expr {',' IDENT ':' expr}] ')'.
func (p *parser) call(pos int) (*Callable, int, error) {
	tok := p.toks[pos]
	n := &Callable{Tok: tok, Name: tok.Lexeme}
	next := pos + 2

	for !p.is(next, ")") {
		var err error

		if len(n.Args) > 0 {
			if _, next, err = p.expect(next, ","); err != nil {
				return nil, pos, err
			}
		}

		var name Token

		if name, next, err = p.ident(next, "argument name"); err != nil {
			return nil, pos, err
		}

		if _, next, err = p.expect(next, ":"); err != nil {
			return nil, pos, err
		}

		var value Producer

		if value, next, err = p.expression(next); err != nil {
			return nil, pos, err
		}

		n.Args = append(n.Args, &Argument{
			Tok: name, Name: name.Lexeme, Value: value,
		})
	}

	return n, next + 1, nil
}

// assemble reduces list to a single tree, one precedence level at a time.
// Unary levels scan right to left so prefixes stack (!!a); binary levels scan
// left to right, making every binary operator left-associative.
func (p *parser) assemble(list []entry) (Producer, error) {
	malformed := func(e entry) error {
		return &SourceError{
			File:  p.file,
			Token: e.tok,
			Err: ErrMalformedExpression.With(
				slog.String("operator", e.op.String())),
		}
	}

	for _, ops := range precedence {
		if ops[0].IsUnary() {
			for i := len(list) - 1; i >= 0; i-- {
				e := list[i]
				if e.node != nil || !slices.Contains(ops, e.op) {
					continue
				}

				if i+1 >= len(list) || list[i+1].node == nil {
					return nil, malformed(e)
				}

				list[i] = entry{tok: e.tok, node: &UnaryOperator{
					Tok: e.tok, Op: e.op, Operand: list[i+1].node,
				}}
				list = slices.Delete(list, i+1, i+2)
			}

			continue
		}

		for i := 0; i < len(list); {
			e := list[i]
			if e.node != nil || !slices.Contains(ops, e.op) {
				i++

				continue
			}

			if i == 0 || i+1 >= len(list) ||
				list[i-1].node == nil || list[i+1].node == nil {
				return nil, malformed(e)
			}

			list = slices.Replace(list, i-1, i+2, entry{
				tok: list[i-1].tok,
				node: &BinaryOperator{
					Tok: e.tok, Op: e.op, LHS: list[i-1].node, RHS: list[i+1].node,
				},
			})
		}
	}

	if len(list) != 1 || list[0].node == nil {
		for _, e := range list {
			if e.node == nil {
				return nil, malformed(e)
			}
		}

		return nil, malformed(list[len(list)-1])
	}

	return list[0].node, nil
}
