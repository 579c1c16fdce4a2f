package lang

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	boolPattern   = regexp.MustCompile(`^(true|false)$`)
	intPattern    = regexp.MustCompile(`^[0-9]+$`)
	doublePattern = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)
	stringPattern = regexp.MustCompile(`^"(?:[^"\\]|\\.)*"$`)
	identPattern  = regexp.MustCompile(`^[\p{L}_][\p{L}\p{Nd}_]*$`)
)

// keywords may not be used as identifiers.
var keywords = map[string]struct{}{
	"def": {}, "var": {}, "if": {}, "else": {}, "while": {}, "do": {},
	"for": {}, "return": {}, "break": {}, "continue": {},
	"true": {}, "false": {}, "print": {},
}

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool {
	_, ok := keywords[s]

	return ok
}

// Keywords returns the reserved words.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}

	return out
}

func isIdent(s string) bool {
	return identPattern.MatchString(s) && !IsKeyword(s)
}

// unquote strips the quotes of a string lexeme and resolves escapes.
// Unknown escapes keep the escaped rune.
func unquote(lexeme string) string {
	body := lexeme[1 : len(lexeme)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}

	var b strings.Builder

	esc := false

	for _, r := range body {
		if !esc {
			if r == '\\' {
				esc = true
			} else {
				b.WriteRune(r)
			}

			continue
		}

		esc = false

		switch r {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// literal classifies tok as a literal node. It returns a nil node and nil
// error when the lexeme is not a literal.
func literal(tok Token) (Producer, error) {
	s := tok.Lexeme

	switch {
	case boolPattern.MatchString(s):
		return &Literal[bool]{Tok: tok, Value: s == "true"}, nil

	case intPattern.MatchString(s):
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, ErrSyntax.Wrap(err)
		}

		return &Literal[int64]{Tok: tok, Value: v}, nil

	case doublePattern.MatchString(s):
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, ErrSyntax.Wrap(err)
		}

		return &Literal[float64]{Tok: tok, Value: v}, nil

	case stringPattern.MatchString(s):
		return &Literal[string]{Tok: tok, Value: unquote(s)}, nil
	}

	return nil, nil
}

// ClassifyLiteral returns the value of s read as a literal of the language.
// It reports false when s is not a literal.
func ClassifyLiteral(s string) (Value, bool) {
	p, err := literal(Token{Lexeme: s})
	if err != nil || p == nil {
		return nil, false
	}

	switch p := p.(type) {
	case *Literal[bool]:
		return p.Value, true
	case *Literal[int64]:
		return p.Value, true
	case *Literal[float64]:
		return p.Value, true
	case *Literal[string]:
		return p.Value, true
	}

	return nil, false
}
