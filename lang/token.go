package lang

import (
	"strconv"
	"strings"
	"unicode"
)

// Token is a positioned lexeme. Line and Column are 1-based; Column counts
// runes. SourceLine holds the full text of the line the token starts on.
type Token struct {
	Line       int
	Column     int
	Lexeme     string
	SourceLine string
}

// String returns "line:column lexeme".
func (t Token) String() string {
	return strconv.Itoa(t.Line) + ":" + strconv.Itoa(t.Column) + " " + t.Lexeme
}

// Equal reports whether t and u have the same position and lexeme.
func (t Token) Equal(u Token) bool {
	return t.Line == u.Line && t.Column == u.Column && t.Lexeme == u.Lexeme
}

// compound lists the two-rune operators that lex as one token.
var compound = map[string]struct{}{
	"&&": {}, "||": {}, "==": {}, "!=": {}, "<=": {}, ">=": {},
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\v', '\f', '\r':
		return true
	}

	return false
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// Tokenize splits source into tokens.
//
// Tokens are string literals (with backslash escapes, running to end of input
// if unterminated), the compound operators && || == != <= >=, maximal runs of
// letters, digits, and underscores (a digit-led run may contain one '.'
// followed by a digit, so 1.5 is a single token), or single runes. Whitespace
// and // line comments are skipped. Invalid UTF-8 decodes to U+FFFD and lexes
// as a single-rune token.
func Tokenize(source string) []Token {
	src := []rune(source)
	lines := strings.Split(source, "\n")

	var (
		toks      []Token
		line, col = 1, 1
	)

	sourceLine := func(n int) string {
		if n-1 < len(lines) {
			return strings.TrimRight(lines[n-1], "\r")
		}

		return ""
	}

	emit := func(start, end, l, c int) {
		toks = append(toks, Token{
			Line:       l,
			Column:     c,
			Lexeme:     string(src[start:end]),
			SourceLine: sourceLine(l),
		})
	}

	// advance moves past src[i:j], tracking line and column.
	advance := func(i, j int) {
		for ; i < j; i++ {
			if src[i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
	}

	for i := 0; i < len(src); {
		r := src[i]
		j := i + 1

		switch {
		case r == '\n' || isSpace(r):
			advance(i, j)
			i = j

			continue

		case r == '/' && j < len(src) && src[j] == '/':
			for j < len(src) && src[j] != '\n' {
				j++
			}

			advance(i, j)
			i = j

			continue

		case r == '"':
			for j < len(src) {
				if src[j] == '\\' && j+1 < len(src) {
					j += 2

					continue
				}

				j++

				if src[j-1] == '"' {
					break
				}
			}

		case j < len(src):
			if _, ok := compound[string(src[i:j+1])]; ok {
				j++

				break
			}

			fallthrough

		default:
			if !isWord(r) {
				break
			}

			dotted := !isDigit(r)
			for j < len(src) {
				if isWord(src[j]) {
					j++

					continue
				}

				if !dotted && src[j] == '.' && j+1 < len(src) && isDigit(src[j+1]) {
					dotted = true
					j++

					continue
				}

				break
			}
		}

		emit(i, j, line, col)
		advance(i, j)
		i = j
	}

	return toks
}
