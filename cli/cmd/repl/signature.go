package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

// optionalMark follows the name of an optional command argument in hints.
const optionalMark = "?"

// signatureHintStyle styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // name of the called function
	argIndex int    // current argument index (0-based)
	argName  string // name typed for the current argument, possibly partial
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall analyzes the input to determine if the cursor is inside
// a function call's argument list. Parentheses inside string literals are
// not counted.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Record the unclosed open parens before the cursor, outermost first.
	var (
		open     []int
		inString bool
		escaped  bool
	)

	for i, r := range input[:cursor] {
		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case inString:
		case r == '(':
			open = append(open, i)
		case r == ')' && len(open) > 0:
			open = open[:len(open)-1]
		}
	}

	if len(open) == 0 {
		return functionCall{}
	}

	paren := open[len(open)-1]

	_, nameStart, _ := wordBounds(input[:paren], paren)

	name := input[nameStart:paren]
	if name == "" {
		return functionCall{}
	}

	// Split the argument list at commas outside nested parens and strings.
	call := functionCall{name: name, inCall: true}
	argStart := paren + 1
	depth := 0
	inString, escaped = false, false

	for i, r := range input[paren+1 : cursor] {
		switch {
		case escaped:
			escaped = false
		case inString && r == '\\':
			escaped = true
		case r == '"':
			inString = !inString
		case inString:
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ',' && depth == 0:
			call.argIndex++
			argStart = paren + 1 + i + utf8.RuneLen(r)
		}
	}

	arg, _, _ := strings.Cut(input[argStart:cursor], ":")
	call.argName = strings.TrimSpace(arg)

	return call
}

// hint is one signature offered for a call.
type hint struct {
	name   string
	params []string
}

// signatures returns the hints for calls to name: each definition of a
// session function, or else the host command of that name.
func (m model) signatures(name string) []hint {
	var hints []hint

	for _, sig := range m.session.Signatures(name) {
		hints = append(hints, hint{name: sig.Name, params: sig.Params})
	}

	if len(hints) > 0 || m.commands == nil {
		return hints
	}

	c, err := m.commands.Command(m.session.CommandScope(), name)
	if err != nil {
		return nil
	}

	h := hint{name: name}

	args := c.Arguments()
	for _, n := range args.Names() {
		if a, ok := args.Lookup(n); ok && a.Optional {
			n += optionalMark
		}

		h.params = append(h.params, n)
	}

	return []hint{h}
}

// callable reports whether name refers to a session function or a host
// command.
func (m model) callable(name string) bool {
	if len(m.session.Signatures(name)) > 0 {
		return true
	}

	if m.commands == nil {
		return false
	}

	_, err := m.commands.Command(m.session.CommandScope(), name)

	return err == nil
}

// renderSignatureHint renders each signature with the parameter named by
// the current argument highlighted. A partial name highlights the
// parameters it prefixes.
func renderSignatureHint(hints []hint, current string) string {
	parts := make([]string, 0, len(hints))

	for _, h := range hints {
		var b strings.Builder

		b.WriteString(signatureNameStyle.Render(h.name))
		b.WriteString(signatureStyle.Render("("))

		for i, param := range h.params {
			if i > 0 {
				b.WriteString(signatureSeparatorStyle.Render(", "))
			}

			name := strings.TrimSuffix(param, optionalMark)
			if current != "" && strings.HasPrefix(name, current) {
				b.WriteString(currentParamStyle.Render(param))
			} else {
				b.WriteString(signatureStyle.Render(param))
			}
		}

		b.WriteString(signatureStyle.Render(")"))
		parts = append(parts, b.String())
	}

	return strings.Join(parts, signatureSeparatorStyle.Render("  |  "))
}
