package lang

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadInput = NewError("failed to read input")

	// Syntax errors.
	ErrSyntax              = NewError("syntax error")
	ErrUnexpectedToken     = NewError("unexpected token")
	ErrMalformedExpression = NewError("malformed expression")
	ErrTrailingTokens      = NewError("unconsumed trailing tokens")
	ErrMaxDepthExceeded    = NewError("maximum nesting depth exceeded")

	// Interpretation errors.
	ErrNotFound              = NewError("name not found")
	ErrNameExists            = NewError("name already declared")
	ErrMissingOperator       = NewError("operator not defined for operand types")
	ErrBadBoolConversion     = NewError("value has no boolean conversion")
	ErrOperatorExists        = NewError("operator already registered")
	ErrReservedOperator      = NewError("operator cannot be registered")
	ErrMalformedOperator     = NewError("operator arity or implementation invalid")
	ErrMissingProvider       = NewError("no command provider")
	ErrArgumentCount         = NewError("argument count mismatch")
	ErrMissingArgument       = NewError("missing argument")
	ErrUnknownArgument       = NewError("unknown argument")
	ErrNoEntry               = NewError("no entry function")
	ErrInvalidAssignment     = NewError("invalid assignment target")
	ErrBreakOutsideLoop      = NewError("break or continue outside loop")
	ErrReturnOutsideFunction = NewError("return outside function")
	ErrDivisionByZero        = NewError("integer division by zero")
	ErrInvalidNode           = NewError("malformed syntax tree")
	ErrCommand               = NewError("command failed")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error with the same message.
// [Error.With] and [Error.Wrap] return new values, so sentinels are matched
// by message rather than identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// SourceError anchors an error at the token of the source that caused it.
type SourceError struct {
	File  string
	Token Token
	Err   error
}

// at wraps err in a SourceError anchored at tok, unless err already carries
// a source position.
func at(file string, tok Token, err error) error {
	if err == nil {
		return nil
	}

	var se *SourceError
	if errors.As(err, &se) {
		return err
	}

	return &SourceError{File: file, Token: tok, Err: err}
}

// Position returns the "file:line:column" location of the error.
func (e *SourceError) Position() string {
	return e.File + ":" + strconv.Itoa(e.Token.Line) + ":" +
		strconv.Itoa(e.Token.Column)
}

// Error implements the error interface.
func (e *SourceError) Error() string {
	return e.Position() + ": " + e.Err.Error()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *SourceError) Unwrap() error { return e.Err }

// LogValue implements slog.LogValuer.
func (e *SourceError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("file", e.File),
		slog.Int("line", e.Token.Line),
		slog.Int("column", e.Token.Column),
		slog.String("lexeme", e.Token.Lexeme),
	}

	var ee *Error
	if errors.As(e.Err, &ee) {
		return slog.GroupValue(append(attrs, ee.LogValue().Group()...)...)
	}

	return slog.GroupValue(append(attrs, slog.String("error", e.Err.Error()))...)
}

// Excerpt writes the offending source line with a caret under the error
// column. Nothing is written when the source line is unknown.
func (e *SourceError) Excerpt(w io.Writer) error {
	return excerpt(w, e.Token.Line, e.Token.Column, e.Token.SourceLine)
}

// excerpt renders a source line and a caret marking column:
//
//	  3 | var x = ;
//	    |         ^
func excerpt(w io.Writer, line, column int, src string) error {
	if src == "" || line <= 0 {
		return nil
	}

	num := strconv.Itoa(line)

	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(src)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", len(num)+2))
	b.WriteString(" | ")

	// Preserve tabs so the caret lines up in a terminal.
	for i, r := range []rune(src) {
		if i >= column-1 {
			break
		}

		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}

	b.WriteString("^\n")

	_, err := io.WriteString(w, b.String())

	return err
}
