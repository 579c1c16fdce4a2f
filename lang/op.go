//go:generate go tool stringer --linecomment --type Op --output op_string.go

package lang

// Op identifies a unary or binary operation.
type Op int

// Operations, in no particular order of precedence.
const (
	OpNone         Op = iota // NONE
	OpNot                    // NOT
	OpNegate                 // NEGATE
	OpPositive               // POSITIVE
	OpPrint                  // PRINT
	OpBool                   // BOOL
	OpMultiply               // MULTIPLY
	OpDivide                 // DIVIDE
	OpModulo                 // MODULO
	OpAdd                    // ADD
	OpSubtract               // SUBTRACT
	OpLess                   // LESS
	OpLessEqual              // LESS_EQUAL
	OpGreater                // GREATER
	OpGreaterEqual           // GREATER_EQUAL
	OpEqual                  // EQUAL
	OpNotEqual               // NOT_EQUAL
	OpAnd                    // AND
	OpOr                     // OR
	OpAssign                 // ASSIGN
)

var opInfo = [...]struct {
	symbol string
	unary  bool
}{
	OpNone:         {"", false},
	OpNot:          {"!", true},
	OpNegate:       {"-", true},
	OpPositive:     {"+", true},
	OpPrint:        {"print", true},
	OpBool:         {"bool", true},
	OpMultiply:     {"*", false},
	OpDivide:       {"/", false},
	OpModulo:       {"%", false},
	OpAdd:          {"+", false},
	OpSubtract:     {"-", false},
	OpLess:         {"<", false},
	OpLessEqual:    {"<=", false},
	OpGreater:      {">", false},
	OpGreaterEqual: {">=", false},
	OpEqual:        {"==", false},
	OpNotEqual:     {"!=", false},
	OpAnd:          {"&&", false},
	OpOr:           {"||", false},
	OpAssign:       {"=", false},
}

func (o Op) valid() bool { return o >= 0 && int(o) < len(opInfo) }

// Symbol returns the source spelling of the operation.
func (o Op) Symbol() string {
	if !o.valid() {
		return ""
	}

	return opInfo[o].symbol
}

// IsUnary reports whether the operation takes a single operand.
func (o Op) IsUnary() bool { return o.valid() && opInfo[o].unary }

// Operator lexemes. '-' and '+' are unary only where an operand is expected.
var (
	unaryLexeme = map[string]Op{
		"!":     OpNot,
		"-":     OpNegate,
		"+":     OpPositive,
		"print": OpPrint,
	}
	binaryLexeme = map[string]Op{
		"*":  OpMultiply,
		"/":  OpDivide,
		"%":  OpModulo,
		"+":  OpAdd,
		"-":  OpSubtract,
		"<":  OpLess,
		"<=": OpLessEqual,
		">":  OpGreater,
		">=": OpGreaterEqual,
		"==": OpEqual,
		"!=": OpNotEqual,
		"&&": OpAnd,
		"||": OpOr,
		"=":  OpAssign,
	}
)

// precedence lists the assembly levels from tightest to loosest binding.
var precedence = [...][]Op{
	{OpNot, OpNegate, OpPositive},
	{OpDivide, OpMultiply, OpModulo},
	{OpAdd, OpSubtract},
	{OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpEqual, OpNotEqual},
	{OpAnd},
	{OpOr},
	{OpAssign},
	{OpPrint},
}

// level returns the index of o in precedence, or -1.
func (o Op) level() int {
	for i, ops := range precedence {
		for _, p := range ops {
			if p == o {
				return i
			}
		}
	}

	return -1
}
