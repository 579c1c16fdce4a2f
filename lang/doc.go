// Package lang implements a small imperative macro language: a tokenizer,
// a recursive-descent parser producing an immutable syntax tree, a static
// analyser, and a tree-walking interpreter.
//
// # Grammar
//
// Informal EBNF:
//
//	Program    → Statement* EOF
//	Statement  → Define | Var ';' | If | While | DoWhile ';' | For
//	           | Return ';' | 'break' ';' | 'continue' ';' | Scope | Expr ';'
//	Define     → 'def' Ident '(' [Ident {',' Ident}] ')' Scope
//	Var        → 'var' Ident ['=' Expr]
//	If         → 'if' '(' Expr ')' Scope ['else' (If | Scope)]
//	While      → 'while' '(' Expr ')' Scope
//	DoWhile    → 'do' Scope 'while' '(' Expr ')'
//	For        → 'for' '(' [Var | Expr] ';' [Expr] ';' [Expr] ')' Scope
//	Return     → 'return' [Expr]
//	Scope      → '{' Statement* '}'
//	Call       → Ident '(' [Ident ':' Expr {',' Ident ':' Expr}] ')'
//
// Expressions combine literals, variables, calls, and parenthesized
// expressions with prefix and infix operators. From tightest to loosest:
//
//	! - +             (prefix)
//	* / %
//	+ -
//	== != < <= > >=
//	&&
//	||
//	=
//	print             (prefix)
//
// Operators of equal precedence associate left. Both operands of && and ||
// are always evaluated.
//
// # Example
//
//	// Arguments are passed by name.
//	def greet(who) {
//	  return "hello, " + who;
//	}
//
//	var count = 0;
//
//	def main(name) {
//	  while (count < 3) {
//	    count = count + 1;
//	  }
//	  print greet(who: name);
//	  return count;
//	}
//
// # Values
//
// Values are bool, int (int64), double (float64), string, or empty (nil).
// Operator semantics are supplied by an [OperatorProvider] keyed by operand
// types; [NewOperatorProvider] registers the built-in arithmetic,
// comparison, concatenation, and conversion operators.
//
// # Scoping
//
// Every scope evaluates in its own frame of a [Stack]. Names resolve from
// the innermost frame outward. Functions are overloaded by the set of
// parameter names and resolved by the argument names of a call. A variable
// passed as an argument is bound by reference until the callee assigns to
// it. Calls resolving to no function are delegated to a [command.Provider].
package lang
