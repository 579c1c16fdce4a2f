// Package command defines how a host application exposes callable commands
// to macros.
//
// A [Command] declares its named [Arguments] and executes with their values.
// A [Provider] resolves commands by scope and name; [Registry] is the
// standard implementation, falling back to [GlobalScope] when a scope does
// not define a command. [RegisterBuiltins] installs a small set of commands
// useful to any host:
//
//	expr(code: "1 + 2")                      // expr-lang evaluation
//	getenv(name: "HOME", default: "/")       // process environment
//	prefix(list: path, item: "/opt/bin")     // PATH-like list editing
//	join(a: dir, b: "file")                  // path joining
//	typeof(value: x)                         // dynamic type name
//	str(value: x)                            // string conversion
package command
