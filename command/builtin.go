package command

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardnew/mung"
	"github.com/expr-lang/expr"

	"github.com/ardnew/macro/lang/value"
)

// Builtins returns the commands every macro can call, keyed by name.
func Builtins() map[string]Command {
	return map[string]Command{
		"expr": Func{
			Args: NewArguments().
				Add("code", "expr-lang expression to evaluate", nil, false),
			Run: runExpr,
		},
		"getenv": Func{
			Args: NewArguments().
				Add("name", "environment variable name", nil, false).
				Add("default", "value used when the variable is unset", "", true),
			Run: runGetenv,
		},
		"prefix": Func{
			Args: NewArguments().
				Add("list", "delimited list, e.g. the value of PATH", nil, false).
				Add("item", "element to move or add to the front", nil, false).
				Add("delim", "list delimiter", string(os.PathListSeparator), true),
			Run: runPrefix,
		},
		"join": Func{
			Args: NewArguments().
				Add("a", "leading path element", nil, false).
				Add("b", "trailing path element", nil, false),
			Run: runJoin,
		},
		"typeof": Func{
			Args: NewArguments().
				Add("value", "value to inspect", nil, false),
			Run: func(_ context.Context, args *Arguments) (any, error) {
				v, _ := args.Value("value")

				return value.TypeName(v), nil
			},
		},
		"str": Func{
			Args: NewArguments().
				Add("value", "value to convert", nil, false),
			Run: func(_ context.Context, args *Arguments) (any, error) {
				v, _ := args.Value("value")

				return value.String(v), nil
			},
		},
	}
}

// RegisterBuiltins adds [Builtins] to the global scope of r.
func RegisterBuiltins(r *Registry) error {
	for name, c := range Builtins() {
		if err := r.Register(GlobalScope, name, c); err != nil {
			return err
		}
	}

	return nil
}

func stringArg(args *Arguments, name string) (string, error) {
	v, _ := args.Value(name)

	s, ok := v.(string)
	if !ok {
		return "", ErrArgumentType.With(
			slog.String("argument", name),
			slog.String("want", "string"),
			slog.String("got", value.TypeName(v)),
		)
	}

	return s, nil
}

// processEnv is the process environment captured on first use.
var processEnv = sync.OnceValue(func() map[string]string {
	env := make(map[string]string)

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	return env
})

func runExpr(ctx context.Context, args *Arguments) (any, error) {
	code, err := stringArg(args, "code")
	if err != nil {
		return nil, err
	}

	env := map[string]any{
		"env": processEnv(),
		"cwd": func() string {
			dir, _ := os.Getwd()

			return dir
		},
		"join": filepath.Join,
	}

	program, err := expr.Compile(code, expr.Env(env))
	if err != nil {
		return nil, ErrExecute.Wrap(err).With(
			slog.String("command", "expr"),
			slog.String("code", code),
		)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrExecute.Wrap(err).With(
			slog.String("command", "expr"),
			slog.String("code", code),
		)
	}

	return out, nil
}

func runGetenv(_ context.Context, args *Arguments) (any, error) {
	name, err := stringArg(args, "name")
	if err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv(name); ok {
		return v, nil
	}

	def, _ := args.Value("default")

	return def, nil
}

func runPrefix(_ context.Context, args *Arguments) (any, error) {
	list, err := stringArg(args, "list")
	if err != nil {
		return nil, err
	}

	item, err := stringArg(args, "item")
	if err != nil {
		return nil, err
	}

	delim, err := stringArg(args, "delim")
	if err != nil {
		return nil, err
	}

	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(delim),
		mung.WithPrefixItems(item),
	).String(), nil
}

func runJoin(_ context.Context, args *Arguments) (any, error) {
	a, err := stringArg(args, "a")
	if err != nil {
		return nil, err
	}

	b, err := stringArg(args, "b")
	if err != nil {
		return nil, err
	}

	return filepath.Join(a, b), nil
}
