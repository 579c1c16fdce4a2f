package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// ToMap converts n to a tree of native maps and slices.
// Every node map carries its kind and position.
func ToMap(n Node) map[string]any {
	if isNil(n) {
		return nil
	}

	tok := n.Token()
	m := map[string]any{
		"kind":   n.Kind().String(),
		"line":   tok.Line,
		"column": tok.Column,
	}

	nodes := func(list []Node) []any {
		out := make([]any, 0, len(list))
		for _, c := range list {
			out = append(out, ToMap(c))
		}

		return out
	}

	switch n := n.(type) {
	case *Scope:
		m["statements"] = nodes(asNodes(n.Statements))
	case *Define:
		m["target"] = ToMap(n.Target)
		if n.Param {
			m["param"] = true
		}
	case *Variable:
		m["name"] = n.Name
	case *Literal[bool]:
		m["value"] = n.Value
	case *Literal[int64]:
		m["value"] = n.Value
	case *Literal[float64]:
		m["value"] = n.Value
	case *Literal[string]:
		m["value"] = n.Value
	case *UnaryOperator:
		m["op"] = n.Op.String()
		m["operand"] = optional(n.Operand)
	case *BinaryOperator:
		m["op"] = n.Op.String()
		m["lhs"] = optional(n.LHS)
		m["rhs"] = optional(n.RHS)
	case *Argument:
		m["name"] = n.Name
		m["value"] = optional(n.Value)
	case *Callable:
		m["name"] = n.Name
		m["arguments"] = nodes(asNodes(n.Args))
	case *Function:
		m["name"] = n.Name
		m["parameters"] = n.Signature().Params
		m["body"] = ToMap(n.Body)
	case *EntryFunction:
		m["name"] = EntryName
		m["parameters"] = n.Signature().Params
		m["body"] = ToMap(n.Body)
	case *Return:
		if n.Output != nil {
			m["output"] = ToMap(n.Output)
		}
	case *If:
		m["condition"] = optional(n.Condition)
		m["then"] = ToMap(n.Then)
		if n.Else != nil {
			m["else"] = ToMap(n.Else)
		}
	case *While:
		m["condition"] = optional(n.Condition)
		m["body"] = ToMap(n.Body)
	case *DoWhile:
		m["condition"] = optional(n.Condition)
		m["body"] = ToMap(n.Body)
	case *For:
		m["init"] = nodes(asNodes(n.Init))
		m["condition"] = optional(n.Condition)
		m["step"] = optional(n.Step)
		m["body"] = ToMap(n.Body)
	}

	return m
}

func optional(p Producer) any {
	if p == nil {
		return nil
	}

	return ToMap(p)
}

func asNodes[S ~[]E, E Node](s S) []Node {
	out := make([]Node, len(s))
	for i, n := range s {
		out[i] = n
	}

	return out
}

// FormatJSON writes n as JSON. A positive indent pretty-prints.
func FormatJSON(_ context.Context, w io.Writer, n Node, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(ToMap(n), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(ToMap(n))
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes n as YAML. A positive indent selects block style with
// that indentation; otherwise flow style is used.
func FormatYAML(ctx context.Context, w io.Writer, n Node, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, ToMap(n), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}
