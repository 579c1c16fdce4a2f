package cmd

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestAST(t *testing.T) {
	const src = "def main(){return 1;}"

	t.Run("tree", func(t *testing.T) {
		out, _, err := execute(t, &AST{Format: "tree", Source: stdinSource}, src)
		if err != nil {
			t.Fatal(err)
		}

		want := "Scope 1:1\n  Define 1:1\n    EntryFunction 1:5 main()\n" +
			"      Scope 1:11\n        Return 1:12\n          Int 1:19 1\n"
		if out != want {
			t.Errorf("got\n%s\nwant\n%s", out, want)
		}
	})

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			out, _, err := execute(t, &AST{Format: format, Indent: 2, Source: stdinSource}, src)
			if err != nil {
				t.Fatal(err)
			}

			var tree map[string]any
			if format == "json" {
				err = json.Unmarshal([]byte(out), &tree)
			} else {
				err = yaml.Unmarshal([]byte(out), &tree)
			}

			if err != nil {
				t.Fatalf("invalid %s: %v\n%s", format, err, out)
			}

			if tree["kind"] != "Scope" {
				t.Errorf("root kind = %v", tree["kind"])
			}
		})
	}

	t.Run("bad format", func(t *testing.T) {
		_, _, err := execute(t, &AST{Format: "dot", Source: stdinSource}, src)
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("error = %v, want %v", err, ErrInvalidFormat)
		}
	})
}
