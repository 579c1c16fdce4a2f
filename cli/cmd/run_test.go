package cmd

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ardnew/macro/lang"
)

func TestParseArguments(t *testing.T) {
	args, err := ParseArguments([]string{
		"n=41", `s="quoted"`, "raw=hello world", "b=true", "f=0.5", "empty=",
		"neg=-3", "negf=-0.25", "dash=-x",
	})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]any{
		"n":     int64(41),
		"s":     "quoted",
		"raw":   "hello world",
		"b":     true,
		"f":     0.5,
		"empty": "",
		"neg":   int64(-3),
		"negf":  -0.25,
		"dash":  "-x",
	}

	if args.Len() != len(want) {
		t.Errorf("got %d arguments, want %d", args.Len(), len(want))
	}

	for name, v := range want {
		got, ok := args.Value(name)
		if !ok || got != v {
			t.Errorf("%s = %#v, want %#v", name, got, v)
		}
	}

	for _, bad := range []string{"novalue", "=x", " =x"} {
		if _, err := ParseArguments([]string{bad}); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ParseArguments(%q) error = %v", bad, err)
		}
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Run
		stdin   string
		want    string
		wantErr error
	}{
		{
			name:  "stdin",
			cmd:   Run{Source: stdinSource, MaxCallDepth: 100},
			stdin: `def main() { print "hi "; return 1 + 2; }`,
			want:  "hi 3\n",
		},
		{
			name: "arguments",
			cmd: Run{
				Source:       stdinSource,
				MaxCallDepth: 100,
				Args:         []string{"name=world", "count=2"},
			},
			stdin: `def main(name, count) { return name + (count + 1); }`,
			want:  "world3\n",
		},
		{
			name:  "no result",
			cmd:   Run{Source: stdinSource, MaxCallDepth: 100},
			stdin: `def main() { return; }`,
			want:  "",
		},
		{
			name:  "builtin command",
			cmd:   Run{Source: stdinSource, MaxCallDepth: 100},
			stdin: `def main() { return str(value: typeof(value: 1.5)); }`,
			want:  "double\n",
		},
		{
			name:    "no entry",
			cmd:     Run{Source: stdinSource, MaxCallDepth: 100},
			stdin:   `var x = 1;`,
			wantErr: lang.ErrNoEntry,
		},
		{
			name:    "call depth",
			cmd:     Run{Source: stdinSource, MaxCallDepth: 10},
			stdin:   `def f(n) { return f(n: n + 1); } def main() { return f(n: 0); }`,
			wantErr: lang.ErrMaxDepthExceeded,
		},
		{
			name:    "check violations",
			cmd:     Run{Source: stdinSource, MaxCallDepth: 100, Check: true},
			stdin:   `def main() { break; }`,
			wantErr: ErrViolations,
		},
		{
			name:    "watch stdin",
			cmd:     Run{Source: stdinSource, Watch: true},
			wantErr: ErrWatchStdin,
		},
		{
			name:    "bad argument",
			cmd:     Run{Source: stdinSource, Args: []string{"oops"}},
			wantErr: ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, &tt.cmd, tt.stdin)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRun_File(t *testing.T) {
	path := writeSource(t, "def main(greeting) {\n  return greeting + \"!\";\n}\n")

	out, _, err := execute(t, &Run{
		Source:       path,
		MaxCallDepth: 100,
		Args:         []string{"greeting=hey"},
	}, "")
	if err != nil {
		t.Fatal(err)
	}

	if out != "hey!\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRun_ErrorExcerpt(t *testing.T) {
	_, stderr, err := execute(t, &Run{Source: stdinSource, MaxCallDepth: 100},
		"def main() {\n  return missing;\n}")
	if !errors.Is(err, lang.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, lang.ErrNotFound)
	}

	if stderr == "" {
		t.Error("no excerpt written to stderr")
	}
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func TestRun_StderrWriteError(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Run
		source  string
		wantErr error
	}{
		{
			name:    "check violations",
			cmd:     Run{Source: stdinSource, MaxCallDepth: 100, Check: true},
			source:  `def main() { break; }`,
			wantErr: ErrViolations,
		},
		{
			name:    "parse error excerpt",
			cmd:     Run{Source: stdinSource, MaxCallDepth: 100},
			source:  `def main( {`,
			wantErr: lang.ErrUnexpectedToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang.ClearCache()

			ctx := WithStreams(t.Context(), Streams{
				In:  strings.NewReader(tt.source),
				Out: io.Discard,
				Err: failingWriter{},
			})

			err := tt.cmd.Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}

			if !errors.Is(err, errWrite) {
				t.Errorf("error = %v, want the write error joined", err)
			}
		})
	}
}
