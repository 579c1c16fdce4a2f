package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initCLI struct {
	LogLevel  string   `default:"info"`
	LogPretty bool     `default:"true"`
	Unset     string   ``
	Secret    string   `default:"hidden" hidden:""`
	PprofMode string   `default:"cpu"`
	Paths     []string ``

	Init Init `cmd:""`
}

// initContext parses args for a CLI whose config file is confPath and
// returns a context carrying the result.
func initContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

func TestInit_WritesFlagValues(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	ctx := initContext(t, confPath, "--log-level=debug")

	if err := (&Init{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(confPath)
	if err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid YAML %q: %v", data, err)
	}

	if got["log-level"] != "debug" || got["log-pretty"] != true {
		t.Errorf("unexpected config %v", got)
	}

	for _, omitted := range []string{"help", "unset", "secret", "pprof-mode", "paths"} {
		if _, ok := got[omitted]; ok {
			t.Errorf("config contains %q: %v", omitted, got)
		}
	}

	info, err := os.Stat(confPath)
	if err != nil {
		t.Fatal(err)
	}

	if info.Mode().Perm() != defaultFileMode {
		t.Errorf("mode = %v, want %v", info.Mode().Perm(), defaultFileMode)
	}
}

func TestInit_Exists(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(confPath, []byte("keep: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := initContext(t, confPath)

	err := (&Init{}).Run(ctx)
	if !errors.Is(err, ErrWriteConfig) || !errors.Is(err, ErrFileExists) {
		t.Fatalf("error = %v, want %v", err, ErrFileExists)
	}

	data, _ := os.ReadFile(confPath)
	if string(data) != "keep: true\n" {
		t.Errorf("existing file modified: %q", data)
	}

	if err := (&Init{Force: true}).Run(ctx); err != nil {
		t.Fatalf("forced init: %v", err)
	}

	data, _ = os.ReadFile(confPath)
	if string(data) == "keep: true\n" {
		t.Error("forced init did not overwrite")
	}
}

func TestInit_MissingContextPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic without a kong context")
		}
	}()

	_ = (&Init{}).Run(context.Background())
}
