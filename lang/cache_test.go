package lang

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestParseReader_Cache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	ctx := context.Background()
	src := "def main() { return 42; }"

	a, err := ParseReader(ctx, strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	b, err := ParseReader(ctx, strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	if a != b {
		t.Error("expected the cached tree for identical input")
	}

	c, err := ParseReader(ctx, strings.NewReader(src), WithFileName("other.mac"))
	if err != nil {
		t.Fatal(err)
	}

	if c == a {
		t.Error("expected a separate entry for a different file name")
	}

	ClearCache()

	d, err := ParseReader(ctx, strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	if d == a {
		t.Error("expected a fresh tree after ClearCache")
	}

	if !d.Equal(a) {
		t.Error("expected an equal tree after ClearCache")
	}
}

func TestParseReader_CachedError(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	for range 2 {
		_, err := ParseReader(context.Background(), strings.NewReader("def main( {"))
		if !errors.Is(err, ErrUnexpectedToken) {
			t.Errorf("expected ErrUnexpectedToken, got %v", err)
		}
	}
}

func TestParseReader_CancelledNotCached(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	src := "def main() { return 1; }"

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := ParseReader(ctx, strings.NewReader(src)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	root, err := ParseReader(t.Context(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("cancelled parse was cached: %v", err)
	}

	if root == nil {
		t.Error("expected a tree")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestParseReader_ReadError(t *testing.T) {
	_, err := ParseReader(context.Background(), failingReader{})
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("expected ErrReadInput, got %v", err)
	}
}

func TestParseFile(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	path := filepath.Join(t.TempDir(), "prog.mac")
	if err := os.WriteFile(path, []byte("def main() {\n  return x;\n}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	root, err := ParseFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewInterpreter().Run(context.Background(), root, nil, "", path)

	var se *SourceError
	if !errors.As(err, &se) || se.File != path || se.Token.Line != 2 {
		t.Errorf("expected an error at %s:2, got %v", path, err)
	}

	_, err = ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("expected ErrReadInput, got %v", err)
	}
}

func TestParseReader_Concurrent(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	src := "def main() { var i = 0; while (i < 10) { i = i + 1; } return i; }"
	roots := make([]*Scope, 16)

	var wg sync.WaitGroup

	for i := range roots {
		wg.Go(func() {
			root, err := ParseReader(context.Background(), strings.NewReader(src))
			if err != nil {
				t.Error(err)

				return
			}

			roots[i] = root
		})
	}

	wg.Wait()

	in := NewInterpreter()

	for _, root := range roots {
		if root != roots[0] {
			t.Fatal("expected every reader to share one parse")
		}

		// A shared tree may be run concurrently.
		wg.Go(func() {
			v, err := in.Run(context.Background(), root, nil, "", "")
			if err != nil || v != int64(10) {
				t.Errorf("got %v, %v", v, err)
			}
		})
	}

	wg.Wait()
}
