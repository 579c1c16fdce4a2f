package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// parseCache stores parsed programs keyed by the hash of their source, file
// name, and depth limit.
var parseCache sync.Map

// cacheEntry parses its source at most once.
type cacheEntry struct {
	once sync.Once
	root *Scope
	err  error
}

// cacheKey combines the hashes of everything that affects the parse result.
func cacheKey(source []byte, cfg config) string {
	h := xxh3.Hash(source)
	h ^= xxh3.HashString(cfg.fileName) * 31
	h ^= uint64(cfg.maxDepth) << 1

	return strconv.FormatUint(h, 36)
}

// ParseReader reads a program from r and parses it.
//
// Results are cached: reading identical input again under the same file name
// and options returns the same tree without parsing. The returned tree is
// shared and must not be modified.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Scope, error) {
	cfg := makeConfig(opts...)

	// Read ahead asynchronously while earlier chunks are consumed.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("file", cfg.fileName))
	}

	key := cacheKey(data, cfg)

	for {
		value, hit := parseCache.LoadOrStore(key, new(cacheEntry))
		entry := value.(*cacheEntry)

		cfg.logger.TraceContext(ctx, "cache lookup",
			slog.String("file", cfg.fileName),
			slog.Int("source_bytes", len(data)),
			slog.Bool("cache_hit", hit))

		entry.once.Do(func() {
			entry.root, entry.err = Parse(ctx, string(data), opts...)
		})

		if entry.err == nil {
			return entry.root, nil
		}

		if !interrupted(entry.err) {
			return nil, entry.err
		}

		// A cancelled parse says nothing about the source.
		parseCache.CompareAndDelete(key, entry)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// ParseFile parses the program in the named file through the cache.
// The path is used as the file name unless opts set one.
func ParseFile(ctx context.Context, path string, opts ...Option) (*Scope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("file", path))
	}
	defer f.Close()

	return ParseReader(ctx, f, append([]Option{WithFileName(path)}, opts...)...)
}

// ClearCache removes all cached programs.
func ClearCache() {
	parseCache.Clear()
}
