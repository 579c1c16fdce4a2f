package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/macro/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads YAML config files.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx), "/path/to/config.yaml")
//
// Keys are flag names. Nested mappings are joined to their parent key with a
// hyphen, so both of the following set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Underscores may be used in place of hyphens. Command-line flags override
// config file values. A file that cannot be parsed is logged and ignored.
func resolve(ctx context.Context) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		var raw map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &raw)
		if err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring invalid config file",
				slog.Any("error", err))

			return config{}, nil
		}

		cfg := make(config)
		cfg.flatten("", raw)

		return cfg, nil
	}
}

// config implements [kong.Resolver] over flattened flag names.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	if v, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return v, nil
	}

	return nil, nil
}

// flatten adds each leaf of m under its hyphen-joined key path.
func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		if prefix != "" {
			k = prefix + "-" + k
		}

		switch v := v.(type) {
		case map[string]any:
			c.flatten(k, v)
		case []any:
			list := make([]any, len(v))
			for i, e := range v {
				list[i] = scalar(e)
			}

			c[k] = list
		default:
			c[k] = scalar(v)
		}
	}
}

// scalar converts numbers to strings, which kong requires for parsing.
func scalar(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil, bool, string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
