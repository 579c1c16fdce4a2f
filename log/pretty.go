package log

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used to colorize pretty output.
// Styles are bound to the renderer of the output writer, so color is only
// emitted when that writer is a terminal.
type palette struct {
	key, str, num, time, dur lipgloss.Style
	yes, no, null            lipgloss.Style
	trace, debug, info, warn lipgloss.Style
	err                      lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		time:  fg("4"),
		dur:   fg("5"),
		yes:   fg("2"),
		no:    fg("1"),
		null:  fg("8"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3"),
		err:   fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyHandler renders records as colorized key=value text or as indented
// JSON-like blocks without quoting.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	pal    palette
	json   bool
	attrs  []slog.Attr
	groups []string
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return &prettyHandler{opts: *opts, mu: &sync.Mutex{}, w: w, pal: makePalette(w)}
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return &prettyHandler{
		opts: *opts, mu: &sync.Mutex{}, w: w, pal: makePalette(w), json: true,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &c
}

// qualify prefixes attribute keys with the open groups.
func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if len(h.groups) == 0 {
		return attrs
	}

	prefix := strings.Join(h.groups, ".") + "."
	out := make([]slog.Attr, len(attrs))

	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}

	return out
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		fields = append(fields, slog.Time(slog.TimeKey, r.Time))
	}

	fields = append(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = append(fields, slog.String(
				slog.SourceKey, src.File+":"+strconv.Itoa(src.Line),
			))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	var own []slog.Attr

	r.Attrs(func(a slog.Attr) bool {
		own = append(own, a)

		return true
	})

	fields = append(fields, h.qualify(own)...)

	buf := new(bytes.Buffer)
	if h.json {
		buf.WriteString("{\n")
	}

	first := true

	for _, a := range fields {
		if h.opts.ReplaceAttr != nil && a.Value.Kind() != slog.KindGroup {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key == "" {
			continue
		}

		h.writeAttr(buf, "", a, &first)
	}

	if h.json {
		buf.WriteString("\n}")
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeAttr(
	buf *bytes.Buffer,
	prefix string,
	a slog.Attr,
	first *bool,
) {
	v := a.Value.Resolve()
	key := prefix + a.Key

	// Groups (including resolved slog.LogValuer values) are flattened into
	// dotted keys.
	if v.Kind() == slog.KindGroup {
		for _, ga := range v.Group() {
			h.writeAttr(buf, key+".", ga, first)
		}

		return
	}

	switch {
	case h.json && !*first:
		buf.WriteString(",\n")
	case !h.json && !*first:
		buf.WriteByte(' ')
	}

	*first = false

	if h.json {
		buf.WriteString("  ")
		buf.WriteString(h.pal.key.Render(key))
		buf.WriteString(": ")
	} else {
		buf.WriteString(h.pal.key.Render(key))
		buf.WriteByte('=')
	}

	buf.WriteString(h.value(a.Key, v))
}

func (h *prettyHandler) value(key string, v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		if key == slog.LevelKey {
			return h.pal.level(slog.Level(ParseLevel(v.String()))).Render(v.String())
		}

		return h.pal.str.Render(v.String())

	case slog.KindInt64:
		return h.pal.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return h.pal.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return h.pal.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return h.pal.yes.Render("true")
		}

		return h.pal.no.Render("false")

	case slog.KindDuration:
		return h.pal.dur.Render(v.Duration().String())

	case slog.KindTime:
		return h.pal.time.Render(v.Time().Format(time.RFC3339))

	case slog.KindAny:
		switch a := v.Any().(type) {
		case nil:
			return h.pal.null.Render("null")
		case slog.Level:
			return h.pal.level(a).Render(strings.ToUpper(Level(a).String()))
		case error:
			return h.pal.no.Render(a.Error())
		}
	}

	return h.pal.str.Render(v.String())
}
