package log

import "strconv"

// String returns the lower-case name of the level.
// Levels between the named constants are rendered as an offset from the
// nearest lower named level, e.g. "info+2", which stringer cannot emit.
func (l Level) String() string {
	named := []Level{LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace}
	names := []string{"error", "warn", "info", "debug", "trace"}

	for i, base := range named {
		if l >= base {
			if l == base {
				return names[i]
			}

			return names[i] + "+" + strconv.Itoa(int(l-base))
		}
	}

	return "trace" + strconv.Itoa(int(l-LevelTrace))
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	*l = ParseLevel(string(text))

	return nil
}
