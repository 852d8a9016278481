package sl

import (
	"log/slog"
)

// Err returns a slog attribute for an error value.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Module returns a slog attribute identifying the originating module.
func Module(name string) slog.Attr {
	return slog.Attr{
		Key:   "module",
		Value: slog.StringValue(name),
	}
}

// Secret returns a slog attribute with the value masked down to its first
// characters, so tokens can be correlated in logs without being leaked.
func Secret(key, value string) slog.Attr {
	masked := value
	if len(masked) > 6 {
		masked = masked[:6] + "..."
	}
	return slog.Attr{
		Key:   key,
		Value: slog.StringValue(masked),
	}
}
