package logging

import (
	"io"
	"log/slog"
	"strings"

	"github.com/0xalexb/hjarta-config/config/masking"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// LoggerConfig holds configuration for the logger.
type LoggerConfig struct {
	Level string
	// Format is FormatJSON (default) or FormatText.
	Format string
	// RedactKeys masks string attributes whose key contains one of these
	// substrings, case-insensitively.
	RedactKeys []string
}

// NewLogger creates a new slog.Logger writing to w.
// The level is parsed from the config; defaults to INFO if invalid or empty.
func NewLogger(config LoggerConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource:   false,
		Level:       ParseLevel(config.Level),
		ReplaceAttr: redactor(config.RedactKeys),
	}

	if strings.EqualFold(config.Format, FormatText) {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel converts DEBUG, INFO, WARN, WARNING or ERROR in any case to a
// slog.Level. Anything else is INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func redactor(keys []string) func([]string, slog.Attr) slog.Attr {
	if len(keys) == 0 {
		return nil
	}

	lowered := make([]string, len(keys))
	for i, key := range keys {
		lowered[i] = strings.ToLower(key)
	}

	masker := masking.Default()

	return func(_ []string, attr slog.Attr) slog.Attr {
		if attr.Value.Kind() != slog.KindString {
			return attr
		}

		name := strings.ToLower(attr.Key)
		for _, key := range lowered {
			if strings.Contains(name, key) {
				return slog.String(attr.Key, masker.Value(attr.Value.String()))
			}
		}

		return attr
	}
}
