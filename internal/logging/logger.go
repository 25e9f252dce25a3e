package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Setup initializes the global slog logger with JSON output to stdout.
func Setup(loc *time.Location) {
	slog.SetDefault(New(os.Stdout, loc))
}

// New builds a JSON logger whose timestamp key is "ts", rendered in loc.
func New(w io.Writer, loc *time.Location) *slog.Logger {
	if loc == nil {
		loc = time.UTC
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.String("ts", a.Value.Time().In(loc).Format(time.RFC3339Nano))
			}
			return a
		},
	})
	return slog.New(handler)
}
