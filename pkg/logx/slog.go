package logx

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

var Error = tint.Err //nolint:gochecknoglobals

func Stringer(name string, value fmt.Stringer) slog.Attr {
	return slog.String(name, value.String())
}

func Duration(since time.Time) slog.Attr {
	return slog.Int64(FieldDurationMs, time.Since(since).Milliseconds())
}

// ParseLevel maps a config string onto slog levels; unknown values mean info.
func ParseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}

	return l
}
