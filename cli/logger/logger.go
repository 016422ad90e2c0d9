package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Level  string `doc:"log from debug, info, warn or error"`
	File   string `doc:"append logs to file, - for stdout"`
	Format string `doc:"format logs as text or json"         default:"text"`
	Source bool   `doc:"add source file and line to logs"`
}

func level(option string) (slog.Leveler, bool) {
	switch strings.ToLower(option) {
	case "":
		return nil, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return nil, false
	}
}

func output(option string) (io.Writer, error) {
	switch option {
	case "", "-":
		return os.Stdout, nil
	case os.DevNull:
		return io.Discard, nil
	default:
		return os.OpenFile(option, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	}
}

// New returns a logger configured by options. Invalid options are reset to
// their defaults and reported with a warning by the returned logger.
func New(options *Options) *slog.Logger {
	var warnings []slog.Attr

	lvl, ok := level(options.Level)
	if !ok {
		warnings = append(warnings, slog.String("level", options.Level))
		options.Level = ""
	}

	format := strings.ToLower(options.Format)
	if format != "json" && format != "text" {
		warnings = append(warnings, slog.String("format", options.Format))
		options.Format, format = "text", "text"
	}

	w, err := output(options.File)
	if err != nil {
		warnings = append(warnings, slog.String("file", options.File), slog.Any("err", err))
		options.File = ""
		w = os.Stdout
	}
	if w == io.Discard {
		return slog.New(slog.DiscardHandler)
	}

	opts := slog.HandlerOptions{Level: lvl, AddSource: options.Source}
	var handler slog.Handler = slog.NewTextHandler(w, &opts)
	if format == "json" {
		handler = slog.NewJSONHandler(w, &opts)
	}

	logger := slog.New(handler)
	if len(warnings) > 0 {
		logger.LogAttrs(context.Background(), slog.LevelWarn, "could not apply logger options", warnings...)
	}
	return logger
}
