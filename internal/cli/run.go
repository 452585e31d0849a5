package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ehsanranjbar/flatkv"
	"github.com/ehsanranjbar/flatkv/format"
)

// NewLogger creates a slog.Logger for the given level and format names.
func NewLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if formatStr == "json" {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}
	return slog.New(handler)
}

// Run reads the input named by cfg, or stdin, transforms it and writes the result to out.
func Run(cfg *Config, stdin io.Reader, out io.Writer, logger *slog.Logger) error {
	in := stdin
	if cfg.InputPath != "" && cfg.InputPath != "-" {
		f, err := os.Open(cfg.InputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	src, err := format.Decode(cfg.In, in)
	if err != nil {
		return fmt.Errorf("failed to decode %s input: %w", cfg.In, err)
	}
	logger.Debug("Input decoded.", "format", cfg.In, "path", cfg.InputPath)

	var res any
	switch cfg.Mode {
	case ModeFlatten:
		flat, err := flatkv.Flatten(src, flatkv.WithOptions(cfg.Options))
		if err != nil {
			return err
		}
		logger.Info("Document flattened.", "keys", flat.Len())
		res = flat
	case ModeUnflatten:
		flat, ok := src.(*flatkv.Map)
		if !ok {
			return fmt.Errorf("unflatten needs a map input, got %T", src)
		}
		nested, err := flatkv.UnflattenValue(flat, flatkv.WithOptions(cfg.Options))
		if err != nil {
			return err
		}
		_, isList := nested.(flatkv.List)
		logger.Info("Document unflattened.", "keys", flat.Len(), "list", isList)
		res = nested
	default:
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	return format.Encode(cfg.Out, out, res)
}
