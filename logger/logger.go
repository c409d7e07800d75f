package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config captures options for configuring the process logger.
type Config struct {
	Level  string // "debug", "info", ...; defaults to info
	Format string // "console" or "json"
	File   string // optional rotating log file, written in addition to Output
	Output io.Writer
}

// Logger is the process-wide base logger. It discards everything until
// Init is called.
var Logger = zerolog.Nop()

// fileWriter is the rotating file opened by the last Init, if any.
var fileWriter *lumberjack.Logger

// Init builds the base logger from cfg and sets the global level. It fails
// only when the log file directory cannot be created. Call Close to release
// the log file.
func Init(cfg Config) (zerolog.Logger, error) {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}
	}

	if err := Close(); err != nil {
		return Logger, err
	}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o750); err != nil {
			return Logger, fmt.Errorf("create log directory: %w", err)
		}
		fileWriter = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = zerolog.MultiLevelWriter(out, fileWriter)
	}

	Logger = zerolog.New(out).With().Timestamp().Logger()
	return Logger, nil
}

// Close closes the log file opened by Init. It is a no-op without one.
func Close() error {
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

// WithComponent returns a child logger annotated with the given component name.
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
