package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/sceneflow-core/internal/infrastructure/config"
)

// Logger is the service-wide structured logger: a thin wrapper over slog
// that stamps every record with the service name and version.
//
// All methods are safe for concurrent use.
type Logger struct {
	*slog.Logger
}

// New builds a logger from the logging section of config.yaml: level
// filtering, json or text encoding, stdout or stderr destination.
func New(cfg config.LoggingConfig, version string) *Logger {
	return newLogger(cfg, version, pickOutput(cfg.Output))
}

// newLogger is the writer-injectable core of New, split out so tests can
// capture output.
func newLogger(cfg config.LoggingConfig, version string, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "sceneflow"),
		slog.String("version", version),
	})
	return &Logger{Logger: slog.New(handler)}
}

func pickOutput(name string) io.Writer {
	if strings.EqualFold(name, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// parseLevel maps a config string to a slog level. Unrecognised values
// fall back to info rather than failing startup.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a child logger carrying extra default attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithComponent returns a child logger tagged with a subsystem name.
// The composition root hands each subsystem (coordinator, stage, mqtt)
// its own tagged child so records can be filtered per component.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

// Default is the bootstrap logger used before configuration loads: json
// to stdout at info level.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}, "dev")
}
