package log

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger; every record carries the component it was
// scoped to.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level   slog.Level
	Handler slog.Handler
}

// DefaultConfig returns sensible defaults for logging.
func DefaultConfig() Config {
	return Config{
		Level: slog.LevelInfo,
	}
}

// New creates a new logger with the given configuration, scoped to the
// default application component.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.Level,
		})
	}
	return &Logger{
		Logger: slog.New(handler).With(FieldComponent, ComponentApp),
	}
}

// WithComponent returns a logger scoped to a specific component. It rebases
// on the underlying handler so the component attribute appears exactly once.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: slog.New(l.Handler()).With(FieldComponent, component),
	}
}

// SetDefault sets the default logger for the application.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
