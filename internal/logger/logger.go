package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// Logger is the application-wide structured logger.
type Logger interface {
	Debug(msg string, tags ...any)
	Info(msg string, tags ...any)
	Warn(msg string, tags ...any)
	Error(msg string, tags ...any)

	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)

	With(attrs ...any) Logger

	// Write writes a message to the logger in free form.
	Write(string)
}

var _ Logger = (*appLogger)(nil)

type appLogger struct {
	logger *slog.Logger
	quiet  bool
	writer io.Writer
}

// Config holds logger construction options.
type Config struct {
	debug  bool
	format string
	writer io.Writer
	quiet  bool
}

// Option configures a logger.
type Option func(*Config)

// WithDebug sets the level of the logger to debug.
func WithDebug() Option {
	return func(o *Config) {
		o.debug = true
	}
}

// WithFormat sets the format of the logger (text or json).
func WithFormat(format string) Option {
	return func(o *Config) {
		o.format = format
	}
}

// WithWriter adds an extra writer (typically a log file) to write logs to.
func WithWriter(w io.Writer) Option {
	return func(o *Config) {
		o.writer = w
	}
}

// WithQuiet suppresses output to stderr.
func WithQuiet() Option {
	return func(o *Config) {
		o.quiet = true
	}
}

var defaultLogger = NewLogger(WithFormat("text"))

// NewLogger builds a Logger that fans out to stderr and, when configured,
// an additional writer.
func NewLogger(opts ...Option) Logger {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	level := slog.LevelInfo
	if cfg.debug {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var handlers []slog.Handler
	if !cfg.quiet {
		handlers = append(handlers, newHandler(os.Stderr, cfg.format, handlerOpts))
	}
	if cfg.writer != nil {
		handlers = append(handlers, newHandler(cfg.writer, cfg.format, handlerOpts))
	}

	return &appLogger{
		logger: slog.New(slogmulti.Fanout(handlers...)),
		quiet:  cfg.quiet,
		writer: cfg.writer,
	}
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Debug implements logger.Logger.
func (a *appLogger) Debug(msg string, tags ...any) { a.logger.Debug(msg, tags...) }

// Info implements logger.Logger.
func (a *appLogger) Info(msg string, tags ...any) { a.logger.Info(msg, tags...) }

// Warn implements logger.Logger.
func (a *appLogger) Warn(msg string, tags ...any) { a.logger.Warn(msg, tags...) }

// Error implements logger.Logger.
func (a *appLogger) Error(msg string, tags ...any) { a.logger.Error(msg, tags...) }

// Debugf implements logger.Logger.
func (a *appLogger) Debugf(format string, v ...any) { a.logger.Debug(fmt.Sprintf(format, v...)) }

// Infof implements logger.Logger.
func (a *appLogger) Infof(format string, v ...any) { a.logger.Info(fmt.Sprintf(format, v...)) }

// Warnf implements logger.Logger.
func (a *appLogger) Warnf(format string, v ...any) { a.logger.Warn(fmt.Sprintf(format, v...)) }

// Errorf implements logger.Logger.
func (a *appLogger) Errorf(format string, v ...any) { a.logger.Error(fmt.Sprintf(format, v...)) }

// With implements logger.Logger.
func (a *appLogger) With(attrs ...any) Logger {
	return &appLogger{logger: a.logger.With(attrs...), quiet: a.quiet, writer: a.writer}
}

// Write implements logger.Logger. Free-form output goes to stdout and,
// when an extra writer is configured, to it as well; quiet mode drops the
// stdout copy but keeps the writer so listings survive log-to-file runs.
func (a *appLogger) Write(msg string) {
	if !a.quiet {
		fmt.Fprintln(os.Stdout, msg)
	}
	if a.writer != nil {
		fmt.Fprintln(a.writer, msg)
	}
}
