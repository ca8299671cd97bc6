package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	serr "dirsort/internal/errors"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

var logger = NewLogger()

// Level is the minimum severity a Logger emits
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel converts a configured level name into a Level.
// Accepted names are debug, info, warn, warning and error in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", s)
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l Level) logrusLevel() logrus.Level {
	switch l {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Field is a single structured key/value attached to log entries
type Field struct {
	Key   string
	Value interface{}
}

// F creates a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

type options struct {
	out      io.Writer
	json     bool
	filePath string
	level    Level
}

// Option configures a Logger
type Option func(*options)

// WithOutput sets the console writer (stdout by default)
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithJSON switches to one JSON object per line
func WithJSON() Option {
	return func(o *options) {
		o.json = true
	}
}

// WithFile additionally appends every entry to the file at path
func WithFile(path string) Option {
	return func(o *options) {
		o.filePath = path
	}
}

// WithLevel sets the minimum level
func WithLevel(level Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// Logger writes leveled, structured entries
type Logger struct {
	entry *logrus.Entry
	file  *os.File
}

// NewLogger creates a logger. A log file that cannot be opened is reported
// on the console and otherwise ignored.
func NewLogger(opts ...Option) *Logger {
	o := options{out: os.Stdout, level: LevelInfo}
	for _, opt := range opts {
		opt(&o)
	}

	base := logrus.New()
	base.SetLevel(o.level.logrusLevel())
	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	}

	l := &Logger{}
	out := o.out
	var fileErr error
	if o.filePath != "" {
		f, err := openLogFile(o.filePath)
		if err != nil {
			fileErr = err
		} else {
			l.file = f
			out = io.MultiWriter(out, f)
		}
	}
	base.SetOutput(out)
	l.entry = logrus.NewEntry(base)

	if fileErr != nil {
		l.entry.WithError(fileErr).WithField("path", o.filePath).Warn("Failed to open log file, logging to console only")
	}
	return l
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// With returns a child logger that adds fields to every entry
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data), file: l.file}
}

// SetLevel changes the minimum level for this logger and all its children
func (l *Logger) SetLevel(level Level) {
	l.entry.Logger.SetLevel(level.logrusLevel())
}

// Level returns the current minimum level
func (l *Logger) Level() Level {
	switch l.entry.Logger.GetLevel() {
	case logrus.DebugLevel, logrus.TraceLevel:
		return LevelDebug
	case logrus.WarnLevel:
		return LevelWarn
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return LevelError
	default:
		return LevelInfo
	}
}

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) Debug(msg string)                          { l.entry.Debug(msg) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Info(msg string)                           { l.entry.Info(msg) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warn(msg string)                           { l.entry.Warn(msg) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Error(msg string)                          { l.entry.Error(msg) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// WithError returns a child logger carrying the error and, for application
// errors, its kind and subject (path, param or rule name).
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l.With(F("error", "<nil>"))
	}

	fields := []Field{F("error", err.Error()), F("error_kind", serr.KindOf(err).String())}

	var fileErr *serr.FileError
	if serr.As(err, &fileErr) && fileErr.Path() != "" {
		fields = append(fields, F("path", fileErr.Path()))
	}
	var configErr *serr.ConfigError
	if serr.As(err, &configErr) && configErr.Param() != "" {
		fields = append(fields, F("param", configErr.Param()))
	}
	var ruleErr *serr.RuleError
	if serr.As(err, &ruleErr) && ruleErr.RuleName() != "" {
		fields = append(fields, F("rule_name", ruleErr.RuleName()))
	}
	return l.With(fields...)
}

// Configure replaces the package-level logger. The previous logger's file,
// if any, is closed.
func Configure(opts ...Option) *Logger {
	old := logger
	logger = NewLogger(opts...)
	_ = old.Close()
	return logger
}

// Default returns the package-level logger
func Default() *Logger {
	return logger
}

func Debug(msg string)                          { logger.Debug(msg) }
func Debugf(format string, args ...interface{}) { logger.Debugf(format, args...) }
func Info(msg string)                           { logger.Info(msg) }
func Infof(format string, args ...interface{})  { logger.Infof(format, args...) }
func Warn(msg string)                           { logger.Warn(msg) }
func Warnf(format string, args ...interface{})  { logger.Warnf(format, args...) }
func Error(msg string)                          { logger.Error(msg) }
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }

// LogWithFields returns the package-level logger with extra fields
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogError logs err at error level with msg
func LogError(err error, msg string) {
	logger.WithError(err).Error(msg)
}
