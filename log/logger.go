/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package log

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"code.cloudfoundry.org/bytefmt"
	"github.com/ssgreg/logf"
	"github.com/ssgreg/logftext"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/acronis/go-crptapi/config"
)

// Field is a single structured logging field.
type Field = logf.Field

// LogFunc logs a message with a bound level.
// nolint: revive
type LogFunc = logf.LogFunc

// CloseFunc flushes buffered entries and releases the log output.
type CloseFunc func()

// Field constructors.
var (
	Error      = logf.Error
	NamedError = logf.NamedError
	String     = logf.String
	Strings    = logf.Strings
	Int        = logf.Int
	Int64      = logf.Int64
	Duration   = logf.Duration
	Bool       = logf.Bool
)

// DurationIn returns a "duration" field with val expressed as an integer number of units.
func DurationIn(val, unit time.Duration) Field {
	return Int64("duration", val.Nanoseconds()/unit.Nanoseconds())
}

// FieldLogger is an interface for loggers which writes logs in structured format.
type FieldLogger interface {
	With(...Field) FieldLogger

	Debug(string, ...Field)
	Info(string, ...Field)
	Warn(string, ...Field)
	Error(string, ...Field)

	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})

	AtLevel(Level, func(LogFunc))
}

// LoggerOpts represents options for NewLoggerWithOpts.
type LoggerOpts struct {
	// SecretHeaders are names of HTTP headers whose values are always masked,
	// even if masking is disabled in the configuration.
	SecretHeaders []string

	// Writer replaces os.Stdout or os.Stderr. It is not used for the "file" output.
	Writer io.Writer
}

// NewLogger returns a new logger and a function that flushes it and closes the output.
func NewLogger(cfg *Config) (FieldLogger, CloseFunc) {
	return NewLoggerWithOpts(cfg, LoggerOpts{})
}

// NewLoggerWithOpts returns a new logger with the given options
// and a function that flushes it and closes the output.
func NewLoggerWithOpts(cfg *Config, opts LoggerOpts) (FieldLogger, CloseFunc) {
	out, closeOut := openOutput(cfg, opts.Writer)
	channel, flush := logf.NewChannelWriter(logf.ChannelWriterConfig{
		Appender:          newAppender(cfg, out),
		EnableSyncOnError: true,
	})

	base := logf.NewLogger(cfg.Level.logfLevel(), channel).With(logf.Int("pid", os.Getpid()))
	if cfg.AddCaller {
		// skip the adapter frame
		base = base.WithCaller().WithCallerSkip(1)
	}

	var logger FieldLogger = &LogfAdapter{base}
	if rules := maskingRules(cfg, opts.SecretHeaders); len(rules) != 0 {
		logger = NewMaskingLogger(logger, NewMasker(rules))
	}
	return logger, func() {
		flush()
		closeOut()
	}
}

func maskingRules(cfg *Config, secretHeaders []string) []MaskingRuleConfig {
	var rules []MaskingRuleConfig
	if cfg.Masking.Enabled {
		rules = append(rules, cfg.Masking.Rules...)
		if cfg.Masking.UseDefaultRules {
			rules = append(rules, DefaultMasks...)
		}
	}
	for _, header := range secretHeaders {
		if header != "" {
			rules = append(rules, HeaderMaskingRule(header))
		}
	}
	return rules
}

func openOutput(cfg *Config, w io.Writer) (io.Writer, func()) {
	switch {
	case cfg.Output == OutputFile:
		rotated := &lumberjack.Logger{
			Filename:   expandPathPlaceholders(cfg.File.Path, time.Now()),
			MaxSize:    rotationMaxSizeMB(cfg.File.Rotation.MaxSize),
			MaxBackups: cfg.File.Rotation.MaxBackups,
			MaxAge:     cfg.File.Rotation.MaxAgeDays,
			Compress:   cfg.File.Rotation.Compress,
			LocalTime:  cfg.File.Rotation.LocalTimeInNames,
		}
		return rotated, func() { _ = rotated.Close() }
	case w != nil:
		return w, func() {}
	case cfg.Output == OutputStderr:
		return os.Stderr, func() {}
	}
	return os.Stdout, func() {}
}

// rotationMaxSizeMB converts the size to whole megabytes, lumberjack treats 0 as its own default.
func rotationMaxSizeMB(size config.ByteSize) int {
	if mb := int(uint64(size) / bytefmt.MEGABYTE); mb > 0 {
		return mb
	}
	return 1
}

func newAppender(cfg *Config, w io.Writer) logf.Appender {
	var errEncoder logf.ErrorEncoder
	if cfg.Error.NoVerbose || cfg.Error.VerboseSuffix != "" {
		errEncoder = logf.NewErrorEncoder(logf.ErrorEncoderConfig{
			NoVerboseField:     cfg.Error.NoVerbose,
			VerboseFieldSuffix: cfg.Error.VerboseSuffix,
		})
	}

	if cfg.Format == FormatText {
		noColor := cfg.NoColor
		return logftext.NewAppender(w, logftext.EncoderConfig{
			NoColor:     &noColor,
			EncodeTime:  logf.RFC3339NanoTimeEncoder,
			EncodeError: errEncoder,
		})
	}
	return logf.NewWriteAppender(w, logf.NewJSONEncoder(logf.JSONEncoderConfig{
		FieldKeyTime: "time",
		EncodeTime:   logf.RFC3339NanoTimeEncoder,
		EncodeError:  errEncoder,
	}))
}

// expandPathPlaceholders replaces {{pid}} and {{starttime}} in the log file path.
func expandPathPlaceholders(path string, start time.Time) string {
	return strings.NewReplacer(
		"{{pid}}", strconv.Itoa(os.Getpid()),
		"{{starttime}}", start.Format("200601021504"),
	).Replace(path)
}

// LogfAdapter adapts logf.Logger to FieldLogger interface.
type LogfAdapter struct {
	Logger *logf.Logger
}

// NewDisabledLogger returns a new logger that logs nothing.
func NewDisabledLogger() FieldLogger {
	return &LogfAdapter{logf.NewDisabledLogger()}
}

// With returns a new logger with the given additional fields.
func (l *LogfAdapter) With(fs ...Field) FieldLogger {
	return &LogfAdapter{l.Logger.With(fs...)}
}

// Debug logs message at "debug" level.
func (l *LogfAdapter) Debug(text string, fs ...Field) { l.Logger.Debug(text, fs...) }

// Info logs message at "info" level.
func (l *LogfAdapter) Info(text string, fs ...Field) { l.Logger.Info(text, fs...) }

// Warn logs message at "warn" level.
func (l *LogfAdapter) Warn(text string, fs ...Field) { l.Logger.Warn(text, fs...) }

// Error logs message at "error" level.
func (l *LogfAdapter) Error(text string, fs ...Field) { l.Logger.Error(text, fs...) }

// Debugf logs a formatted message at "debug" level.
func (l *LogfAdapter) Debugf(format string, args ...interface{}) { l.printf(LevelDebug, format, args) }

// Infof logs a formatted message at "info" level.
func (l *LogfAdapter) Infof(format string, args ...interface{}) { l.printf(LevelInfo, format, args) }

// Warnf logs a formatted message at "warn" level.
func (l *LogfAdapter) Warnf(format string, args ...interface{}) { l.printf(LevelWarn, format, args) }

// Errorf logs a formatted message at "error" level.
func (l *LogfAdapter) Errorf(format string, args ...interface{}) { l.printf(LevelError, format, args) }

// AtLevel calls fn with a LogFunc bound to the level if the level is enabled.
func (l *LogfAdapter) AtLevel(level Level, fn func(logFunc LogFunc)) {
	l.Logger.AtLevel(level.logfLevel(), fn)
}

// printf formats lazily, only if the level is enabled.
func (l *LogfAdapter) printf(level Level, format string, args []interface{}) {
	l.Logger.AtLevel(level.logfLevel(), func(logFunc LogFunc) {
		logFunc(fmt.Sprintf(format, args...))
	})
}

var logfLevels = map[Level]logf.Level{
	LevelError: logf.LevelError,
	LevelWarn:  logf.LevelWarn,
	LevelInfo:  logf.LevelInfo,
	LevelDebug: logf.LevelDebug,
}

// logfLevel maps the level to logf, unknown levels are treated as "info".
func (lvl Level) logfLevel() logf.Level {
	if l, ok := logfLevels[lvl]; ok {
		return l
	}
	return logf.LevelInfo
}
