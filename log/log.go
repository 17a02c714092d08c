// Package log provides the structured leveled logger used across the
// repository. It is a thin wrapper over zerolog with a console-friendly
// output and a small formatted/keyvalue call surface.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Available log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
	LogLevelFatal = "fatal"

	logTestWriterName = "stdouttest"
)

var (
	logger zerolog.Logger
	level  string

	// logTestWriter is the writer used when the output is set to
	// logTestWriterName. Overridable from tests and benchmarks.
	logTestWriter io.Writer = io.Discard

	// panicOnInvalidChars triggers a panic if a log message contains
	// invalid (non-UTF8) characters. Enabled via the
	// LOG_PANIC_ON_INVALIDCHARS environment variable; meant for tests.
	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"
)

// invalidCharChecker panics if the formatted message contains invalid
// characters. Costs an extra formatting pass, so it is only active when
// panicOnInvalidChars is set.
type invalidCharChecker struct{}

func (invalidCharChecker) Write(p []byte) (int, error) {
	if strings.ContainsRune(string(p), '�') {
		panic(fmt.Sprintf("log line with invalid chars: %q", string(p)))
	}
	return len(p), nil
}

// Init initializes the logger with the given level ("debug", "info",
// "warn", "error" or "fatal") and output ("stdout", "stderr" or a file
// path). If errorOutput is not nil, all messages of level error or above
// are duplicated to it.
func Init(logLevel string, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot open log output %q: %v", output, err))
		}
		out = f
	}
	if output == "stdout" || output == "stderr" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "3:04:05PM",
		}
	}
	writers := []io.Writer{out}
	if errorOutput != nil {
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.MultiLevelWriter(errorOutput),
			Level:  zerolog.ErrorLevel,
		})
	}
	if panicOnInvalidChars {
		writers = append(writers, invalidCharChecker{})
	}

	zl, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		panic(fmt.Sprintf("invalid log level %q: %v", logLevel, err))
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zl).
		With().Timestamp().Caller().
		Logger()
	level = logLevel
	Infow("logger construction succeeded", "level", logLevel, "output", output)
}

// Level returns the current log level.
func Level() string { return level }

// Logger returns the underlying zerolog logger.
func Logger() *zerolog.Logger { return &logger }

func logw(ev *zerolog.Event, msg string, keyvalues []any) {
	for i := 0; i+1 < len(keyvalues); i += 2 {
		key, ok := keyvalues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keyvalues[i])
		}
		ev = ev.Interface(key, keyvalues[i+1])
	}
	ev.CallerSkipFrame(2).Msg(msg)
}

// Debug sends a debug level log message.
func Debug(args ...any) { logger.Debug().CallerSkipFrame(1).Msg(fmt.Sprint(args...)) }

// Info sends an info level log message.
func Info(args ...any) { logger.Info().CallerSkipFrame(1).Msg(fmt.Sprint(args...)) }

// Warn sends a warn level log message.
func Warn(args ...any) { logger.Warn().CallerSkipFrame(1).Msg(fmt.Sprint(args...)) }

// Error sends an error level log message.
func Error(args ...any) { logger.Error().CallerSkipFrame(1).Msg(fmt.Sprint(args...)) }

// Debugf sends a formatted debug level log message.
func Debugf(template string, args ...any) {
	logger.Debug().CallerSkipFrame(1).Msg(fmt.Sprintf(template, args...))
}

// Infof sends a formatted info level log message.
func Infof(template string, args ...any) {
	logger.Info().CallerSkipFrame(1).Msg(fmt.Sprintf(template, args...))
}

// Warnf sends a formatted warn level log message.
func Warnf(template string, args ...any) {
	logger.Warn().CallerSkipFrame(1).Msg(fmt.Sprintf(template, args...))
}

// Errorf sends a formatted error level log message.
func Errorf(template string, args ...any) {
	logger.Error().CallerSkipFrame(1).Msg(fmt.Sprintf(template, args...))
}

// Fatalf sends a formatted fatal level log message and exits.
func Fatalf(template string, args ...any) {
	logger.Fatal().CallerSkipFrame(1).Msg(fmt.Sprintf(template, args...))
}

// Debugw sends a debug level log message with key-value pairs.
func Debugw(msg string, keyvalues ...any) { logw(logger.Debug(), msg, keyvalues) }

// Infow sends an info level log message with key-value pairs.
func Infow(msg string, keyvalues ...any) { logw(logger.Info(), msg, keyvalues) }

// Warnw sends a warn level log message with key-value pairs.
func Warnw(msg string, keyvalues ...any) { logw(logger.Warn(), msg, keyvalues) }

// Errorw sends an error level log message with an error and key-value pairs.
func Errorw(err error, msg string, keyvalues ...any) {
	logw(logger.Error().Err(err), msg, keyvalues)
}
