package logger

import (
	"log/slog"
	"os"
	"sync"

	"github.com/lmittmann/tint"
)

var (
	once   sync.Once
	logger *slog.Logger
)

type Options struct {
	Level      slog.Leveler // slog.LevelInfo, slog.LevelDebug, etc.
	Writer     *os.File     // default: os.Stderr
	TimeFormat string
}

// Init configures the process-wide logger with a tinted handler. Subsequent
// calls are no-ops.
func Init(opts *Options) {
	once.Do(func() {
		writer := opts.Writer
		if writer == nil {
			writer = os.Stderr
		}

		handler := tint.NewHandler(writer, &tint.Options{
			Level:      opts.Level,
			TimeFormat: opts.TimeFormat,
		})

		logger = slog.New(handler)
		slog.SetDefault(logger)
	})
}

func L() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func Info(msg string, args ...any)  { L().Info(msg, args...) }
func Debug(msg string, args ...any) { L().Debug(msg, args...) }
func Warn(msg string, args ...any)  { L().Warn(msg, args...) }
func Error(msg string, args ...any) { L().Error(msg, args...) }

// Fatal logs an error then exits.
func Fatal(msg string, args ...any) {
	L().Error(msg, args...)
	os.Exit(1)
}

func With(args ...any) *slog.Logger {
	return L().With(args...)
}
