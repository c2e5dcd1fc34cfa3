package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
	name  string
}

func New(core zapcore.Core, level zap.AtomicLevel) *Logger {
	return &Logger{
		Logger: zap.New(core),
		level:  level,
	}
}

// NewLogger builds a console logger for development and a JSON logger for
// every other environment.
func NewLogger(cfg Config) (*Logger, error) {
	var encoderConfig zapcore.EncoderConfig
	var encoder zapcore.Encoder
	var level zapcore.Level

	switch cfg.Environment {
	case "development", "dev", "":
		encoderConfig = zapcore.EncoderConfig{
			CallerKey:      "C",
			EncodeCaller:   zapcore.ShortCallerEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			LevelKey:       "L",
			LineEnding:     "\n",
			MessageKey:     "M",
			NameKey:        "N",
			TimeKey:        "T",
		}
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
		level = zapcore.DebugLevel
	default:
		encoderConfig = zapcore.EncoderConfig{
			CallerKey:      "caller",
			EncodeCaller:   zapcore.ShortCallerEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeName:     zapcore.FullNameEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			LevelKey:       "level",
			LineEnding:     "\n",
			MessageKey:     "message",
			NameKey:        "logger",
			StacktraceKey:  "stacktrace",
			TimeKey:        "@timestamp",
		}
		encoder = zapcore.NewJSONEncoder(encoderConfig)
		level = zapcore.InfoLevel
	}

	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
		}
		level = parsed
	}

	sink := zapcore.Lock(os.Stdout)
	if cfg.File != "" {
		sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(&lumberjack.Logger{
			Filename: cfg.File,
			MaxSize:  100,
			MaxAge:   28,
			Compress: true,
		}))
	}

	atomic := zap.NewAtomicLevelAt(level)
	return New(zapcore.NewCore(encoder, sink, atomic), atomic), nil
}

// NewTestLogger returns a logger that discards everything.
func NewTestLogger() *Logger {
	return New(zapcore.NewNopCore(), zap.NewAtomicLevelAt(zapcore.DebugLevel))
}

func (log *Logger) GetName() string {
	return log.name
}

func (log *Logger) Named(name string) *Logger {
	newName := name
	if log.name != "" {
		newName = fmt.Sprintf("%s.%s", log.name, name)
	}
	return &Logger{
		Logger: log.Logger.Named(name),
		level:  log.level,
		name:   newName,
	}
}

func (log *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{
		Logger: log.Logger.With(fields...),
		level:  log.level,
		name:   log.name,
	}
}

func (log *Logger) SetLevel(level zapcore.Level) {
	log.level.SetLevel(level)
}

// AtExit flushes the logs before exiting the process. This is meant to be used
// with defer when initializing your logger
func (log *Logger) AtExit() {
	if log.Logger != nil {
		_ = log.Logger.Sync()
	}
}

// GooseLogger adapts the logger to the migration tool's printf interface.
func (log *Logger) GooseLogger() *PrintfLogger {
	return &PrintfLogger{log: log.Logger.WithOptions(zap.AddCallerSkip(2)).Sugar()}
}

// RecoveryLogger adapts the logger for the HTTP panic recovery handler.
func (log *Logger) RecoveryLogger() *PrintfLogger {
	return &PrintfLogger{log: log.Logger.WithOptions(zap.AddCallerSkip(2)).Sugar(), errors: true}
}

// PrintfLogger exposes the log.Logger style methods third party packages
// expect. Entries go out at info level, or error level when errors is set.
type PrintfLogger struct {
	log    *zap.SugaredLogger
	errors bool
}

func (l *PrintfLogger) Print(v ...interface{}) {
	l.emit(fmt.Sprint(v...))
}

func (l *PrintfLogger) Println(v ...interface{}) {
	l.emit(fmt.Sprintln(v...))
}

func (l *PrintfLogger) Printf(format string, v ...interface{}) {
	l.emit(fmt.Sprintf(format, v...))
}

func (l *PrintfLogger) Fatal(v ...interface{}) {
	l.log.Fatal(strings.TrimSpace(fmt.Sprint(v...)))
}

func (l *PrintfLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *PrintfLogger) emit(msg string) {
	msg = strings.TrimSpace(msg)
	if l.errors {
		l.log.Error(msg)
		return
	}
	l.log.Info(msg)
}
