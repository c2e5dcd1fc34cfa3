package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	atomic := zap.NewAtomicLevelAt(level)
	core, logs := observer.New(atomic)
	return New(core, atomic), logs
}

func TestNamedJoinsNames(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)

	named := log.Named("api").Named("handler")
	assert.Equal(t, "api.handler", named.GetName())

	named.Info("hello", String("k", "v"), Int64("id", 3))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "api.handler", entry.LoggerName)
	assert.Equal(t, "v", entry.ContextMap()["k"])
	assert.Equal(t, int64(3), entry.ContextMap()["id"])
}

func TestSetLevelIsShared(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)
	child := log.Named("db").With(String("dialect", "sqlite"))

	log.SetLevel(zapcore.WarnLevel)
	child.Info("dropped")
	child.Warn("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, "sqlite", logs.All()[0].ContextMap()["dialect"])
}

func TestPrintfLoggerLevels(t *testing.T) {
	log, logs := newObserved(zapcore.DebugLevel)

	log.GooseLogger().Printf("OK    %s\n", "0001_initial.sql")
	log.RecoveryLogger().Println("boom")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "OK    0001_initial.sql", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].Message)
}

func TestNewLoggerLevels(t *testing.T) {
	dev, err := NewLogger(Config{Environment: "development"})
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	prod, err := NewLogger(Config{Environment: "production"})
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, prod.Core().Enabled(zapcore.InfoLevel))

	quiet, err := NewLogger(Config{Environment: "development", Level: "error"})
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restogrades.log")

	log, err := NewLogger(Config{Environment: "production", File: path})
	require.NoError(t, err)
	log.Info("to disk")
	log.AtExit()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"message":"to disk"`)
}
