package internal

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLoggerLevels(t *testing.T) {
	buf := captureLog(t)
	logger := NewLogger(LogLevelWarn)

	logger.Info("hidden")
	logger.Warn("shown %d", 1)

	assert.Equal(t, "[WARN] shown 1\n", buf.String())
}

func TestLoggerComponent(t *testing.T) {
	buf := captureLog(t)
	logger := NewLogger(LogLevelDebug).With("Navigator")

	logger.Debug("drill down %s", "Machine")

	assert.Equal(t, "[DEBUG] [Navigator] drill down Machine\n", buf.String())
	assert.Equal(t, LogLevelDebug, logger.GetLevel())
}
