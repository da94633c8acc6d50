package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LevelWarn, &buf)

	log.Debug("debug message")
	log.Info("info message")
	assert.Empty(t, buf.String())

	log.Warn("warn message")
	log.Error("error message")

	out := buf.String()
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "[ERROR]")
}

func TestFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LevelDebug, &buf)

	log.Info("scoring candidate", F("path", "app/services/order.py"), F("score", 82))

	out := buf.String()
	assert.Contains(t, out, "scoring candidate")
	assert.Contains(t, out, "path=app/services/order.py")
	assert.Contains(t, out, "score=82")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LevelDebug, &buf)

	scoped := log.WithFields(F("component", "gate"))
	scoped.Info("analysis complete", F("decision", "allow"))

	out := buf.String()
	assert.Contains(t, out, "component=gate")
	assert.Contains(t, out, "decision=allow")

	// Parent logger is unaffected by the child's fields
	buf.Reset()
	log.Info("plain")
	assert.NotContains(t, buf.String(), "component=gate")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LevelSilent, &buf)

	log.Error("dropped")
	assert.Empty(t, buf.String())

	log.SetLevel(LevelDebug)
	log.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestSilentLogger(t *testing.T) {
	log := NewSilentLogger()
	// Must not panic and must discard everything
	log.Debug("a")
	log.Info("b")
	log.Warn("c")
	log.Error("d")
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "SILENT", LevelSilent.String())
}
