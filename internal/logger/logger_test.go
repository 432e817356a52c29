package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestDebugSilentByDefault(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("hidden %s", "message")
	Info("also hidden")
	Warn("still hidden")

	assert.Empty(t, buf.String())
}

func TestVerboseOutput(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("stream opened for %s", "abc")
	Info("upload complete")
	Warn("listing refresh failed")

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] stream opened for abc")
	assert.Contains(t, out, "[INFO] upload complete")
	assert.Contains(t, out, "[WARN] listing refresh failed")
}

func TestErrorAlwaysPrinted(t *testing.T) {
	defer reset()
	var buf bytes.Buffer
	SetOutput(&buf)

	Error("upload failed: %s", "timeout")

	assert.Contains(t, buf.String(), "[ERROR] upload failed: timeout")
}
