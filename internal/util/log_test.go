package util

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/pterm/pterm"
)

// captureLog redirects the logger into a buffer for the rest of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	pterm.DisableColor()
	level := pterm.DefaultLogger.Level

	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() {
		SetLogOutput(os.Stderr)
		pterm.DefaultLogger.Level = level
		pterm.EnableColor()
	})
	return &buf
}

func TestLogLevels(t *testing.T) {
	testCases := []struct {
		name  string
		log   func(format string, args ...interface{})
		level string
	}{
		{"info", LogInfo, "INFO"},
		{"warning", LogWarning, "WARN"},
		{"error", LogError, "ERROR"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureLog(t)
			tc.log("peer %s sent %d files", "A", 2)

			out := buf.String()
			if !strings.Contains(out, tc.level) || !strings.Contains(out, "peer A sent 2 files") {
				t.Errorf("output = %q, want level %s and the formatted message", out, tc.level)
			}
		})
	}
}

func TestLogSuccessStatus(t *testing.T) {
	buf := captureLog(t)
	LogSuccess("connected to %s", "127.0.0.1:4444")

	out := buf.String()
	if !strings.Contains(out, "connected to 127.0.0.1:4444") || !strings.Contains(out, "status: ok") {
		t.Errorf("output = %q, want message and status: ok", out)
	}

	buf.Reset()
	LogInfo("plain")
	if strings.Contains(buf.String(), "status") {
		t.Errorf("info line carries the success status: %q", buf.String())
	}
}

func TestLogDebugGated(t *testing.T) {
	buf := captureLog(t)
	pterm.DefaultLogger.Level = pterm.LogLevelInfo

	LogDebug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line printed at info level: %q", buf.String())
	}

	EnableDebug()
	LogDebug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("debug line missing after EnableDebug: %q", buf.String())
	}
}
