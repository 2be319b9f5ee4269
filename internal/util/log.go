// Package util provides shared utility functions: leveled logging and the
// traffic meter.
package util

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
)

// Chat lines own stdout, so diagnostics are written to stderr.
func init() {
	pterm.DefaultLogger.ShowTime = true
	pterm.DefaultLogger.TimeFormat = "02 Jan 15:04:05"
	pterm.DefaultLogger.MaxWidth = 1000
	pterm.DefaultLogger.Writer = os.Stderr
}

// successArgs tags info lines that report a completed step.
var successArgs = pterm.DefaultLogger.Args("status", "ok")

// logf formats only when the level is enabled.
func logf(level pterm.LogLevel, format string, args []interface{}, extra ...[]pterm.LoggerArgument) {
	l := pterm.DefaultLogger
	if !l.CanPrint(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)

	switch level {
	case pterm.LogLevelDebug:
		l.Debug(msg, extra...)
	case pterm.LogLevelWarn:
		l.Warn(msg, extra...)
	case pterm.LogLevelError:
		l.Error(msg, extra...)
	default:
		l.Info(msg, extra...)
	}
}

func LogDebug(format string, args ...interface{})   { logf(pterm.LogLevelDebug, format, args) }
func LogInfo(format string, args ...interface{})    { logf(pterm.LogLevelInfo, format, args) }
func LogWarning(format string, args ...interface{}) { logf(pterm.LogLevelWarn, format, args) }
func LogError(format string, args ...interface{})   { logf(pterm.LogLevelError, format, args) }

// LogSuccess logs at info level with a "status: ok" argument.
func LogSuccess(format string, args ...interface{}) {
	logf(pterm.LogLevelInfo, format, args, successArgs)
}

// EnableDebug configures the logger to show debug messages.
func EnableDebug() {
	pterm.DefaultLogger.Level = pterm.LogLevelDebug
}

// SetLogOutput redirects the logger, e.g. to io.Discard in tests.
func SetLogOutput(w io.Writer) {
	pterm.DefaultLogger.Writer = w
}
