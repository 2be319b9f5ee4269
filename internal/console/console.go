// Package console renders the chat stream on the terminal: timestamped peer
// messages, the local echo, and colored transfer and error notices.
package console

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/pterm/pterm"
)

// TimeLayout is the clock format shown in front of chat lines.
const TimeLayout = "15:04:05"

// Console writes chat lines to an io.Writer. Both session loops print through
// it, so every line is written under a lock.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// New returns a Console writing to out.
func New(out io.Writer) *Console {
	return &Console{out: out}
}

// Stamp formats t as "[hh:mm:ss] ". The zero time yields an empty prefix.
func Stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return "[" + t.Format(TimeLayout) + "] "
}

// Message prints a line received from the peer.
func (c *Console) Message(at time.Time, from, body string) {
	c.println(Stamp(at) + from + ": " + body)
}

// Echo prints the local user's own message in blue.
func (c *Console) Echo(at time.Time, body string) {
	c.println(paint(pterm.FgBlue, Stamp(at)+"Me: "+body))
}

// Status prints an uncolored session event such as a join or disconnect.
func (c *Console) Status(at time.Time, msg string) {
	c.println(Stamp(at) + msg)
}

// Notice prints transfer progress in yellow.
func (c *Console) Notice(at time.Time, msg string) {
	c.println(paint(pterm.FgYellow, Stamp(at)+msg))
}

// Alert prints a failure in red.
func (c *Console) Alert(at time.Time, msg string) {
	c.println(paint(pterm.FgRed, Stamp(at)+msg))
}

func (c *Console) println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}

// paint colors s without interpreting pterm style tags, so peer text such as
// "<red>" is shown verbatim.
func paint(c pterm.Color, s string) string {
	if !pterm.PrintColor {
		return s
	}
	return color.RenderCode(c.String(), s)
}
