package util

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// Traffic meter
// ──────────────────────────────────────────────────────────────────────────────

// Stats is the process-wide traffic meter.
var Stats = &Meter{}

// Meter counts traffic and protocol activity. All fields are safe for
// concurrent use: the inbound and outbound loops update it independently.
type Meter struct {
	BytesSent    atomic.Int64 // bytes written to the channel
	BytesRecv    atomic.Int64 // bytes read from the channel
	MessagesSent atomic.Int64
	MessagesRecv atomic.Int64
	FilesSent    atomic.Int64
	FilesRecv    atomic.Int64
}

func (m *Meter) AddSent(n int) { m.BytesSent.Add(int64(n)) }
func (m *Meter) AddRecv(n int) { m.BytesRecv.Add(int64(n)) }
func (m *Meter) MessageSent()  { m.MessagesSent.Add(1) }
func (m *Meter) MessageRecv()  { m.MessagesRecv.Add(1) }
func (m *Meter) FileSent()     { m.FilesSent.Add(1) }
func (m *Meter) FileRecv()     { m.FilesRecv.Add(1) }

// Summary returns a one-line description of everything counted so far.
func (m *Meter) Summary() string {
	return fmt.Sprintf("sent %s (%d msg, %d file) | received %s (%d msg, %d file)",
		FormatBytes(float64(m.BytesSent.Load())),
		m.MessagesSent.Load(),
		m.FilesSent.Load(),
		FormatBytes(float64(m.BytesRecv.Load())),
		m.MessagesRecv.Load(),
		m.FilesRecv.Load(),
	)
}

// ──────────────────────────────────────────────────────────────────────────────
// Periodic reporter
// ──────────────────────────────────────────────────────────────────────────────

// StartStatsReporter launches a goroutine that logs channel throughput at
// debug level every 10 seconds while there is traffic. It stops when ctx is
// cancelled.
func StartStatsReporter(ctx context.Context, m *Meter) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		var prevSent, prevRecv int64
		for {
			select {
			case <-ticker.C:
				sent := m.BytesSent.Load()
				recv := m.BytesRecv.Load()

				outS := float64(sent-prevSent) / 10.0
				inS := float64(recv-prevRecv) / 10.0

				if inS > 10 || outS > 10 {
					LogDebug("%s", formatRates(inS, outS))
				}

				prevSent = sent
				prevRecv = recv

			case <-ctx.Done():
				return
			}
		}
	}()
}

// byteUnits defines the units for formatting byte counts in a human-readable way.
var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// FormatBytes formats a byte count into a human-readable string with fixed width (exactly 8 chars)
// for example: "99.0   B", " 1.5 KiB", " 0.1 MiB", "98.9 GiB", etc.
func FormatBytes(b float64) string {
	unitIdx := 0

	// to prevent "100.0 KiB", which is 9 chars
	for b > 99 && unitIdx < 5 {
		b /= 1024
		unitIdx++
	}

	return fmt.Sprintf("%4.1f %3s", b, byteUnits[unitIdx])
}

// formatRates returns the current throughput for display in the logger.
func formatRates(inS, outS float64) string {
	return fmt.Sprintf("In: %s/s | Out: %s/s", FormatBytes(inS), FormatBytes(outS))
}
