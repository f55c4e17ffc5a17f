// Package metrics provides lightweight, lock-free counters for the
// runtime statistics of a cloudpilot session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for one session.
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	connects    atomic.Int64
	linesOut    atomic.Int64
	linesIn     atomic.Int64
	bytesIn     atomic.Int64
	bytesOut    atomic.Int64
	errorsTotal atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastExchange time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connection ───────────────────────────────────────────────────────

// Connected records a successfully opened link.
func (c *Collector) Connected() {
	if c == nil {
		return
	}
	c.connects.Add(1)
}

// Connects returns how many links were opened.
func (c *Collector) Connects() int64 {
	if c == nil {
		return 0
	}
	return c.connects.Load()
}

// ── Lines ────────────────────────────────────────────────────────────

// LineSent records one command line of n bytes (terminator included).
func (c *Collector) LineSent(n int) {
	if c == nil {
		return
	}
	c.linesOut.Add(1)
	c.bytesOut.Add(int64(n))
}

// LineReceived records one response line of n bytes.
func (c *Collector) LineReceived(n int) {
	if c == nil {
		return
	}
	c.linesIn.Add(1)
	c.bytesIn.Add(int64(n))
	c.mu.Lock()
	c.lastExchange = time.Now()
	c.mu.Unlock()
}

// CommandsSent returns the number of lines written.
func (c *Collector) CommandsSent() int64 {
	if c == nil {
		return 0
	}
	return c.linesOut.Load()
}

// ResponsesReceived returns the number of lines read.
func (c *Collector) ResponsesReceived() int64 {
	if c == nil {
		return 0
	}
	return c.linesIn.Load()
}

// TotalBytesIn returns total bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Errors ───────────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime            string `json:"uptime"`
	Connects          int64  `json:"connects"`
	CommandsSent      int64  `json:"commands_sent"`
	ResponsesReceived int64  `json:"responses_received"`
	BytesIn           int64  `json:"bytes_in"`
	BytesOut          int64  `json:"bytes_out"`
	ErrorsTotal       int64  `json:"errors_total"`
	LastExchange      string `json:"last_exchange,omitempty"`
	LastError         string `json:"last_error,omitempty"`
	LastErrorMessage  string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:            time.Since(c.startTime).Truncate(time.Second).String(),
		Connects:          c.connects.Load(),
		CommandsSent:      c.linesOut.Load(),
		ResponsesReceived: c.linesIn.Load(),
		BytesIn:           c.bytesIn.Load(),
		BytesOut:          c.bytesOut.Load(),
		ErrorsTotal:       c.errorsTotal.Load(),
	}
	if !c.lastExchange.IsZero() {
		s.LastExchange = c.lastExchange.Format(time.RFC3339)
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
