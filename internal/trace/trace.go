// Package trace records the protocol exchange: one line per command
// sent and one per response received.  The trace is a diagnostic side
// effect; it never influences the exchange itself.
package trace

import (
	"fmt"
	"sync"

	"cloudpilot/util"
)

// Direction tells whether a traced line went out or came back.
type Direction int

const (
	Send Direction = iota
	Recv
)

func (d Direction) String() string {
	if d == Send {
		return "SEND"
	}
	return "RESP"
}

// Format renders a trace line the way every sink prints it,
// e.g. "SEND: nameHansAI".
func Format(d Direction, line string) string {
	return fmt.Sprintf("%s: %s", d, line)
}

// Sink receives traced protocol lines.  Implementations must be safe
// to call from the goroutine that owns the session.
type Sink interface {
	Emit(d Direction, line string)
}

// ── Nop ──────────────────────────────────────────────────────────────

type nop struct{}

func (nop) Emit(Direction, string) {}

// Nop discards every line.
var Nop Sink = nop{}

// ── Logger ───────────────────────────────────────────────────────────

// LoggerSink writes the trace through the CLI logger at verbose level.
type LoggerSink struct {
	Logger *util.Logger
}

// Emit implements Sink.
func (s LoggerSink) Emit(d Direction, line string) {
	s.Logger.Verbose("%s", Format(d, line))
}

// ── Recorder ─────────────────────────────────────────────────────────

// Recorder keeps the formatted trace in memory.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Emit implements Sink.
func (r *Recorder) Emit(d Direction, line string) {
	r.mu.Lock()
	r.lines = append(r.lines, Format(d, line))
	r.mu.Unlock()
}

// Lines returns a copy of everything recorded so far.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Reset drops the recorded lines.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.lines = nil
	r.mu.Unlock()
}

// ── Multi ────────────────────────────────────────────────────────────

type multi []Sink

func (m multi) Emit(d Direction, line string) {
	for _, s := range m {
		s.Emit(d, line)
	}
}

// Multi fans every line out to all non-nil sinks.
func Multi(sinks ...Sink) Sink {
	var out multi
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return Nop
	case 1:
		return out[0]
	}
	return out
}
