// Package errors provides the error taxonomy of the cloudpilot client.
//
// Failures carry structured context (operation, address, retryability)
// so callers can tell a refused dial from a broken stream from a
// programming mistake, and decide for themselves whether to retry.
package errors

import (
	"errors"
	"fmt"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrInvalidState  = errors.New("invalid session state")
	ErrInvalidInput  = errors.New("invalid input")
	ErrEndOfStream   = errors.New("end of stream")
	ErrMalformedLine = errors.New("line contains a line terminator")
	ErrLinkClosed    = errors.New("link is closed")
	ErrNotConnected  = errors.New("not connected")
	ErrTimeout       = errors.New("operation timed out")
)

// ── Operations ───────────────────────────────────────────────────────

// Network operations recorded in a NetworkError.
const (
	OpDial  = "dial"
	OpWrite = "write"
	OpRead  = "read"
	OpClose = "close"
)

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure on the transport.  With Op "dial"
// it is a connection error; with any other Op it is an I/O error on an
// established stream.
type NetworkError struct {
	Op        string // OpDial, OpWrite, OpRead or OpClose
	Addr      string // remote address involved
	Err       error  // underlying error
	Retryable bool   // whether the caller may retry
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StateError is returned when an operation is attempted outside the
// state it is valid in.
type StateError struct {
	Op    string // operation attempted, e.g. "move"
	State string // state the session was in
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: session is %s", e.Op, e.State)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// InputError reports a value that cannot be turned into a command.
type InputError struct {
	Field string
	Value float64
	Msg   string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Msg)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// SSHError represents an SSH-specific failure with host context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, automatically detecting retryability
// from the underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsConnectionError reports whether err happened while establishing
// the connection.
func IsConnectionError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Op == OpDial
}

// IsIOError reports whether err is a read, write or close failure on
// an established stream.  End-of-stream counts as an I/O error.
func IsIOError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Op != OpDial
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// classifyRetryable inspects standard library error types.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		// A refused dial is the usual "server not up yet" case.
		if opErr.Op == "dial" {
			return true
		}
		return opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() //nolint:staticcheck
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
