package errors

import (
	"fmt"
	"io"
	"net"
	"testing"
)

func TestNetworkError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  NetworkError
		want string
	}{
		{
			name: "retryable",
			err:  NetworkError{Op: OpDial, Addr: "127.0.0.1:3333", Err: io.EOF, Retryable: true},
			want: "dial 127.0.0.1:3333: EOF (retryable)",
		},
		{
			name: "non-retryable",
			err:  NetworkError{Op: OpRead, Addr: "127.0.0.1:3333", Err: ErrEndOfStream},
			want: "read 127.0.0.1:3333: end of stream",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	err := &NetworkError{Op: OpRead, Addr: "x", Err: ErrEndOfStream}
	if !Is(err, ErrEndOfStream) {
		t.Error("should unwrap to ErrEndOfStream")
	}
}

func TestConnectionAndIOClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantConn bool
		wantIO   bool
	}{
		{"dial", Wrap(OpDial, "x", fmt.Errorf("refused")), true, false},
		{"write", Wrap(OpWrite, "x", fmt.Errorf("broken pipe")), false, true},
		{"read eof", Wrap(OpRead, "x", ErrEndOfStream), false, true},
		{"wrapped read", fmt.Errorf("stat: %w", Wrap(OpRead, "x", io.EOF)), false, true},
		{"state", &StateError{Op: "move", State: "closed"}, false, false},
		{"nil", nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionError(tt.err); got != tt.wantConn {
				t.Errorf("IsConnectionError() = %v, want %v", got, tt.wantConn)
			}
			if got := IsIOError(tt.err); got != tt.wantIO {
				t.Errorf("IsIOError() = %v, want %v", got, tt.wantIO)
			}
		})
	}
}

func TestStateError(t *testing.T) {
	err := &StateError{Op: "kill", State: "disconnected"}
	if got, want := err.Error(), "kill: session is disconnected"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !Is(err, ErrInvalidState) {
		t.Error("StateError should match ErrInvalidState")
	}
}

func TestInputError(t *testing.T) {
	err := &InputError{Field: "angle", Value: 1, Msg: "not finite"}
	if !Is(err, ErrInvalidInput) {
		t.Error("InputError should match ErrInvalidInput")
	}
	if Is(err, ErrInvalidState) {
		t.Error("InputError must not match ErrInvalidState")
	}
}

func TestSSHError_Format(t *testing.T) {
	err := WrapSSH("handshake", "bastion.example.com", 22, fmt.Errorf("connection refused"))
	want := "ssh handshake bastion.example.com:22: connection refused"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSSHError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("auth fail")
	err := WrapSSH("auth", "host", 22, inner)
	if !Is(err, inner) {
		t.Error("should unwrap to inner error")
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "port",
				Value:   99999,
				Message: "out of range 1-65535",
				Hint:    "the default game port is 3333",
			},
			want: "config: --port=99999: out of range 1-65535\n  hint: the default game port is 3333",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "name",
				Message: "required",
			},
			want: "config: --name: required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := Wrap(OpDial, "10.0.0.1:3333", inner)

	if err.Op != OpDial || err.Addr != "10.0.0.1:3333" {
		t.Errorf("wrong fields: Op=%q Addr=%q", err.Op, err.Addr)
	}
	if !Is(err, inner) {
		t.Error("should unwrap to inner error")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable network", &NetworkError{Op: OpDial, Addr: "x", Err: io.EOF, Retryable: true}, true},
		{"non-retryable network", &NetworkError{Op: OpDial, Addr: "x", Err: io.EOF, Retryable: false}, false},
		{"plain error", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyRetryable_NetOpError(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: fmt.Errorf("connection refused")}
	if !classifyRetryable(refused) {
		t.Error("refused dial should be retryable")
	}
	reset := &net.OpError{Op: "read", Net: "tcp", Err: fmt.Errorf("connection reset")}
	if classifyRetryable(reset) {
		t.Error("read reset should not be retryable")
	}
}

func TestSentinels(t *testing.T) {
	sentinels := []error{
		ErrInvalidState, ErrInvalidInput, ErrEndOfStream,
		ErrMalformedLine, ErrLinkClosed, ErrNotConnected, ErrTimeout,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %d and %d should not match", i, j)
			}
		}
	}
}
