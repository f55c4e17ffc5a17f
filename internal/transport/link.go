package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	ncerr "cloudpilot/internal/errors"
	"cloudpilot/internal/metrics"
	"cloudpilot/internal/trace"
)

// LinkOptions configures a Link.  The zero value is usable: no trace,
// no metrics, reads block until a line arrives.
type LinkOptions struct {
	Sink        trace.Sink
	Metrics     *metrics.Collector
	ReadTimeout time.Duration // per ReceiveLine deadline, 0 = none
}

// Link is a line-framed, bidirectional stream to one server.  It is
// not safe for concurrent use; the owning session serializes access.
type Link struct {
	conn        net.Conn
	reader      *bufio.Reader
	addr        string
	sink        trace.Sink
	metrics     *metrics.Collector
	readTimeout time.Duration

	closeOnce sync.Once
	closed    atomic.Bool
}

// Open dials address with d and wraps the connection in a Link.  Dial
// failures are returned as connection errors (Op "dial").
func Open(ctx context.Context, d Dialer, address string, opts LinkOptions) (*Link, error) {
	conn, err := d.Dial(ctx, "tcp", address)
	if err != nil {
		opts.Metrics.RecordError(err.Error())
		return nil, ncerr.Wrap(ncerr.OpDial, address, err)
	}
	opts.Metrics.Connected()
	return NewLink(conn, opts), nil
}

// NewLink frames an already established connection.
func NewLink(conn net.Conn, opts LinkOptions) *Link {
	sink := opts.Sink
	if sink == nil {
		sink = trace.Nop
	}
	addr := ""
	if ra := conn.RemoteAddr(); ra != nil {
		addr = ra.String()
	}
	return &Link{
		conn:        conn,
		reader:      bufio.NewReader(conn),
		addr:        addr,
		sink:        sink,
		metrics:     opts.Metrics,
		readTimeout: opts.ReadTimeout,
	}
}

// RemoteAddr returns the address of the peer.
func (l *Link) RemoteAddr() string { return l.addr }

// Closed reports whether the link has released its connection.
func (l *Link) Closed() bool { return l.closed.Load() }

// SendLine writes text followed by exactly one "\n".  Text that already
// contains "\r" or "\n" is rejected before anything is written.
func (l *Link) SendLine(text string) error {
	if strings.ContainsAny(text, "\r\n") {
		return fmt.Errorf("send %q: %w", text, ncerr.ErrMalformedLine)
	}
	if l.closed.Load() {
		return &ncerr.NetworkError{Op: ncerr.OpWrite, Addr: l.addr, Err: ncerr.ErrLinkClosed}
	}

	if _, err := io.WriteString(l.conn, text+"\n"); err != nil {
		l.metrics.RecordError(err.Error())
		return ncerr.Wrap(ncerr.OpWrite, l.addr, err)
	}
	l.metrics.LineSent(len(text) + 1)
	l.sink.Emit(trace.Send, text)
	return nil
}

// ReceiveLine blocks until one full line has arrived and returns it
// without its "\n" or "\r\n" terminator.  If the peer closes the stream
// first, the link releases its connection and the error wraps
// ErrEndOfStream.  An expired read deadline also releases the link: the
// rest of a late reply would otherwise be read as the answer to the
// next command.
func (l *Link) ReceiveLine() (string, error) {
	if l.closed.Load() {
		return "", &ncerr.NetworkError{Op: ncerr.OpRead, Addr: l.addr, Err: ncerr.ErrLinkClosed}
	}
	if l.readTimeout > 0 {
		if err := l.conn.SetReadDeadline(time.Now().Add(l.readTimeout)); err != nil {
			return "", ncerr.Wrap(ncerr.OpRead, l.addr, err)
		}
	}

	raw, err := l.reader.ReadString('\n')
	if err != nil {
		l.metrics.RecordError(err.Error())
		return "", l.readError(err)
	}
	l.metrics.LineReceived(len(raw))

	line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
	l.sink.Emit(trace.Recv, line)
	return line, nil
}

func (l *Link) readError(err error) error {
	if errors.Is(err, io.EOF) {
		_ = l.Close()
		return &ncerr.NetworkError{Op: ncerr.OpRead, Addr: l.addr, Err: ncerr.ErrEndOfStream}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		_ = l.Close()
		return &ncerr.NetworkError{
			Op:   ncerr.OpRead,
			Addr: l.addr,
			Err:  fmt.Errorf("%w: no reply within %v", ncerr.ErrTimeout, l.readTimeout),
		}
	}
	return ncerr.Wrap(ncerr.OpRead, l.addr, err)
}

// Close releases the connection.  Only the first call does any work;
// later calls return nil.
func (l *Link) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.closed.Store(true)
		if cerr := l.conn.Close(); cerr != nil {
			err = ncerr.Wrap(ncerr.OpClose, l.addr, cerr)
		}
	})
	return err
}
