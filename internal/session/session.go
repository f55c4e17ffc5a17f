// Package session drives one logical connection to a game server.
//
// A Client owns exactly one transport.Link and walks a small state
// machine: Disconnected → Connected → Closed.  Every command is one
// synchronous exchange: a line goes out and exactly one line comes
// back, returned to the caller untouched.
package session

import (
	"context"
	"sync"
	"time"

	ncerr "cloudpilot/internal/errors"
	"cloudpilot/internal/metrics"
	"cloudpilot/internal/motion"
	"cloudpilot/internal/protocol"
	"cloudpilot/internal/trace"
	"cloudpilot/internal/transport"
	"cloudpilot/util"
)

// State is the lifecycle position of a Client.
type State int

const (
	Disconnected State = iota
	Connected
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Config carries everything a Client needs to reach its server.
type Config struct {
	Address     string           // host:port of the game server
	Dialer      transport.Dialer // nil = plain TCP with DialTimeout
	DialTimeout time.Duration
	ReadTimeout time.Duration // per-response deadline, 0 = wait forever
	Sink        trace.Sink
	Metrics     *metrics.Collector
	Logger      *util.Logger
}

// Client is a session with one game server.  Its methods may be called
// from several goroutines, but exchanges never overlap.
type Client struct {
	cfg Config

	mu    sync.Mutex
	state State
	link  *transport.Link
}

// New returns a Disconnected client.  No I/O happens until Open.
func New(cfg Config) *Client {
	if cfg.Dialer == nil {
		cfg.Dialer = &transport.TCPDialer{Timeout: cfg.DialTimeout}
	}
	return &Client{cfg: cfg}
}

// Dial is New followed by Open.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	c := New(cfg)
	if err := c.Open(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Open establishes the link.  It is valid only from Disconnected; a
// failed dial leaves the client Disconnected so Open may be retried.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Disconnected {
		return &ncerr.StateError{Op: "open", State: c.state.String()}
	}

	c.cfg.Logger.Verbose("connecting to %s", c.cfg.Address)
	link, err := transport.Open(ctx, c.cfg.Dialer, c.cfg.Address, transport.LinkOptions{
		Sink:        c.cfg.Sink,
		Metrics:     c.cfg.Metrics,
		ReadTimeout: c.cfg.ReadTimeout,
	})
	if err != nil {
		return err
	}

	c.link = link
	c.state = Connected
	c.cfg.Logger.Verbose("connected to %s", link.RemoteAddr())
	return nil
}

// ── Commands ─────────────────────────────────────────────────────────

// SetName sends name<name>.
func (c *Client) SetName(name string) (string, error) {
	return c.exchange("set name", protocol.Name(name))
}

// SetColor sends type<color>.  The server decides which colors it
// accepts; the reply says whether it did.
func (c *Client) SetColor(color string) (string, error) {
	return c.exchange("set color", protocol.Color(color))
}

// Play asks the server to spawn the player's cloud.
func (c *Client) Play() (string, error) {
	return c.exchange("play", protocol.Play())
}

// Move sends a raw displacement.  The numbers are not range-checked.
func (c *Client) Move(dx, dy int) (string, error) {
	return c.exchange("move", protocol.Move(dx, dy))
}

// MoveByAngle resolves angle (degrees) and strength into a displacement
// and sends it as a move.  Invalid input is rejected before any I/O.
func (c *Client) MoveByAngle(angle, strength float64) (string, error) {
	if s := c.State(); s != Connected {
		return "", &ncerr.StateError{Op: "move", State: s.String()}
	}
	d, err := motion.Resolve(angle, strength)
	if err != nil {
		return "", err
	}
	return c.Move(d.X, d.Y)
}

// Kill removes the player's cloud from the game.
func (c *Client) Kill() (string, error) {
	return c.exchange("kill", protocol.Kill())
}

// Stat requests the world state.  The reply is a JSON document; see
// package world for decoding it.
func (c *Client) Stat() (string, error) {
	return c.exchange("stat", protocol.List())
}

// Close sends quit, reads the reply and releases the link.  The client
// ends Closed whatever happens on the wire; the reply and any error are
// returned for information.  Closing a client that is not Connected is
// a no-op.
func (c *Client) Close() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Connected {
		c.state = Closed
		return "", nil
	}

	resp, err := c.roundTrip(protocol.Quit())
	if cerr := c.link.Close(); err == nil {
		err = cerr
	}
	c.link = nil
	c.state = Closed
	c.cfg.Logger.Verbose("session closed")
	return resp, err
}

// ── Exchange ─────────────────────────────────────────────────────────

func (c *Client) exchange(op string, cmd protocol.Command) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Connected {
		return "", &ncerr.StateError{Op: op, State: c.state.String()}
	}
	return c.roundTrip(cmd)
}

// roundTrip sends one command and waits for its reply.  Caller holds mu.
func (c *Client) roundTrip(cmd protocol.Command) (string, error) {
	if err := c.link.SendLine(cmd.Line()); err != nil {
		c.cfg.Logger.Debug("send %q failed: %v", cmd.Line(), err)
		return "", err
	}
	resp, err := c.link.ReceiveLine()
	if err != nil {
		c.cfg.Logger.Debug("reply to %q failed: %v", cmd.Line(), err)
		return "", err
	}
	return resp, nil
}
