package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"cloudpilot/tunnel"
	"cloudpilot/util"
)

// SSHDialer reaches a game server that is only visible from behind an
// SSH gateway.  The gateway session is opened on the first Dial and
// reopened when it has died since the previous one.
type SSHDialer struct {
	tunnel  tunnel.Tunnel
	gateway string // user@host:port, for logs and errors
	logger  *util.Logger

	mu  sync.Mutex
	up  bool
	use int // gateway sessions opened so far
}

// NewSSHDialer creates a dialer that forwards through the gateway in
// cfg.  Nothing is dialed until the first Dial.
func NewSSHDialer(cfg *tunnel.SSHConfig, logger *util.Logger) *SSHDialer {
	gw := fmt.Sprintf("%s@%s", cfg.User, util.FormatAddr(cfg.Host, cfg.Port))
	return newSSHDialer(tunnel.NewSSHTunnel(cfg, logger), gw, logger)
}

func newSSHDialer(t tunnel.Tunnel, gateway string, logger *util.Logger) *SSHDialer {
	return &SSHDialer{tunnel: t, gateway: gateway, logger: logger}
}

// ensure opens the gateway session unless a live one exists.
func (d *SSHDialer) ensure(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.up && d.tunnel.IsAlive() {
		return nil
	}
	if d.up {
		d.logger.Warn("SSH gateway %s dropped, reconnecting", d.gateway)
		d.tunnel.Close() //nolint:errcheck
		d.up = false
	}

	d.logger.Verbose("opening SSH gateway %s", d.gateway)
	if err := d.tunnel.Connect(ctx); err != nil {
		return fmt.Errorf("gateway %s: %w", d.gateway, err)
	}
	d.up = true
	d.use++
	d.logger.Verbose("SSH gateway %s ready", d.gateway)
	return nil
}

// Dial opens a forwarded connection to address on the far side of the
// gateway.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	if network == "" {
		network = "tcp"
	}
	if err := d.ensure(ctx); err != nil {
		return nil, err
	}
	return d.tunnel.Dial(ctx, network, address)
}

// Close shuts the gateway session, if one is open.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.up {
		return nil
	}
	d.up = false
	return d.tunnel.Close()
}
