// Package config defines the runtime configuration for cloudpilot and
// provides helpers for parsing tunnel specifications and ports.
package config

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	ncerr "cloudpilot/internal/errors"
	"cloudpilot/util"
)

// Config holds every tuneable for a single cloudpilot run.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Host           string
	Port           int
	NoDNS          bool
	Timeout        time.Duration // connect timeout
	ReadTimeout    time.Duration // per-reply deadline, 0 = none
	ConnectRetries int           // extra dial attempts on a refused connect

	// ── Player ───────────────────────────────────────────────────────
	Name        string
	Color       string
	Interactive bool          // run the shell instead of the pilot
	Pause       time.Duration // pilot: wait between moves
	Strength    float64
	HistoryFile string

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	Verbose     int
	TraceFile   string
	ConfigFile  string
	DryRun      bool
	PrintSchema bool
}

// Address returns host:port of the game server.
func (c *Config) Address() string {
	return util.FormatAddr(c.Host, c.Port)
}

// ApplyTunnelSpec parses TunnelSpec, if set, into the tunnel fields.
func (c *Config) ApplyTunnelSpec() error {
	if c.TunnelSpec == "" {
		return nil
	}
	user, host, port, err := ParseTunnelSpec(c.TunnelSpec)
	if err != nil {
		return fmt.Errorf("tunnel: %w", err)
	}
	c.TunnelEnabled = true
	c.TunnelUser = user
	c.TunnelHost = host
	c.TunnelPort = port
	return nil
}

// ── Port helper ──────────────────────────────────────────────────────

// ParsePort accepts a decimal port number in 1–65535.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("tunnel host is required")
	}
	return user, host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Host == "" {
		return &ncerr.ConfigError{
			Field:   "host",
			Message: "game server host is required",
			Hint:    "pass it as the first argument or set " + EnvPrefix + "HOST",
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &ncerr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "port out of range 1-65535",
		}
	}
	if _, err := util.ResolveAddr(c.Host, c.Port, c.NoDNS); err != nil {
		return &ncerr.ConfigError{
			Field:   "host",
			Value:   c.Host,
			Message: "not an IP address and DNS is disabled",
			Hint:    "drop -N or pass a numeric address",
		}
	}
	if !c.Interactive && c.Name == "" {
		return &ncerr.ConfigError{
			Field:   "name",
			Message: "the pilot needs a player name",
			Hint:    "use --name or run the shell with -i",
		}
	}
	if math.IsNaN(c.Strength) || math.IsInf(c.Strength, 0) {
		return &ncerr.ConfigError{Field: "strength", Value: c.Strength, Message: "must be a finite number"}
	}
	if c.Pause < 0 {
		return &ncerr.ConfigError{Field: "pause", Value: c.Pause, Message: "must not be negative"}
	}
	if c.Timeout < 0 || c.ReadTimeout < 0 {
		return &ncerr.ConfigError{Field: "timeout", Message: "timeouts must not be negative"}
	}
	if c.ConnectRetries < 0 {
		return &ncerr.ConfigError{Field: "retries", Value: c.ConnectRetries, Message: "must not be negative"}
	}
	if c.TunnelEnabled && c.TunnelHost == "" {
		return &ncerr.ConfigError{
			Field:   "tunnel",
			Value:   c.TunnelSpec,
			Message: "tunnel host is required",
			Hint:    "use -T user@gateway[:port]",
		}
	}
	if c.SSHPassword && !c.TunnelEnabled {
		return &ncerr.ConfigError{
			Field:   "ssh-password",
			Message: "only meaningful with an SSH tunnel",
			Hint:    "add -T user@gateway",
		}
	}
	return nil
}
