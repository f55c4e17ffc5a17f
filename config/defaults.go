package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultHost is the game server address when none is given.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the game server's TCP port.
	DefaultPort = 3333

	// DefaultName is the player name used by the pilot.
	DefaultName = "CloudPilot"

	// DefaultColor is the requested cloud color.
	DefaultColor = "blue"

	// DefaultPause is the wait between scripted moves.
	DefaultPause = 2 * time.Second

	// DefaultStrength is the strength of each scripted tour move and
	// of the shell's angle command.
	DefaultStrength = 10.0

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultSSHKeepAlive is the SSH keepalive interval for tunnels.
	DefaultSSHKeepAlive = 30 * time.Second

	// DefaultConnTimeout is the TCP/SSH connection timeout.
	DefaultConnTimeout = 30 * time.Second

	// DefaultReadTimeout bounds the wait for one server reply.
	DefaultReadTimeout = 10 * time.Second

	// DefaultHistoryFile is the shell history file, relative to $HOME.
	DefaultHistoryFile = ".cloudpilot_history"

	// EnvPrefix prefixes every supported environment variable.
	EnvPrefix = "CLOUDPILOT_"
)

// Default returns a Config populated with the defaults above.
func Default() *Config {
	return &Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		Name:        DefaultName,
		Color:       DefaultColor,
		Pause:       DefaultPause,
		Strength:    DefaultStrength,
		Timeout:     DefaultConnTimeout,
		ReadTimeout: DefaultReadTimeout,
		HistoryFile: DefaultHistoryFile,
	}
}
