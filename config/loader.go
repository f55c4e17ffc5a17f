package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Config file  (file.go)
//   4. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the CLOUDPILOT_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).  Durations accept Go
// syntax ("1500ms", "2s") or a bare number of seconds.

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	// Connection
	if v := env("HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("PORT"); v > 0 {
		cfg.Port = v
	}
	if envBool("NO_DNS") {
		cfg.NoDNS = true
	}
	if d, ok := envDuration("TIMEOUT"); ok {
		cfg.Timeout = d
	}
	if d, ok := envDuration("READ_TIMEOUT"); ok {
		cfg.ReadTimeout = d
	}
	if v := envInt("RETRIES"); v > 0 {
		cfg.ConnectRetries = v
	}

	// Player
	if v := env("NAME"); v != "" {
		cfg.Name = v
	}
	if v := env("COLOR"); v != "" {
		cfg.Color = v
	}
	if envBool("INTERACTIVE") {
		cfg.Interactive = true
	}
	if d, ok := envDuration("PAUSE"); ok {
		cfg.Pause = d
	}
	if v := env("STRENGTH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Strength = f
		}
	}
	if v := env("HISTORY_FILE"); v != "" {
		cfg.HistoryFile = v
	}

	// SSH tunnel
	if v := env("TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := env("SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := env("KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := env("TRACE_FILE"); v != "" {
		cfg.TraceFile = v
	}
	if v := envInt("VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ConfigFileFromEnv returns CLOUDPILOT_CONFIG, if set.
func ConfigFileFromEnv() string { return env("CONFIG") }

// ── helpers ──────────────────────────────────────────────────────────

func env(key string) string {
	return os.Getenv(EnvPrefix + key)
}

func envInt(key string) int {
	v := env(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(env(key))
	return v == "1" || v == "true" || v == "yes"
}

func envDuration(key string) (time.Duration, bool) {
	v := env(key)
	if v == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if sec, err := strconv.Atoi(v); err == nil && sec >= 0 {
		return secondsDuration(sec), true
	}
	return 0, false
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
