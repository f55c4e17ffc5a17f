package core

import (
	"io"
	"os"
	"path/filepath"

	"cloudpilot/config"
	"cloudpilot/internal/capability"
	"cloudpilot/internal/metrics"
	"cloudpilot/internal/session"
	"cloudpilot/internal/trace"
	"cloudpilot/internal/transport"
	"cloudpilot/tunnel"
	"cloudpilot/util"
)

// Build constructs the Mode for the given configuration: a scripted
// pilot by default, an interactive shell with -i.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sink, closers := buildSink(cfg, logger)
	return &ConnectMode{
		Session: session.Config{
			Address:     cfg.Address(),
			Dialer:      buildDialer(cfg, logger),
			DialTimeout: cfg.Timeout,
			ReadTimeout: cfg.ReadTimeout,
			Sink:        sink,
		},
		Capability: buildCapability(cfg, logger),
		Retries:    cfg.ConnectRetries,
		Logger:     logger,
		Metrics:    metrics.New(),
		Closers:    closers,
	}, nil
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   cfg.Timeout,
			KeepAlive:     config.DefaultSSHKeepAlive,
		}, logger)
	}
	return &transport.TCPDialer{Timeout: cfg.Timeout}
}

// buildSink routes the exchange trace to the logger at verbose level (-v) and,
// with --trace-file, to a rotating file as well.
func buildSink(cfg *config.Config, logger *util.Logger) (trace.Sink, []io.Closer) {
	sinks := []trace.Sink{trace.LoggerSink{Logger: logger}}
	var closers []io.Closer
	if cfg.TraceFile != "" {
		fs := trace.NewFileSink(cfg.TraceFile, trace.FileOptions{})
		sinks = append(sinks, fs)
		closers = append(closers, fs)
	}
	return trace.Multi(sinks...), closers
}

// buildCapability selects what happens once the session is open.
func buildCapability(cfg *config.Config, logger *util.Logger) capability.Capability {
	if cfg.Interactive {
		return &capability.Shell{
			In:       capability.NewLineReader(historyPath(cfg.HistoryFile), os.Stdout),
			Out:      os.Stdout,
			Name:     cfg.Name,
			Strength: cfg.Strength,
			Logger:   logger,
		}
	}
	return &capability.Pilot{
		Name:     cfg.Name,
		Color:    cfg.Color,
		Strength: cfg.Strength,
		Pause:    cfg.Pause,
		Logger:   logger,
	}
}

// historyPath resolves a relative history file against $HOME.  An empty
// name disables history.
func historyPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, name)
}
