// Package cmd wires up the CLI flags and dispatches to the cloudpilot core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"cloudpilot/config"
	"cloudpilot/internal/core"
	"cloudpilot/internal/protocol"
	"cloudpilot/internal/world"
	"cloudpilot/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X cloudpilot/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Output streams, replaceable in tests.
var (
	stdout io.Writer = os.Stdout //nolint:gochecknoglobals
	stderr io.Writer = os.Stderr //nolint:gochecknoglobals
)

// Execute parses args and runs cloudpilot.  Settings are resolved from
// defaults, then the config file, then CLOUDPILOT_* variables, then
// flags, each layer overriding the one before.
func Execute(ctx context.Context, args []string) error {
	cfg := config.Default()
	if path := configFileArg(args); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return err
		}
	}
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("cloudpilot", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── player ───────────────────────────────────────────────────
	fs.StringVarP(&cfg.Name, "name", "n", cfg.Name, "Player name")
	fs.StringVarP(&cfg.Color, "color", "c", cfg.Color, "Cloud color")
	fs.BoolVarP(&cfg.Interactive, "interactive", "i", cfg.Interactive, "Interactive command shell instead of the pilot")
	fs.DurationVar(&cfg.Pause, "pause", cfg.Pause, "Wait between scripted moves")
	fs.Float64VarP(&cfg.Strength, "strength", "s", cfg.Strength, "Strength of each tour move")

	// ── connection ───────────────────────────────────────────────
	fs.DurationVarP(&cfg.Timeout, "timeout", "w", cfg.Timeout, "Connect timeout")
	fs.DurationVarP(&cfg.ReadTimeout, "read-timeout", "r", cfg.ReadTimeout, "Wait for each server reply (0 = forever)")
	fs.IntVar(&cfg.ConnectRetries, "retries", cfg.ConnectRetries, "Extra connect attempts when the server refuses")
	fs.BoolVarP(&cfg.NoDNS, "no-dns", "N", cfg.NoDNS, "Numeric-only, no DNS resolution")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "SSH tunnel via [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	fs.StringVar(&cfg.TraceFile, "trace-file", cfg.TraceFile, "Append the exchange trace to a rotating file")
	fs.StringVar(&cfg.HistoryFile, "history-file", cfg.HistoryFile, "Shell history file (relative to $HOME, empty disables)")
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Config file (TOML, YAML or JSON)")
	envVerbose := cfg.Verbose // CountVarP resets its target
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (-v exchange trace, -vv debug)")
	var quiet bool
	fs.BoolVarP(&quiet, "quiet", "q", false, "Errors only")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Validate the configuration and print it")
	fs.BoolVar(&cfg.PrintSchema, "print-schema", false, "Print the JSON schema of the list reply")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Verbose += envVerbose

	if showHelp {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "cloudpilot %s\n", version)
		return nil
	}
	if cfg.PrintSchema {
		schema, err := world.Schema()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\n", schema)
		return nil
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── tunnel spec ──────────────────────────────────────────────
	if err := cfg.ApplyTunnelSpec(); err != nil {
		return fmt.Errorf("tunnel: %w", err)
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := int(util.LogNormal) + cfg.Verbose
	if quiet {
		level = int(util.LogQuiet)
	}
	logger := util.NewLogger(level)
	logger.SetOutput(stderr)
	if !cfg.Interactive && !protocol.IsKnownColor(cfg.Color) {
		logger.Warn("color %q is not one the server knows (%s)",
			cfg.Color, strings.Join(protocol.Colors, ", "))
	}
	if cfg.ConfigFile != "" {
		logger.Verbose("config file: %s", cfg.ConfigFile)
	}

	if cfg.DryRun {
		printConfig(cfg)
		return nil
	}

	// ── build and run ────────────────────────────────────────────
	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// configFileArg finds --config before the full parse so the file can
// supply the flag defaults.  CLOUDPILOT_CONFIG is the fallback.
func configFileArg(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, "--config="); ok {
			return v
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return config.ConfigFileFromEnv()
}

// parsePositional accepts [host [port]].  Missing values keep what the
// defaults, file or environment supplied.
func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0:
	case 1:
		cfg.Host = remaining[0]
	case 2:
		cfg.Host = remaining[0]
		port, err := config.ParsePort(remaining[1])
		if err != nil {
			return fmt.Errorf("port %q: %w", remaining[1], err)
		}
		cfg.Port = port
	default:
		return fmt.Errorf("too many arguments: %s (want [host [port]])",
			strings.Join(remaining, " "))
	}
	return nil
}

func printConfig(cfg *config.Config) {
	mode := "pilot"
	if cfg.Interactive {
		mode = "shell"
	}
	fmt.Fprintf(stdout, "server:   %s\n", cfg.Address())
	fmt.Fprintf(stdout, "mode:     %s\n", mode)
	fmt.Fprintf(stdout, "player:   %s (%s)\n", cfg.Name, cfg.Color)
	fmt.Fprintf(stdout, "strength: %g\n", cfg.Strength)
	fmt.Fprintf(stdout, "pause:    %v\n", cfg.Pause)
	fmt.Fprintf(stdout, "timeouts: connect %v, read %v\n", cfg.Timeout, cfg.ReadTimeout)
	fmt.Fprintf(stdout, "retries:  %d\n", cfg.ConnectRetries)
	if cfg.TunnelEnabled {
		fmt.Fprintf(stdout, "tunnel:   %s@%s:%d\n", cfg.TunnelUser, cfg.TunnelHost, cfg.TunnelPort)
	}
	if cfg.TraceFile != "" {
		fmt.Fprintf(stdout, "trace:    %s\n", cfg.TraceFile)
	}
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(stderr, `CloudPilot - CloudWars line-protocol client v%s

Usage:
  cloudpilot [options] [host [port]]          Run the scripted pilot
  cloudpilot -i [options] [host [port]]       Interactive command shell
  cloudpilot -T user@gateway host port        Through an SSH tunnel

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(stderr, `
Environment:
  CLOUDPILOT_HOST, CLOUDPILOT_PORT, CLOUDPILOT_NAME, ... mirror the flags.
  CLOUDPILOT_CONFIG names a config file.

Examples:
  cloudpilot -n HansAI -c orange              Pilot against 127.0.0.1:3333
  cloudpilot -i game.example.com 3333         Shell with history
  cloudpilot -vv --trace-file trace.log       Log every exchange
  cloudpilot --print-schema                   Schema of the list reply
`)
}
