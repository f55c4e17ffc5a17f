package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloudpilot/internal/capability"
	ncerr "cloudpilot/internal/errors"
	"cloudpilot/internal/metrics"
	"cloudpilot/internal/retry"
	"cloudpilot/internal/session"
	"cloudpilot/util"
)

// ConnectMode opens a session to the game server, hands it to a
// capability and always closes it afterwards.
type ConnectMode struct {
	Session    session.Config
	Capability capability.Capability
	Logger     *util.Logger
	Metrics    *metrics.Collector

	// Retries is the number of extra connect attempts made when the
	// dial fails with a retryable connection error.  0 disables retry.
	Retries int
	// Backoff overrides the retry policy (nil = retry.DefaultBackoff).
	Backoff *retry.Backoff

	// Closers are flushed and closed when Run returns (trace files).
	Closers []io.Closer
}

// Run dials the server, runs the capability and closes the session.
// The capability's error wins over a failure to close cleanly.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.teardown()

	client, err := m.open(ctx)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", m.Session.Address, err)
	}

	start := time.Now()
	runErr := m.Capability.Handle(ctx, client)

	resp, closeErr := client.Close()
	switch {
	case closeErr != nil && runErr != nil:
		m.Logger.Debug("close after failure: %v", closeErr)
	case closeErr != nil:
		m.Logger.Warn("quit: %v", closeErr)
	default:
		m.Logger.Verbose("quit: %s", resp)
	}
	m.Logger.Verbose("session lasted %v", time.Since(start).Round(time.Millisecond))

	if m.Logger.Enabled(util.LogDebug) {
		m.Logger.Debug("metrics: %s", m.Metrics.JSON())
	}

	if runErr != nil {
		return runErr
	}
	return closeErr
}

// open creates the client and connects it, retrying refused dials when
// asked to.  Other failures are returned at once.
func (m *ConnectMode) open(ctx context.Context) (*session.Client, error) {
	cfg := m.Session
	if cfg.Logger == nil {
		cfg.Logger = m.Logger
	}
	if cfg.Metrics == nil {
		cfg.Metrics = m.Metrics
	}
	client := session.New(cfg)

	if m.Retries <= 0 {
		return client, client.Open(ctx)
	}

	b := retry.DefaultBackoff(m.Retries + 1)
	if m.Backoff != nil {
		bb := *m.Backoff
		b = &bb
	}
	b.Retryable = func(err error) bool {
		return ncerr.IsConnectionError(err) && ncerr.IsRetryable(err)
	}
	b.OnRetry = func(attempt int, err error, wait time.Duration) {
		m.Logger.Warn("connect attempt %d failed: %v (retrying in %v)",
			attempt, err, wait.Round(time.Millisecond))
	}

	err := b.Do(ctx, func(int) error { return client.Open(ctx) })
	return client, err
}

func (m *ConnectMode) teardown() {
	if m.Session.Dialer != nil {
		if err := m.Session.Dialer.Close(); err != nil {
			m.Logger.Debug("dialer close: %v", err)
		}
	}
	for _, c := range m.Closers {
		if err := c.Close(); err != nil {
			m.Logger.Debug("close: %v", err)
		}
	}
}
