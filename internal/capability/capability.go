// Package capability defines what happens over an open session.  Each
// Capability drives a session.Client according to one behaviour: the
// scripted Pilot or the interactive Shell.  Capabilities never open or
// close the session themselves; the mode that runs them does.
package capability

import (
	"context"
	"time"

	"cloudpilot/internal/session"
)

// Capability runs one behaviour against a Connected client.  It blocks
// until the behaviour is done or the context is cancelled.
type Capability interface {
	Handle(ctx context.Context, c *session.Client) error
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
