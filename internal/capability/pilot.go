package capability

import (
	"context"
	"fmt"
	"time"

	"cloudpilot/internal/protocol"
	"cloudpilot/internal/session"
	"cloudpilot/internal/world"
	"cloudpilot/util"
)

// centreStrength is the push used to head for the middle of the board.
const centreStrength = 33

// tour is the sequence of headings flown after the centre push:
// left, up, right, down.
var tour = []float64{0, 90, 180, 270}

// Pilot is the scripted example player.  It joins the game, pushes its
// cloud toward the centre of the board, flies a short tour and leaves.
type Pilot struct {
	Name     string
	Color    string
	Strength float64       // strength of each tour move
	Pause    time.Duration // wait between moves
	Logger   *util.Logger
}

// Handle implements Capability.
func (p *Pilot) Handle(ctx context.Context, c *session.Client) error {
	if err := p.join(c); err != nil {
		return err
	}

	heading, ok, err := p.centreHeading(c)
	if err != nil {
		return err
	}
	if ok {
		if err := p.move(ctx, c, heading, centreStrength); err != nil {
			return err
		}
	}

	for _, angle := range tour {
		if err := p.move(ctx, c, angle, p.Strength); err != nil {
			return err
		}
	}
	if err := sleep(ctx, p.Pause); err != nil {
		return err
	}

	resp, err := c.Kill()
	if err != nil {
		return fmt.Errorf("kill: %w", err)
	}
	p.Logger.Verbose("kill: %s", resp)
	return nil
}

func (p *Pilot) join(c *session.Client) error {
	resp, err := c.SetName(p.Name)
	if err != nil {
		return fmt.Errorf("set name: %w", err)
	}
	p.report("name", resp)

	resp, err = c.SetColor(p.Color)
	if err != nil {
		return fmt.Errorf("set color: %w", err)
	}
	p.report("color", resp)

	resp, err = c.Play()
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}
	if !protocol.IsOK(resp) {
		return fmt.Errorf("play rejected: %s", resp)
	}
	p.Logger.Info("%s joined the game as %s", p.Name, p.Color)
	return nil
}

// centreHeading looks the player's cloud up in the world state and
// returns the heading that points it at the centre column.  ok is false
// when the state cannot be read or the cloud is not on the board.
func (p *Pilot) centreHeading(c *session.Client) (angle float64, ok bool, err error) {
	raw, err := c.Stat()
	if err != nil {
		return 0, false, fmt.Errorf("stat: %w", err)
	}
	snap, err := world.Decode(raw)
	if err != nil {
		p.Logger.Warn("world state unreadable, skipping centre push: %v", err)
		return 0, false, nil
	}
	me := snap.Me(p.Name)
	if me == nil {
		p.Logger.Warn("%s not found on the board, skipping centre push", p.Name)
		return 0, false, nil
	}

	p.Logger.Verbose("board %dx%d, %d alive, at (%.0f, %.0f)",
		snap.Width, snap.Height, snap.Alive, me.Pos.X, me.Pos.Y)
	if me.Pos.X < snap.Centre().X {
		return 180, true, nil // right
	}
	return 0, true, nil // left
}

func (p *Pilot) move(ctx context.Context, c *session.Client, angle, strength float64) error {
	if err := sleep(ctx, p.Pause); err != nil {
		return err
	}
	resp, err := c.MoveByAngle(angle, strength)
	if err != nil {
		return fmt.Errorf("move %v°: %w", angle, err)
	}
	p.report("move", resp)
	return nil
}

func (p *Pilot) report(cmd, resp string) {
	if protocol.IsErr(resp) {
		p.Logger.Warn("%s: server replied %q", cmd, resp)
		return
	}
	p.Logger.Verbose("%s: %s", cmd, resp)
}
