package capability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	ncerr "cloudpilot/internal/errors"
	"cloudpilot/internal/protocol"
	"cloudpilot/internal/session"
	"cloudpilot/internal/world"
	"cloudpilot/util"
)

const shellPrompt = "cloud> "

const shellHelp = `commands:
  name <name>        set the player name
  color <color>      set the cloud color (blue, gray, orange, purple, red)
  play               spawn your cloud
  move <dx> <dy>     push the cloud by a raw displacement
  angle <deg> [str]  push the cloud toward a heading (0 left, 90 up)
  kill               remove your cloud
  stat [raw]         show the world state
  help               show this text
  quit               leave the game
`

// Shell is an interactive command loop over a session.  Each input line
// becomes at most one protocol command; the server's reply is printed
// verbatim.
type Shell struct {
	In       LineReader
	Out      io.Writer
	Name     string  // player name used to find "me" in stat output
	Strength float64 // default strength for angle
	Logger   *util.Logger
}

// Handle implements Capability.  It returns nil on quit or end of
// input, and an error only when the link to the server breaks.
func (s *Shell) Handle(ctx context.Context, c *session.Client) error {
	defer s.In.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := s.In.ReadLine(shellPrompt)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}

		if err := s.dispatch(c, fields); err != nil {
			if ncerr.IsIOError(err) {
				return err
			}
			fmt.Fprintf(s.Out, "error: %v\n", err)
		}
	}
}

func (s *Shell) dispatch(c *session.Client, f []string) error {
	var (
		resp string
		err  error
	)
	switch f[0] {
	case "help", "?":
		fmt.Fprint(s.Out, shellHelp)
		return nil
	case "name":
		if len(f) < 2 {
			return errUsage("name <name>")
		}
		s.Name = strings.Join(f[1:], " ")
		resp, err = c.SetName(s.Name)
	case "color":
		if len(f) != 2 {
			return errUsage("color <color>")
		}
		if !protocol.IsKnownColor(f[1]) {
			s.Logger.Warn("%q is not a known color; sending anyway", f[1])
		}
		resp, err = c.SetColor(f[1])
	case "play":
		resp, err = c.Play()
	case "kill":
		resp, err = c.Kill()
	case "move":
		if len(f) != 3 {
			return errUsage("move <dx> <dy>")
		}
		dx, e1 := strconv.Atoi(f[1])
		dy, e2 := strconv.Atoi(f[2])
		if e1 != nil || e2 != nil {
			return errUsage("move <dx> <dy> (integers)")
		}
		resp, err = c.Move(dx, dy)
	case "angle":
		if len(f) < 2 || len(f) > 3 {
			return errUsage("angle <deg> [strength]")
		}
		angle, e1 := strconv.ParseFloat(f[1], 64)
		strength := s.Strength
		var e2 error
		if len(f) == 3 {
			strength, e2 = strconv.ParseFloat(f[2], 64)
		}
		if e1 != nil || e2 != nil {
			return errUsage("angle <deg> [strength] (numbers)")
		}
		resp, err = c.MoveByAngle(angle, strength)
	case "stat", "list":
		return s.stat(c, len(f) > 1 && f[1] == "raw")
	default:
		return fmt.Errorf("unknown command %q (try help)", f[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(s.Out, resp)
	return nil
}

func (s *Shell) stat(c *session.Client, raw bool) error {
	resp, err := c.Stat()
	if err != nil {
		return err
	}
	if raw {
		fmt.Fprintln(s.Out, resp)
		return nil
	}
	snap, err := world.Decode(resp)
	if err != nil {
		// Not a world document; show whatever the server said.
		fmt.Fprintln(s.Out, resp)
		return nil
	}

	fmt.Fprintf(s.Out, "iteration %d  board %dx%d  alive %d  leader %q\n",
		snap.Iteration, snap.Width, snap.Height, snap.Alive, snap.Leader)
	if players := snap.Players(); len(players) > 0 {
		fmt.Fprintf(s.Out, "players: %s\n", strings.Join(players, ", "))
	}
	if me := snap.Me(s.Name); me != nil {
		fmt.Fprintf(s.Out, "me: pos (%.1f, %.1f)  vapor %.1f  speed %.2f\n",
			me.Pos.X, me.Pos.Y, me.Vapor, me.Vel.Strength())
	}
	return nil
}

func errUsage(usage string) error {
	return fmt.Errorf("usage: %s", usage)
}
