// Package protocol encodes commands of the CloudWars control protocol.
//
// The protocol is line-delimited text: one command per line, one
// response per line.  A command is a verb immediately followed by its
// arguments, and two arguments are separated by a semicolon:
//
//	nameHansAI
//	typeorange
//	play
//	move0;-10
//	kill
//	list
//	quit
//
// There is no length prefix, checksum or escaping; the line terminator
// is the only framing.
package protocol

import (
	"strconv"
	"strings"
)

// Verb is a protocol command word.
type Verb string

const (
	VerbName Verb = "name" // set player name
	VerbType Verb = "type" // set player color
	VerbPlay Verb = "play" // spawn the controlled cloud
	VerbMove Verb = "move" // apply a displacement
	VerbKill Verb = "kill" // remove the controlled cloud
	VerbList Verb = "list" // query the world snapshot
	VerbQuit Verb = "quit" // disconnect
)

// ArgSeparator joins positional arguments.
const ArgSeparator = ";"

// Command is one protocol verb with its positional arguments.  Build
// one with the constructors below; treat it as immutable.
type Command struct {
	Verb Verb
	Args []string
}

// Line returns the wire form of the command without a terminator.
func (c Command) Line() string {
	return Encode(c.Verb, c.Args...)
}

// String implements fmt.Stringer.
func (c Command) String() string { return c.Line() }

// Encode concatenates verb and args.  Args are sanitized and joined
// with ArgSeparator; no args yields the bare verb.
func Encode(verb Verb, args ...string) string {
	var b strings.Builder
	b.WriteString(string(verb))
	for i, a := range args {
		if i > 0 {
			b.WriteString(ArgSeparator)
		}
		b.WriteString(Sanitize(a))
	}
	return b.String()
}

var terminators = strings.NewReplacer("\n", "", "\r", "")

// Sanitize removes every line terminator from s.  Nothing else is
// escaped: a payload containing ';' still reaches the server as-is.
func Sanitize(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return terminators.Replace(s)
}

// ── Constructors ─────────────────────────────────────────────────────

// Name sets the player name.  Send it before Play.
func Name(name string) Command { return Command{Verb: VerbName, Args: []string{name}} }

// Color sets the player color.  Send it before Play.
func Color(color string) Command { return Command{Verb: VerbType, Args: []string{color}} }

// Play asks the server to spawn the controlled cloud.
func Play() Command { return Command{Verb: VerbPlay} }

// Move applies the displacement (dx, dy) to the controlled cloud.
func Move(dx, dy int) Command {
	return Command{Verb: VerbMove, Args: []string{strconv.Itoa(dx), strconv.Itoa(dy)}}
}

// Kill removes the controlled cloud from the game.
func Kill() Command { return Command{Verb: VerbKill} }

// List requests the world snapshot.
func List() Command { return Command{Verb: VerbList} }

// Quit ends the connection.
func Quit() Command { return Command{Verb: VerbQuit} }
