package protocol

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode_BareVerbs(t *testing.T) {
	for _, v := range []Verb{VerbPlay, VerbKill, VerbList, VerbQuit} {
		assert.Equal(t, string(v), Encode(v), "bare verb %q must not carry a separator", v)
	}
}

func TestEncode_Move(t *testing.T) {
	tests := []struct{ x, y int }{
		{0, -10}, {-10, 0}, {10, 0}, {0, 10}, {33, -33},
		{math.MaxInt32, math.MinInt32}, {0, 0},
	}
	for _, tt := range tests {
		want := fmt.Sprintf("move%d;%d", tt.x, tt.y)
		assert.Equal(t, want, Move(tt.x, tt.y).Line())
	}
}

func TestEncode_SingleArgument(t *testing.T) {
	assert.Equal(t, "nameHansAI", Name("HansAI").Line())
	assert.Equal(t, "typeorange", Color("orange").Line())
	assert.Equal(t, "name", Name("").Line())
}

func TestEncode_SanitizesArguments(t *testing.T) {
	assert.Equal(t, "nameHansAI", Name("Hans\r\nAI\n").Line())
	assert.Equal(t, "typered", Encode(VerbType, "\rred\n"))
}

func TestEncode_NoEscaping(t *testing.T) {
	// Protocol-significant characters other than terminators pass through.
	assert.Equal(t, "nameA;B", Name("A;B").Line())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{Play(), "play"},
		{Kill(), "kill"},
		{List(), "list"},
		{Quit(), "quit"},
		{Move(-4, 7), "move-4;7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.cmd.Line())
		assert.Equal(t, tt.want, tt.cmd.String())
	}
}

func TestSanitize(t *testing.T) {
	inputs := []string{
		"", "plain", "\n", "\r\n", "a\nb\rc", "\r\r\n\n", "HansAI\n",
		"ünïcødé\r", "tab\tstays",
	}
	for _, s := range inputs {
		once := Sanitize(s)
		assert.False(t, strings.ContainsAny(once, "\r\n"), "Sanitize(%q) = %q still has a terminator", s, once)
		assert.Equal(t, once, Sanitize(once), "Sanitize must be idempotent for %q", s)
	}
	assert.Equal(t, "tab\tstays", Sanitize("tab\tstays"))
	assert.Equal(t, "abc", Sanitize("a\nb\rc"))
}
