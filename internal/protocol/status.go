package protocol

import "strings"

// Status prefixes the server puts in front of free-form replies,
// e.g. "ok: the game begins when all players are ready".
const (
	StatusOK  = "ok"
	StatusErr = "err"
)

// IsOK reports whether a status line signals success.
func IsOK(resp string) bool {
	return hasFold(resp, StatusOK)
}

// IsErr reports whether a status line signals a rejected command.
func IsErr(resp string) bool {
	return hasFold(resp, StatusErr)
}

// Detail returns the text after a status prefix ("ok: x" → "x").
func Detail(resp string) string {
	for _, p := range []string{StatusOK, StatusErr} {
		if hasFold(resp, p) {
			return strings.TrimSpace(strings.TrimPrefix(resp[len(p):], ":"))
		}
	}
	return resp
}

func hasFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// Colors lists the cloud colors the server accepts.
var Colors = []string{"blue", "gray", "orange", "purple", "red"}

// IsKnownColor reports whether c is one of Colors.  The session never
// checks this; the server has the final word.
func IsKnownColor(c string) bool {
	for _, k := range Colors {
		if c == k {
			return true
		}
	}
	return false
}
