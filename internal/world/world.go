// Package world decodes the JSON document the server returns for the
// list command.  The client treats the reply as opaque; this package
// exists for capabilities that want to look at the board.
package world

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/invopop/jsonschema"
)

// Position is a point on the board.  Y grows downward.
type Position struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

// Velocity is a cloud's per-tick displacement.
type Velocity struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

// Strength is the magnitude of v.
func (v Velocity) Strength() float64 {
	return math.Hypot(v.X, v.Y)
}

// Cloud is either a neutral cloud or one steered by a player.
type Cloud struct {
	Player string   `json:"Player" jsonschema:"description=owning player; empty for neutral clouds"`
	Color  string   `json:"Color"`
	Vapor  float64  `json:"Vapor" jsonschema:"description=mass of the cloud"`
	Pos    Position `json:"Pos"`
	Vel    Velocity `json:"Vel"`
}

// Radius is the square root of the cloud's vapor.
func (c Cloud) Radius() float64 {
	if c.Vapor <= 0 {
		return 0
	}
	return math.Sqrt(c.Vapor)
}

// IsDead reports whether the cloud has evaporated (vapor below 1).
func (c Cloud) IsDead() bool { return c.Vapor < 1 }

// Intersects reports whether two clouds overlap.
func (c Cloud) Intersects(o Cloud) bool {
	d := math.Hypot(o.Pos.X-c.Pos.X, o.Pos.Y-c.Pos.Y)
	return d < c.Radius()+o.Radius()
}

// Snapshot is one world state as reported by the server.
type Snapshot struct {
	Width        int     `json:"Width"`
	Height       int     `json:"Height"`
	GameSpeed    int     `json:"GameSpeed" jsonschema:"description=ticks per second"`
	Iteration    uint64  `json:"Iteration"`
	WorldVapor   float64 `json:"WorldVapor"`
	Alive        int     `json:"Alive"`
	WinCondition bool    `json:"WinCondition"`
	Leader       string  `json:"Leader"`
	Clouds       []Cloud `json:"Clouds"`
	SimSpeedUp   int     `json:"SimSpeedUp,omitempty"`
}

// Decode parses a list reply.
func Decode(raw string) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode world: %w", err)
	}
	return &s, nil
}

// Me returns the cloud owned by player, or nil if it is not on the board.
func (s *Snapshot) Me(player string) *Cloud {
	for i := range s.Clouds {
		if s.Clouds[i].Player == player {
			return &s.Clouds[i]
		}
	}
	return nil
}

// Players returns the sorted names of every player with a cloud.
func (s *Snapshot) Players() []string {
	seen := make(map[string]struct{})
	for _, c := range s.Clouds {
		if c.Player != "" {
			seen[c.Player] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Centre returns the middle of the board.
func (s *Snapshot) Centre() Position {
	return Position{X: float64(s.Width) / 2, Y: float64(s.Height) / 2}
}

// Schema returns the JSON Schema of a Snapshot, indented.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{DoNotReference: true}
	return json.MarshalIndent(r.Reflect(&Snapshot{}), "", "  ")
}
