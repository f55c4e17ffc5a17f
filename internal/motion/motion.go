// Package motion turns a directional intent into the integer
// displacement the move command expects.
//
// Angles are in degrees: 0° moves left, and the angle grows
// counter-clockwise on screen.  The server's Y axis points down, so
// 90° is up and 270° is down.
package motion

import (
	"math"

	ncerr "cloudpilot/internal/errors"
)

// Displacement is the (x, y) argument pair of a move command.
type Displacement struct {
	X int
	Y int
}

// maxComponent is the smallest magnitude that no longer fits an int.
const maxComponent = math.MaxInt + 1

// Resolve converts angle (degrees) and strength into a displacement.
// Components are truncated toward zero, not rounded.  Non-finite input,
// or a component too large for an integer, yields an error wrapping
// ErrInvalidInput.
func Resolve(angle, strength float64) (Displacement, error) {
	if err := finite("angle", angle); err != nil {
		return Displacement{}, err
	}
	if err := finite("strength", strength); err != nil {
		return Displacement{}, err
	}

	rad := angle * math.Pi / 180
	x := math.Cos(rad) * strength * -1
	y := math.Sin(rad) * strength * -1

	if math.Abs(x) >= maxComponent || math.Abs(y) >= maxComponent {
		return Displacement{}, &ncerr.InputError{Field: "strength", Value: strength, Msg: "displacement overflows an integer"}
	}
	return Displacement{X: int(x), Y: int(y)}, nil
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ncerr.InputError{Field: field, Value: v, Msg: "not a finite number"}
	}
	return nil
}
