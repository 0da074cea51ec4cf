package game

import "github.com/go-gl/mathgl/mgl32"

// ApplyMovement moves pos by MoveSpeed along every active axis of in.
// Server and client prediction both call this, so it must stay deterministic.
// Diagonals are not normalised.
func ApplyMovement(pos *mgl32.Vec3, in Input) {
	if in.Kind != InputDirection {
		return
	}
	d := in.Direction
	if d.Up {
		pos[1] += MoveSpeed
	}
	if d.Down {
		pos[1] -= MoveSpeed
	}
	if d.Left {
		pos[0] -= MoveSpeed
	}
	if d.Right {
		pos[0] += MoveSpeed
	}
}
