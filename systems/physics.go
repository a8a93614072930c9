// Package systems contains the per-tick physics for the sphere pool.
package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/collider/components"
	"github.com/pthm-cable/collider/config"
)

// Params holds the physics constants applied every tick.
type Params struct {
	Scale     float64 // sphere radius
	Speed     float64 // distance per tick
	Threshold float64 // centre distance below which two spheres collide
}

// ParamsFromConfig builds Params from the loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Scale:     cfg.Sim.Scale,
		Speed:     cfg.Sim.Speed,
		Threshold: cfg.Derived.CollisionThreshold,
	}
}

// Advance moves pos one step of length speed along dir.
func Advance(pos *components.Position, dir components.Direction, speed float64) {
	*pos = components.Position(r3.Add(pos.Vec(), r3.Scale(speed, dir.Vec())))
}

// Contain corrects a sphere that has left the unit ball. The direction is
// reflected about the surface normal and renormalized; the position is
// pushed back along the inward normal by the penetration depth plus one
// step. A sphere exactly on the surface counts as inside. Reports whether
// a correction was applied.
func Contain(pos *components.Position, dir *components.Direction, speed float64) bool {
	mod := r3.Norm(pos.Vec())
	if mod <= 1 {
		return false
	}

	normal := r3.Scale(1/mod, pos.Vec())
	*dir = components.Direction(normalize(reflect(dir.Vec(), normal)))

	// Push along -normal, not along the new direction.
	inward := r3.Scale(-((mod - 1) + speed), normal)
	*pos = components.Position(r3.Add(pos.Vec(), inward))
	return true
}
