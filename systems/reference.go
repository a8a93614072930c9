package systems

import (
	"github.com/pthm-cable/collider/components"
	"github.com/pthm-cable/collider/pool"
)

// SampleFunc receives one sphere's state before and its position after a
// reference step. The batch driver uses it to record training samples.
type SampleFunc func(i int, pre components.Sphere, post components.Position)

// StepStats counts the corrections applied during one reference step.
type StepStats struct {
	BoundaryCorrections int
	CollisionResponses  int
}

// ReferenceSystem advances the pool with local physics.
type ReferenceSystem struct {
	params Params
}

// NewReferenceSystem creates a reference physics system.
func NewReferenceSystem(params Params) *ReferenceSystem {
	return &ReferenceSystem{params: params}
}

// Params returns the physics constants in use.
func (s *ReferenceSystem) Params() Params {
	return s.params
}

// Step runs one tick. Each sphere in ascending index order is advanced,
// contained, then resolved against every other sphere before the next
// sphere moves. observe may be nil.
func (s *ReferenceSystem) Step(p *pool.Pool, observe SampleFunc) StepStats {
	var stats StepStats

	for i := 0; i < p.Len(); i++ {
		var pre components.Sphere
		if observe != nil {
			pre = p.Sphere(i)
		}

		pos, dir, _ := p.Get(i)
		Advance(pos, *dir, s.params.Speed)
		if Contain(pos, dir, s.params.Speed) {
			stats.BoundaryCorrections++
		}
		stats.CollisionResponses += ResolveFor(p, i, s.params)

		if observe != nil {
			post, _, _ := p.Get(i)
			observe(i, pre, *post)
		}
	}

	return stats
}
