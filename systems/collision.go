package systems

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/collider/components"
	"github.com/pthm-cable/collider/pool"
)

// ResolveFor applies collision response for sphere i against every other
// sphere j in ascending index order. Only sphere i is changed: its
// direction becomes j's direction reflected about i's current direction,
// then it is pushed along that new direction by the overlap plus one step.
// Because i moves as it goes, later pairs see the corrected position.
// Returns the number of responses applied.
func ResolveFor(p *pool.Pool, i int, params Params) int {
	pos, dir, _ := p.Get(i)
	responses := 0

	for j := 0; j < p.Len(); j++ {
		if j == i {
			continue
		}
		other, otherDir, _ := p.Get(j)

		d := r3.Norm(r3.Sub(pos.Vec(), other.Vec()))
		if d >= params.Threshold {
			continue
		}

		newDir := normalize(reflect(otherDir.Vec(), dir.Vec()))
		*dir = components.Direction(newDir)

		push := r3.Scale((params.Threshold-d)+params.Speed, newDir)
		*pos = components.Position(r3.Add(pos.Vec(), push))
		responses++
	}

	return responses
}

// ResolveAll runs ResolveFor over every sphere in ascending index order.
// Pair (i, j) and pair (j, i) are both visited, but not simultaneously:
// j sees whatever direction i was left with, so the result depends on
// iteration order.
func ResolveAll(p *pool.Pool, params Params) int {
	responses := 0
	for i := 0; i < p.Len(); i++ {
		responses += ResolveFor(p, i, params)
	}
	return responses
}
