package pool

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// RandomInterior returns a point uniformly distributed inside the unit
// ball, by rejection sampling the enclosing cube.
func RandomInterior(rng *rand.Rand) r3.Vec {
	for {
		v := r3.Vec{
			X: rng.Float64()*2 - 1,
			Y: rng.Float64()*2 - 1,
			Z: rng.Float64()*2 - 1,
		}
		if r3.Norm2(v) <= 1 {
			return v
		}
	}
}

// RandomUnit returns a unit vector uniformly distributed on the sphere.
func RandomUnit(rng *rand.Rand) r3.Vec {
	for {
		v := r3.Vec{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		if n := r3.Norm(v); n > 1e-9 {
			return r3.Scale(1/n, v)
		}
	}
}
