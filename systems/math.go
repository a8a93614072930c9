package systems

import "gonum.org/v1/gonum/spatial/r3"

// reflect returns d reflected about the unit normal n: d - 2(d.n)n.
func reflect(d, n r3.Vec) r3.Vec {
	return r3.Sub(d, r3.Scale(2*r3.Dot(d, n), n))
}

// normalize returns v scaled to unit length, or the zero vector for a
// zero input.
func normalize(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// Normalize is the exported form of normalize for packages that derive
// directions from displacements.
func Normalize(v r3.Vec) r3.Vec {
	return normalize(v)
}
