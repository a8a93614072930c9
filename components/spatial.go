package components

import "gonum.org/v1/gonum/spatial/r3"

// Position is a sphere centre in unit-ball space.
type Position r3.Vec

// Direction is a sphere's unit travel direction.
type Direction r3.Vec

// Vec returns the position as a gonum vector.
func (p Position) Vec() r3.Vec { return r3.Vec(p) }

// Vec returns the direction as a gonum vector.
func (d Direction) Vec() r3.Vec { return r3.Vec(d) }
