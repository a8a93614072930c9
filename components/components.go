// Package components defines ECS components for the sphere pool.
package components

// Sphere is a value copy of one entity's components, used when the pool is
// serialized or compared.
type Sphere struct {
	Pos Position
	Dir Direction
	Hit bool
}
