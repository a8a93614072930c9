// Package pool holds the fixed-capacity sphere population.
//
// Spheres live as entities in an ark ECS world. The pool keeps its own
// index-ordered entity list because collision response depends on the
// order in which spheres are visited, and ECS query order is not part of
// that contract.
package pool

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/collider/components"
)

// Pool is the whole sphere population. It is reset atomically; spheres
// are never added or removed individually.
type Pool struct {
	world    *ecs.World
	mapper   *ecs.Map3[components.Position, components.Direction, components.Collision]
	hitMap   *ecs.Map1[components.Collision]
	filter   *ecs.Filter3[components.Position, components.Direction, components.Collision]
	entities []ecs.Entity
}

// New creates a pool of the given capacity. Every sphere starts at the
// origin heading along +X until Reset is called.
func New(capacity int) *Pool {
	if capacity < 1 {
		panic(fmt.Sprintf("pool: capacity must be positive, got %d", capacity))
	}

	world := ecs.NewWorld()
	p := &Pool{
		world:    world,
		mapper:   ecs.NewMap3[components.Position, components.Direction, components.Collision](world),
		hitMap:   ecs.NewMap1[components.Collision](world),
		filter:   ecs.NewFilter3[components.Position, components.Direction, components.Collision](world),
		entities: make([]ecs.Entity, capacity),
	}

	for i := range p.entities {
		pos := components.Position{}
		dir := components.Direction{X: 1}
		hit := components.Collision{}
		p.entities[i] = p.mapper.NewEntity(&pos, &dir, &hit)
	}

	return p
}

// Len returns the pool capacity.
func (p *Pool) Len() int {
	return len(p.entities)
}

// Get returns mutable component pointers for sphere i.
func (p *Pool) Get(i int) (*components.Position, *components.Direction, *components.Collision) {
	return p.mapper.Get(p.entities[i])
}

// Sphere returns a value copy of sphere i.
func (p *Pool) Sphere(i int) components.Sphere {
	pos, dir, hit := p.Get(i)
	return components.Sphere{Pos: *pos, Dir: *dir, Hit: hit.Hit}
}

// State returns a value copy of every sphere in index order.
func (p *Pool) State() []components.Sphere {
	return p.StateInto(make([]components.Sphere, 0, len(p.entities)))
}

// StateInto appends the pool state to dst and returns it.
func (p *Pool) StateInto(dst []components.Sphere) []components.Sphere {
	for i := range p.entities {
		dst = append(dst, p.Sphere(i))
	}
	return dst
}

// Load overwrites the pool with the given state. len(state) must equal Len.
func (p *Pool) Load(state []components.Sphere) error {
	if len(state) != len(p.entities) {
		return fmt.Errorf("pool: state has %d spheres, want %d", len(state), len(p.entities))
	}
	for i, s := range state {
		pos, dir, hit := p.Get(i)
		*pos = s.Pos
		*dir = s.Dir
		hit.Hit = s.Hit
	}
	return nil
}

// Reset starts a new simulation: every sphere gets a uniformly random
// interior position and a uniformly random unit direction, and collision
// flags are cleared.
func (p *Pool) Reset(rng *rand.Rand) {
	for i := range p.entities {
		pos, dir, hit := p.Get(i)
		*pos = components.Position(RandomInterior(rng))
		*dir = components.Direction(RandomUnit(rng))
		hit.Hit = false
	}
}

// Orbit places every sphere just outside the unit ball, at a random radius
// in [1.2, 1.5), with a fresh random direction. Containment pulls them in
// over the following ticks.
func (p *Pool) Orbit(rng *rand.Rand) {
	for i := range p.entities {
		pos, dir, hit := p.Get(i)
		radius := rng.Float64()*0.3 + 1.2
		*pos = components.Position(r3.Scale(radius, RandomUnit(rng)))
		*dir = components.Direction(RandomUnit(rng))
		hit.Hit = false
	}
}

// ClearFlags resets every collision flag.
func (p *Pool) ClearFlags() {
	for _, e := range p.entities {
		p.hitMap.Get(e).Hit = false
	}
}

// FlaggedCount returns how many spheres currently carry a collision flag.
func (p *Pool) FlaggedCount() int {
	n := 0
	query := p.filter.Query()
	for query.Next() {
		_, _, hit := query.Get()
		if hit.Hit {
			n++
		}
	}
	return n
}
