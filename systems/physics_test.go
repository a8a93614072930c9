package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/collider/components"
	"github.com/pthm-cable/collider/pool"
)

const tol = 1e-9

func vecNear(a, b r3.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

var testParams = Params{Scale: 0.16, Speed: 0.003, Threshold: 0.16 * 1.8}

func TestAdvanceInsideNoCorrection(t *testing.T) {
	pos := components.Position{Z: 0.99}
	dir := components.Direction{Z: 1}

	Advance(&pos, dir, 0.003)

	if !vecNear(pos.Vec(), r3.Vec{Z: 0.993}, tol) {
		t.Fatalf("pos = %+v, want (0,0,0.993)", pos)
	}
	if Contain(&pos, &dir, 0.003) {
		t.Error("Contain corrected a sphere at |pos| = 0.993")
	}
	if dir != (components.Direction{Z: 1}) {
		t.Errorf("dir changed to %+v", dir)
	}
}

func TestContain(t *testing.T) {
	n := r3.Unit(r3.Vec{X: 1, Y: 2, Z: -2})

	tests := []struct {
		name      string
		pos       r3.Vec
		dir       r3.Vec
		corrected bool
		wantPos   r3.Vec
		wantDir   r3.Vec
	}{
		{
			name:      "radial outward flips",
			pos:       r3.Scale(1.0005, n),
			dir:       n,
			corrected: true,
			wantPos:   r3.Scale(1.0005-(0.0005+0.003), n),
			wantDir:   r3.Scale(-1, n),
		},
		{
			name:      "exactly on surface is inside",
			pos:       r3.Vec{X: 1},
			dir:       r3.Vec{X: 1},
			corrected: false,
			wantPos:   r3.Vec{X: 1},
			wantDir:   r3.Vec{X: 1},
		},
		{
			name:      "tangential component kept",
			pos:       r3.Vec{Z: 1.01},
			dir:       r3.Unit(r3.Vec{X: 1, Z: 1}),
			corrected: true,
			wantPos:   r3.Vec{Z: 1 - 0.003},
			wantDir:   r3.Unit(r3.Vec{X: 1, Z: -1}),
		},
		{
			name:      "far outside pulled to one step inside",
			pos:       r3.Vec{Y: -1.4},
			dir:       r3.Vec{X: 1},
			corrected: true,
			wantPos:   r3.Vec{Y: -(1 - 0.003)},
			wantDir:   r3.Vec{X: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := components.Position(tt.pos)
			dir := components.Direction(tt.dir)

			got := Contain(&pos, &dir, 0.003)
			if got != tt.corrected {
				t.Fatalf("Contain = %v, want %v", got, tt.corrected)
			}
			if !vecNear(pos.Vec(), tt.wantPos, 1e-9) {
				t.Errorf("pos = %+v, want %+v", pos, tt.wantPos)
			}
			if !vecNear(dir.Vec(), tt.wantDir, 1e-9) {
				t.Errorf("dir = %+v, want %+v", dir, tt.wantDir)
			}
			if m := r3.Norm(dir.Vec()); math.Abs(m-1) > tol {
				t.Errorf("|dir| = %v, want 1", m)
			}
		})
	}
}

func TestContainIdempotentInside(t *testing.T) {
	pos := components.Position{X: 0.3, Y: -0.2, Z: 0.5}
	dir := components.Direction(r3.Unit(r3.Vec{X: 1, Y: 1, Z: 1}))
	wantPos, wantDir := pos, dir

	for i := 0; i < 3; i++ {
		Contain(&pos, &dir, 0.003)
	}
	if pos != wantPos || dir != wantDir {
		t.Errorf("inside sphere changed: pos %+v dir %+v", pos, dir)
	}
}

func TestInvariantsOverManyTicks(t *testing.T) {
	p := pool.New(16)
	rng := rand.New(rand.NewSource(2024))
	p.Reset(rng)

	for tick := 0; tick < 2000; tick++ {
		if tick == 1000 {
			p.Orbit(rng)
		}
		for i := 0; i < p.Len(); i++ {
			pos, dir, _ := p.Get(i)
			Advance(pos, *dir, testParams.Speed)
			Contain(pos, dir, testParams.Speed)

			if r := r3.Norm(pos.Vec()); r > 1+1e-9 {
				t.Fatalf("tick %d sphere %d: |pos| = %v after containment", tick, i, r)
			}
			if m := r3.Norm(dir.Vec()); math.Abs(m-1) > 1e-9 {
				t.Fatalf("tick %d sphere %d: |dir| = %v after containment", tick, i, m)
			}

			ResolveFor(p, i, testParams)

			if m := r3.Norm(dir.Vec()); math.Abs(m-1) > 1e-9 {
				t.Fatalf("tick %d sphere %d: |dir| = %v after collision", tick, i, m)
			}
		}
	}
}

func TestReferenceDeterministic(t *testing.T) {
	run := func() []components.Sphere {
		p := pool.New(16)
		p.Reset(rand.New(rand.NewSource(42)))
		sys := NewReferenceSystem(testParams)
		for i := 0; i < 600; i++ {
			sys.Step(p, nil)
		}
		return p.State()
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sphere %d diverged: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestStepObserver(t *testing.T) {
	p := pool.New(4)
	p.Reset(rand.New(rand.NewSource(5)))
	sys := NewReferenceSystem(testParams)

	before := p.State()
	var order []int
	var pres []components.Sphere
	var posts []components.Position

	sys.Step(p, func(i int, pre components.Sphere, post components.Position) {
		order = append(order, i)
		pres = append(pres, pre)
		posts = append(posts, post)
	})

	if len(order) != 4 {
		t.Fatalf("observer called %d times, want 4", len(order))
	}
	for k, i := range order {
		if i != k {
			t.Errorf("call %d observed sphere %d, want ascending order", k, i)
		}
		// Sphere k has not moved before its own turn, and nothing after it
		// touches it again within the same step.
		if pres[k] != before[k] {
			t.Errorf("sphere %d pre-state = %+v, want %+v", k, pres[k], before[k])
		}
		if posts[k] != p.Sphere(k).Pos {
			t.Errorf("sphere %d post = %+v, want %+v", k, posts[k], p.Sphere(k).Pos)
		}
	}
}
