package bridge

import (
	"math"

	"github.com/pthm-cable/collider/pool"
	"github.com/pthm-cable/collider/record"
)

// ErrShortFrame reports a record whose size does not match the expected
// float count. The whole frame is discarded.
var ErrShortFrame = record.ErrSize

// AppendState appends the predictor input record for p to dst: per sphere
// position.x, .y, .z then direction.x, .y, .z.
func AppendState(dst []byte, p *pool.Pool) []byte {
	for i := 0; i < p.Len(); i++ {
		pos, dir, _ := p.Get(i)
		dst = record.Append(dst,
			float32(pos.X), float32(pos.Y), float32(pos.Z),
			float32(dir.X), float32(dir.Y), float32(dir.Z),
		)
	}
	return dst
}

// AppendPositions appends per-sphere position.x, .y, .z to dst. This is
// the layout of the predictor output record.
func AppendPositions(dst []byte, p *pool.Pool) []byte {
	for i := 0; i < p.Len(); i++ {
		pos, _, _ := p.Get(i)
		dst = record.Append(dst, float32(pos.X), float32(pos.Y), float32(pos.Z))
	}
	return dst
}

// smallestNormal is the smallest positive normal float32.
var smallestNormal = math.Float32frombits(0x00800000)

// WellFormed reports whether f is a normal float32 or exactly zero.
// NaN, infinities and subnormals are rejected.
func WellFormed(f float32) bool {
	if f == 0 {
		return true
	}
	f64 := float64(f)
	if math.IsNaN(f64) || math.IsInf(f64, 0) {
		return false
	}
	return math.Abs(f64) >= float64(smallestNormal)
}
