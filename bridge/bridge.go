// Package bridge connects the simulation tick to an external predictor.
//
// Each tick in learned mode the pool state is published as a flat float32
// record, and the most recent predicted-position record is read back,
// validated and applied. Publisher and predictor run at their own cadence
// with no acknowledgement between them.
package bridge

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/collider/components"
	"github.com/pthm-cable/collider/config"
	"github.com/pthm-cable/collider/pool"
	"github.com/pthm-cable/collider/record"
	"github.com/pthm-cable/collider/systems"
)

// FrameStatus classifies what happened to a fetched result frame.
type FrameStatus uint8

const (
	FrameAbsent  FrameStatus = iota // no readable result record
	FrameShort                      // wrong total size, discarded whole
	FrameApplied                    // validated per sphere and applied
)

func (s FrameStatus) String() string {
	switch s {
	case FrameAbsent:
		return "absent"
	case FrameShort:
		return "short"
	case FrameApplied:
		return "applied"
	}
	return "unknown"
}

// FrameResult summarizes one fetch-and-apply pass.
type FrameResult struct {
	Status  FrameStatus
	Applied int // spheres updated
	Skipped int // spheres rejected by validation
	Flagged int // applied spheres marked as colliding
}

// Options configures a Bridge. The float counts fix the record sizes for a
// pool of ResultFloats/3 spheres.
type Options struct {
	InputFloats   int     // floats per published input record
	ResultFloats  int     // floats a result record must hold exactly
	Speed         float64 // step length along the derived direction
	FlagThreshold float64 // |dot(old, new)| below this flags a collision
}

// OptionsFromConfig builds bridge options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		InputFloats:   cfg.Derived.InputFloats,
		ResultFloats:  cfg.Derived.ResultFloats,
		Speed:         cfg.Sim.Speed,
		FlagThreshold: cfg.Bridge.FlagThreshold,
	}
}

// Bridge publishes pool state to a Channel and applies predictions from it.
type Bridge struct {
	ch   Channel
	opts Options

	out    []byte
	floats []float32
}

// New creates a bridge over ch.
func New(ch Channel, opts Options) *Bridge {
	return &Bridge{
		ch:     ch,
		opts:   opts,
		out:    make([]byte, 0, opts.InputFloats*record.FloatSize),
		floats: make([]float32, 0, opts.ResultFloats),
	}
}

// Publish writes the current pool state. A failure leaves the previous
// record in place for the predictor; callers treat it as non-fatal.
func (b *Bridge) Publish(p *pool.Pool) error {
	b.out = AppendState(b.out[:0], p)
	return b.ch.Publish(b.out)
}

// FetchAndApply reads the latest prediction and applies it to p.
//
// A missing record or one of the wrong size leaves the whole pool
// unchanged. Otherwise each sphere is validated on its own: a candidate
// with a non-finite component, or one equal to the current position, is
// skipped. An accepted sphere takes the direction from its old position to
// the candidate and moves one step along it; the candidate itself is not
// written.
func (b *Bridge) FetchAndApply(p *pool.Pool) FrameResult {
	data, err := b.ch.Fetch()
	if err != nil {
		return FrameResult{Status: FrameAbsent}
	}

	floats, err := record.Decode(b.floats, data, b.opts.ResultFloats)
	if err != nil {
		return FrameResult{Status: FrameShort}
	}
	b.floats = floats

	res := FrameResult{Status: FrameApplied}
	for i := 0; i < len(floats)/3; i++ {
		x, y, z := floats[i*3], floats[i*3+1], floats[i*3+2]
		if !WellFormed(x) || !WellFormed(y) || !WellFormed(z) {
			res.Skipped++
			continue
		}

		pos, dir, hit := p.Get(i)
		candidate := r3.Vec{X: float64(x), Y: float64(y), Z: float64(z)}
		delta := r3.Sub(candidate, pos.Vec())
		if r3.Norm2(delta) == 0 {
			res.Skipped++
			continue
		}
		newDir := systems.Normalize(delta)

		hit.Hit = math.Abs(r3.Dot(dir.Vec(), newDir)) < b.opts.FlagThreshold
		if hit.Hit {
			res.Flagged++
		}

		*dir = components.Direction(newDir)
		systems.Advance(pos, *dir, b.opts.Speed)
		res.Applied++
	}

	return res
}

// Tick runs one learned-mode tick: publish, then fetch and apply. The
// publish error is returned alongside the frame result and does not stop
// the fetch.
func (b *Bridge) Tick(p *pool.Pool) (FrameResult, error) {
	pubErr := b.Publish(p)
	return b.FetchAndApply(p), pubErr
}
