package telemetry

import (
	"github.com/pthm-cable/collider/bridge"
	"github.com/pthm-cable/collider/systems"
)

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks int64
	dt          float64

	windowStartTick int64

	boundaryCorrections int
	collisionResponses  int
	framesApplied       int
	framesShort         int
	framesAbsent        int
	publishErrors       int
	spheresSkipped      int
	spheresFlagged      int
	simulations         int
}

// NewCollector creates a new stats collector.
// windowTicks: logic ticks per window
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowTicks int, dt float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowTicks: int64(windowTicks),
		dt:          dt,
	}
}

// RecordStep records the corrections from one reference step.
func (c *Collector) RecordStep(s systems.StepStats) {
	c.boundaryCorrections += s.BoundaryCorrections
	c.collisionResponses += s.CollisionResponses
}

// RecordFrame records the outcome of one learned-mode tick.
func (c *Collector) RecordFrame(r bridge.FrameResult, publishErr error) {
	if publishErr != nil {
		c.publishErrors++
	}
	switch r.Status {
	case bridge.FrameApplied:
		c.framesApplied++
	case bridge.FrameShort:
		c.framesShort++
	default:
		c.framesAbsent++
	}
	c.spheresSkipped += r.Skipped
	c.spheresFlagged += r.Flagged
}

// RecordSimulation records a pool reset.
func (c *Collector) RecordSimulation() {
	c.simulations++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// radii are the sphere distances from the origin at currentTick.
func (c *Collector) Flush(currentTick int64, mode string, radii []float64, flagged int) WindowStats {
	rs := ComputeRadiusStats(radii)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		Mode:            mode,

		Spheres: len(radii),
		Flagged: flagged,

		BoundaryCorrections: c.boundaryCorrections,
		CollisionResponses:  c.collisionResponses,

		FramesApplied:  c.framesApplied,
		FramesShort:    c.framesShort,
		FramesAbsent:   c.framesAbsent,
		PublishErrors:  c.publishErrors,
		SpheresSkipped: c.spheresSkipped,
		SpheresFlagged: c.spheresFlagged,

		Simulations: c.simulations,

		RadiusMean: rs.Mean,
		RadiusStd:  rs.Std,
		RadiusP50:  rs.P50,
		RadiusP90:  rs.P90,
		RadiusMax:  rs.Max,
	}

	*c = Collector{
		windowTicks:     c.windowTicks,
		dt:              c.dt,
		windowStartTick: currentTick,
	}
	return stats
}
