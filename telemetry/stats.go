package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of logic ticks.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Mode            string  `csv:"mode"`

	// Pool state at window end
	Spheres int `csv:"spheres"`
	Flagged int `csv:"flagged"`

	// Reference physics events during window
	BoundaryCorrections int `csv:"boundary_corrections"`
	CollisionResponses  int `csv:"collision_responses"`

	// Bridge events during window
	FramesApplied  int `csv:"frames_applied"`
	FramesShort    int `csv:"frames_short"`
	FramesAbsent   int `csv:"frames_absent"`
	PublishErrors  int `csv:"publish_errors"`
	SpheresSkipped int `csv:"spheres_skipped"`
	SpheresFlagged int `csv:"spheres_flagged"`

	Simulations int `csv:"simulations"`

	// Distance from the origin, sampled at window end
	RadiusMean float64 `csv:"radius_mean"`
	RadiusStd  float64 `csv:"radius_std"`
	RadiusP50  float64 `csv:"radius_p50"`
	RadiusP90  float64 `csv:"radius_p90"`
	RadiusMax  float64 `csv:"radius_max"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// RadiusStats summarizes sphere distances from the origin.
type RadiusStats struct {
	Mean, Std, P50, P90, Max float64
}

// ComputeRadiusStats calculates mean, population std and percentiles.
func ComputeRadiusStats(values []float64) RadiusStats {
	if len(values) == 0 {
		return RadiusStats{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, variance := stat.PopMeanVariance(sorted, nil)
	return RadiusStats{
		Mean: mean,
		Std:  math.Sqrt(math.Max(variance, 0)),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
		Max:  sorted[len(sorted)-1],
	}
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"mode", s.Mode,
		"spheres", s.Spheres,
		"flagged", s.Flagged,
		"boundary_corrections", s.BoundaryCorrections,
		"collision_responses", s.CollisionResponses,
		"frames_applied", s.FramesApplied,
		"frames_short", s.FramesShort,
		"frames_absent", s.FramesAbsent,
		"publish_errors", s.PublishErrors,
		"spheres_skipped", s.SpheresSkipped,
		"spheres_flagged", s.SpheresFlagged,
		"simulations", s.Simulations,
		"radius_mean", s.RadiusMean,
		"radius_p90", s.RadiusP90,
		"radius_max", s.RadiusMax,
	)
}
