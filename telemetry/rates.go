package telemetry

import "time"

// Rates is a frames/ticks-per-second reading over some interval.
type Rates struct {
	FPS     float64
	LPS     float64
	Elapsed time.Duration
}

// RateCounter counts rendered frames and logic ticks between reports.
// A report is refused if the previous one was less than minInterval ago.
type RateCounter struct {
	minInterval time.Duration
	now         func() time.Time

	since  time.Time
	frames int
	ticks  int
}

// NewRateCounter creates a counter whose window starts now.
func NewRateCounter(minInterval time.Duration) *RateCounter {
	return newRateCounter(minInterval, time.Now)
}

func newRateCounter(minInterval time.Duration, now func() time.Time) *RateCounter {
	return &RateCounter{minInterval: minInterval, now: now, since: now()}
}

// Frame counts one rendered frame.
func (r *RateCounter) Frame() { r.frames++ }

// Tick counts one logic tick.
func (r *RateCounter) Tick() { r.ticks++ }

// Report returns the rates since the last successful report and starts a
// new window. ok is false when called again within minInterval.
func (r *RateCounter) Report() (Rates, bool) {
	now := r.now()
	elapsed := now.Sub(r.since)
	if elapsed < r.minInterval || elapsed <= 0 {
		return Rates{}, false
	}

	secs := elapsed.Seconds()
	rates := Rates{
		FPS:     float64(r.frames) / secs,
		LPS:     float64(r.ticks) / secs,
		Elapsed: elapsed,
	}
	r.since = now
	r.frames = 0
	r.ticks = 0
	return rates, true
}
