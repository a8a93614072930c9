package telemetry

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestRateCounter(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := newRateCounter(2*time.Second, clock.now)

	for i := 0; i < 120; i++ {
		r.Tick()
	}
	for i := 0; i < 240; i++ {
		r.Frame()
	}

	clock.t = clock.t.Add(time.Second)
	if _, ok := r.Report(); ok {
		t.Fatal("report accepted before minimum interval")
	}

	clock.t = clock.t.Add(time.Second)
	rates, ok := r.Report()
	if !ok {
		t.Fatal("report refused after minimum interval")
	}
	if rates.LPS != 60 || rates.FPS != 120 {
		t.Errorf("rates = %+v, want lps 60 fps 120", rates)
	}

	// A new window starts at the accepted report.
	clock.t = clock.t.Add(3 * time.Second)
	r.Tick()
	rates, ok = r.Report()
	if !ok || rates.Elapsed != 3*time.Second {
		t.Fatalf("second report = %+v, %v", rates, ok)
	}
	if rates.FPS != 0 || rates.LPS != 1.0/3 {
		t.Errorf("counts not reset: %+v", rates)
	}
}
