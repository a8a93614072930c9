package telemetry

import (
	"fmt"
	"time"
)

type elapsedUnit struct {
	below       time.Duration
	per         time.Duration
	long, short string
}

var elapsedUnits = []elapsedUnit{
	{time.Minute, time.Minute, "Minutes", "Min"},
	{time.Hour, time.Hour, "Hours", "Hr"},
	{60 * time.Hour, 24 * time.Hour, "Days", "Days"},
}

// FormatElapsed renders how long a simulation has run, e.g. "42 Seconds"
// or "1.50 Minutes".
func FormatElapsed(d time.Duration) string {
	return formatElapsed(d, false)
}

// FormatElapsedShort is FormatElapsed with abbreviated units, for the
// status line.
func FormatElapsedShort(d time.Duration) string {
	return formatElapsed(d, true)
}

func formatElapsed(d time.Duration, short bool) string {
	if d < time.Minute {
		unit := "Seconds"
		if short {
			unit = "Sec"
		}
		return fmt.Sprintf("%.0f %s", d.Seconds(), unit)
	}
	// Each unit applies until the next threshold; anything past 60h is days.
	u := elapsedUnits[len(elapsedUnits)-1]
	for i := 0; i < len(elapsedUnits)-1; i++ {
		if d < elapsedUnits[i+1].below {
			u = elapsedUnits[i]
			break
		}
	}
	name := u.long
	if short {
		name = u.short
	}
	return fmt.Sprintf("%.2f %s", float64(d)/float64(u.per), name)
}
