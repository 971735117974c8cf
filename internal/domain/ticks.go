package domain

import (
	"math"
	"time"
)

// TicksPerSecond is the canonical time resolution: 100-nanosecond ticks.
// Every format-specific timestamp is converted to this scale before
// comparison or storage.
const TicksPerSecond int64 = 10_000_000

// TicksFromSeconds converts a duration in seconds to canonical ticks,
// rounding to the nearest tick.
func TicksFromSeconds(seconds float64) int64 {
	return int64(math.Round(seconds * float64(TicksPerSecond)))
}

// TicksFromDuration converts a time.Duration to canonical ticks.
func TicksFromDuration(d time.Duration) int64 {
	return d.Nanoseconds() / 100
}

// TicksToDuration converts canonical ticks back to a time.Duration.
func TicksToDuration(ticks int64) time.Duration {
	return time.Duration(ticks * 100)
}
