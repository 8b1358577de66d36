package timing

import "time"

// Clock returns elapsed milliseconds since a fixed reference point
// (normally process start). It must be monotonic and non-negative.
type Clock func() int64

// processStart anchors the default clock. Captured once at init so every
// registry in the process shares the same reference point.
var processStart = time.Now()

// DefaultClock measures elapsed milliseconds since process start using
// the runtime's monotonic clock.
func DefaultClock() int64 {
	return time.Since(processStart).Milliseconds()
}
