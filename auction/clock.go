package auction

import "time"

// Clock supplies the engine's notion of now, in nanoseconds since the
// Unix epoch. Injected so expiry behavior is testable.
type Clock interface {
	Now() uint64
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time in nanoseconds since the Unix epoch.
func (SystemClock) Now() uint64 {
	return uint64(time.Now().UnixNano())
}
