package clock

import "time"

// Clock stamps registry events.
// Tests swap in a manual clock so emitted events are deterministic.
type Clock interface {
	Now() time.Time
}
