package session

import "sync"

const (
	tickRange = 1 << 16

	// A tick lower than the previous one counts as a rollover only when the
	// previous tick was this close to the top of the range. Anything else is
	// an out-of-order notification.
	rolloverWindow = 100
)

// TimestampUnwrapper extends the 16-bit device tick into a monotonic 64-bit
// counter.
type TimestampUnwrapper struct {
	mu     sync.Mutex
	last   uint16
	resets uint64
	seen   bool
}

// Unwrap returns the extended value of tick.
func (u *TimestampUnwrapper) Unwrap(tick uint16) uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.unwrap(tick)
}

func (u *TimestampUnwrapper) unwrap(tick uint16) uint64 {
	if u.seen && int(u.last) > tickRange-rolloverWindow && u.last > tick {
		u.resets++
	}
	u.last = tick
	u.seen = true
	return u.resets*tickRange + uint64(tick)
}

// Next returns the tick following the last one. It stands in for the
// device tick of notifications too short to carry one.
func (u *TimestampUnwrapper) Next() uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.seen {
		return u.unwrap(0)
	}
	return u.unwrap(u.last + 1)
}

// Reset forgets the tick history.
func (u *TimestampUnwrapper) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.last, u.resets, u.seen = 0, 0, false
}
