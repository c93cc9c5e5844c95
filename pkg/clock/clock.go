package clock

import (
	"sync"
	"time"
)

// Clock supplies the current value of a wrapping millisecond counter.
// Implementations must be safe for concurrent use.
type Clock interface {
	// NowMs returns the current monotonic time in milliseconds. The value
	// wraps around at 2^32; compare instants with Elapsed, never by
	// subtraction.
	NowMs() uint32
}

// Elapsed reports whether at least delay milliseconds have passed between
// start and now on a wrapping counter. The unsigned subtraction wraps
// modulo 2^32, so the predicate stays correct when now has rolled over
// past start.
func Elapsed(now, start, delay uint32) bool {
	return now-start >= delay
}

// systemClock measures milliseconds since its creation using the process
// monotonic clock.
type systemClock struct {
	epoch time.Time
}

// System returns a Clock backed by the process monotonic clock. The counter
// starts near zero at creation time.
func System() Clock {
	return &systemClock{epoch: time.Now()}
}

// NowMs returns the milliseconds elapsed since the clock was created,
// truncated to 32 bits.
func (c *systemClock) NowMs() uint32 {
	return uint32(time.Since(c.epoch).Milliseconds())
}

// Manual is a hand-advanced Clock for tests and simulation.
// The zero value starts at time 0 and is ready to use.
type Manual struct {
	mu  sync.Mutex
	now uint32
}

// NewManual returns a Manual clock starting at the given instant.
func NewManual(startMs uint32) *Manual {
	return &Manual{now: startMs}
}

// NowMs returns the current manual time.
func (m *Manual) NowMs() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by ms milliseconds, wrapping at 2^32.
func (m *Manual) Advance(ms uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += ms
}

// Set jumps the clock to an absolute instant.
func (m *Manual) Set(nowMs uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = nowMs
}

// Compile-time interface satisfaction checks.
var (
	_ Clock = (*systemClock)(nil)
	_ Clock = (*Manual)(nil)
)
