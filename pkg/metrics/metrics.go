package metrics

import "time"

// Collector receives instrumentation events from the telemetry engines.
// Implementations must be safe for concurrent use.
type Collector interface {
	// StateSync records a batched property publish attempt.
	StateSync(members int, payloadBytes int, success bool)

	// EventPublish records an individual notification publish attempt.
	EventPublish(eventName string, success bool)

	// CycleDuration records how long one scheduler evaluation took.
	CycleDuration(engine string, d time.Duration)
}

// NopCollector discards all instrumentation events.
// Useful for testing and for production setups where metrics are handled
// elsewhere.
type NopCollector struct{}

// Compile-time assertion that NopCollector implements Collector.
var _ Collector = (*NopCollector)(nil)

// NewNop creates a collector that performs no operations.
func NewNop() *NopCollector {
	return &NopCollector{}
}

// StateSync discards the event.
func (*NopCollector) StateSync(int, int, bool) {}

// EventPublish discards the event.
func (*NopCollector) EventPublish(string, bool) {}

// CycleDuration discards the event.
func (*NopCollector) CycleDuration(string, time.Duration) {}
