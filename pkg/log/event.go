package log

import (
	"time"
)

// Event records one telemetry engine occurrence.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// DeviceID identifies the publishing device (UUID), when known.
	DeviceID string `cbor:"2,keyasint,omitempty"`

	// Engine identifies which scheduler produced the event.
	Engine Engine `cbor:"3,keyasint"`

	// Kind classifies the event.
	Kind Kind `cbor:"4,keyasint"`

	// Success reports the publish outcome for sync and publish events.
	Success bool `cbor:"5,keyasint,omitempty"`

	// Members is the number of properties staged into a state sync.
	Members int `cbor:"6,keyasint,omitempty"`

	// EventName is the cloud event name of a published notification.
	EventName string `cbor:"7,keyasint,omitempty"`

	// Message is the rendered notification message.
	Message string `cbor:"8,keyasint,omitempty"`

	// Payload is the rendered state-sync payload.
	Payload []byte `cbor:"9,keyasint,omitempty"`

	// Detail carries free-form context for lifecycle and error events.
	Detail string `cbor:"10,keyasint,omitempty"`
}

// Engine identifies the scheduler that produced an event.
type Engine uint8

const (
	// EngineProps is the batched property scheduler.
	EngineProps Engine = 0
	// EngineNotify is the notification scheduler.
	EngineNotify Engine = 1
)

// String returns the engine name.
func (e Engine) String() string {
	switch e {
	case EngineProps:
		return "PROPS"
	case EngineNotify:
		return "NOTIFY"
	default:
		return "UNKNOWN"
	}
}

// Kind classifies an event.
type Kind uint8

const (
	// KindStateSync is a batched property publish attempt.
	KindStateSync Kind = 0
	// KindEventPublish is an individual notification publish attempt.
	KindEventPublish Kind = 1
	// KindLifecycle marks engine start and stop.
	KindLifecycle Kind = 2
	// KindError marks a local failure such as payload overflow.
	KindError Kind = 3
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStateSync:
		return "STATE_SYNC"
	case KindEventPublish:
		return "EVENT_PUBLISH"
	case KindLifecycle:
		return "LIFECYCLE"
	case KindError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
