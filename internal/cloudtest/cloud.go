// Package cloudtest provides an in-memory cloud collaborator for tests
// and simulation. It records every publish attempt and supports scripted
// failures and connectivity toggling.
package cloudtest

import (
	"sync"
)

// PublishedEvent is one recorded notification publish.
type PublishedEvent struct {
	// Event is the cloud event name.
	Event string

	// Message is the rendered notification message.
	Message string
}

// Cloud is a fake cloud endpoint implementing both the props.StateSyncer
// and notify.Publisher contracts. The zero value is connected and
// accepts everything; create instances with New.
type Cloud struct {
	mu sync.Mutex

	disconnected bool
	failSyncs    int
	failEvents   int

	batches [][]byte
	events  []PublishedEvent
}

// New returns a connected Cloud that accepts all publishes.
func New() *Cloud {
	return &Cloud{}
}

// SyncState records a batched state sync. It fails (returns false) while
// scripted sync failures remain.
func (c *Cloud) SyncState(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failSyncs > 0 {
		c.failSyncs--
		return false
	}
	cp := make([]byte, len(payload))
	copy(cp, payload)
	c.batches = append(c.batches, cp)
	return true
}

// Publish records a notification publish. It fails (returns false) while
// scripted event failures remain.
func (c *Cloud) Publish(event, message string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failEvents > 0 {
		c.failEvents--
		return false
	}
	c.events = append(c.events, PublishedEvent{Event: event, Message: message})
	return true
}

// IsConnected reports the scripted connectivity state.
func (c *Cloud) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.disconnected
}

// SetConnected toggles the connectivity reported to the property engine.
func (c *Cloud) SetConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = !connected
}

// FailNextSyncs makes the next n SyncState calls fail.
func (c *Cloud) FailNextSyncs(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failSyncs = n
}

// FailNextPublishes makes the next n Publish calls fail.
func (c *Cloud) FailNextPublishes(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failEvents = n
}

// Batches returns the successfully recorded state syncs as strings.
func (c *Cloud) Batches() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.batches))
	for i, b := range c.batches {
		out[i] = string(b)
	}
	return out
}

// Events returns the successfully recorded notification publishes.
func (c *Cloud) Events() []PublishedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]PublishedEvent, len(c.events))
	copy(out, c.events)
	return out
}

// Reset clears all recorded traffic and scripted behaviour.
func (c *Cloud) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = nil
	c.events = nil
	c.failSyncs = 0
	c.failEvents = 0
	c.disconnected = false
}
