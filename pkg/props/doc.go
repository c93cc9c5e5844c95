// Package props implements the device property registry and its periodic
// publication engine.
//
// Properties are named observable values registered once during device
// setup and updated from application code at any time afterwards. The
// registry tracks, per property, the latest set value, the last published
// value, a changed flag and a debounce window; publication is organised
// through groups, each with its own period and only-if-changed policy.
//
// # Debounce
//
// A value change does not become publishable immediately. Updating a
// property arms (or re-arms) its debounce window; the changed flag is set
// only once the configured delay elapses without a further update. A burst
// of rapid updates therefore publishes at most once, timed from the last
// update in the burst. The default delay is zero, which recognises the
// change on the next evaluation of a group containing the property.
//
// # Groups and Batching
//
// The engine evaluates groups on a fixed internal cadence. When a group's
// period has elapsed (or on the very first cycle after start, which forces
// a full state sync), its members are considered: enabled members whose
// value actually differs from the last published value (or all enabled
// members, for groups without the only-if-changed policy) are staged into
// one flat JSON payload shared by every group due in the same cycle. The
// payload is handed to the StateSyncer collaborator in a single call.
//
// # Delivery
//
// Delivery is at-least-once. A failed sync leaves every staged member
// changed, so the identical payload is rebuilt and retried when its groups
// next come due. Success clears the changed flags and snapshots the
// published values.
//
// Registration calls are expected during setup, before the engine starts.
// Update calls may arrive concurrently from any goroutine while the engine
// runs; the registry serialises access internally.
package props
