// Package natspub bridges the telemetry engines onto a NATS bus. A
// Client implements both cloud collaborator contracts: batched state
// syncs go to one state subject per device, notification events to one
// subject per event name. Connectivity is taken from the underlying NATS
// connection, so the property engine pauses automatically while the bus
// is unreachable.
package natspub
