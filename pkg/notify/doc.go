// Package notify implements the notification side of the telemetry core:
// a bounded registry of level-triggered observables and an engine that
// sweeps it on a fixed cadence, publishing each changed notification as
// an individually templated event message.
//
// Unlike properties, notifications are not debounced, not grouped and not
// gated on connectivity. A level change marks the notification changed;
// the next sweep renders the value through its optional value map,
// interpolates key, level and value into the creation-time template and
// hands the result to the Publisher. Failed publishes leave the changed
// flag set, so the identical message is retried on the next sweep.
package notify
