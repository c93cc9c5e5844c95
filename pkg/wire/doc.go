// Package wire renders telemetry values into their wire representation.
//
// The cloud endpoint consumes two text formats:
//   - Property state syncs: one flat JSON object per batch, with
//     heterogeneous member types ({"speed":120,"label":"running","temp":87.50}).
//   - Notification events: a printf-style message template interpolated
//     with the notification key, level, and rendered value.
//
// # Value Rendering
//
// A Value carries its kind, fixed at creation time:
//   - KindInt: signed or unsigned 32-bit integer, rendered as a decimal.
//   - KindDecimal: a raw integer divided by a scale factor, rendered with a
//     fixed number of fractional digits (87.50, not 87.5).
//   - KindString: rendered quoted.
//   - KindMapped: an enumerated value looked up in a display-string table,
//     rendered quoted; out-of-range or unmapped entries fall back to the
//     numeric rendering.
//
// Rendering is deterministic: the same Value always produces the same
// bytes, which is what makes failed publishes retryable verbatim.
//
// # Payload Building
//
// PayloadBuilder assembles the flat JSON object for a state sync. It is
// append-only and enforces an explicit size ceiling, failing fast on
// overflow instead of truncating silently.
package wire
