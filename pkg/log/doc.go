// Package log implements telemetry event logging.
//
// Every publish attempt, whether a batched state sync from the property
// engine or an individual event message from the notification engine, can
// be captured as a structured Event. Applications choose where events go:
//
//   - NoopLogger discards everything (the default).
//   - FileLogger appends CBOR-encoded events to a file for later replay.
//   - SlogAdapter forwards events to a log/slog logger for console output.
//   - MultiLogger fans out to several of the above.
//
// Reader replays a CBOR event log, optionally filtered by engine, kind,
// outcome or time range. The CBOR encoding uses integer keys and
// nanosecond timestamps, so logs stay compact on long-running devices.
package log
