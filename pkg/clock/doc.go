// Package clock provides the wrapping millisecond clock used by the
// telemetry schedulers.
//
// # Why a 32-bit wrapping counter
//
// Debounce windows and group periods are compared against a monotonic
// millisecond counter that wraps around every ~49.7 days. All elapsed-time
// checks go through Elapsed, which is correct across the wrap boundary
// because it relies on unsigned wraparound arithmetic instead of signed
// subtraction.
//
// # Implementations
//
// System returns a clock backed by the process monotonic clock. Manual is a
// hand-advanced clock for tests and simulation; it makes every scheduler
// decision in this module deterministic.
package clock
