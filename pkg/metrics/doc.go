// Package metrics defines the instrumentation hooks of the telemetry
// engines.
//
// Engines report through the Collector interface and default to Nop, so
// instrumentation is strictly opt-in. NewPrometheus returns a Collector
// backed by prometheus counters and histograms for deployments that scrape
// device metrics.
package metrics
