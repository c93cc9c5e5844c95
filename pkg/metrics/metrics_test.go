package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestNopCollector(t *testing.T) {
	c := NewNop()

	// Verify it implements the interface and tolerates any input.
	var _ Collector = c
	c.StateSync(3, 128, true)
	c.EventPublish("alerts/over", false)
	c.CycleDuration("props", 5*time.Millisecond)
}

func TestPrometheusCollectorRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheus(reg, "")

	c.StateSync(2, 44, true)
	c.StateSync(1, 13, false)
	c.EventPublish("alerts/over", true)
	c.CycleDuration("notify", time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["statecast_props_state_sync_attempts_total"])
	require.True(t, names["statecast_props_state_sync_members"])
	require.True(t, names["statecast_props_state_sync_bytes"])
	require.True(t, names["statecast_notify_event_publish_attempts_total"])
	require.True(t, names["statecast_engine_cycle_duration_seconds"])
}

func TestPrometheusCollectorIdempotentRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheus(reg, "dev")

	// Repeated reports must not re-register collectors.
	for i := 0; i < 3; i++ {
		c.StateSync(1, 10, true)
	}

	_, err := reg.Gather()
	require.NoError(t, err)
}
