package props

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statecast/statecast-go/internal/cloudtest"
	"github.com/statecast/statecast-go/pkg/clock"
)

// testEngine wires a registry, manual clock and fake cloud together.
func testEngine(t *testing.T) (*Registry, *Engine, *cloudtest.Cloud, *clock.Manual) {
	t.Helper()

	clk := clock.NewManual(0)
	cfg := DefaultConfig()
	cfg.Clock = clk
	reg := NewRegistry(cfg)
	cloud := cloudtest.New()
	eng := NewEngine(reg, cloud, EngineConfig{})
	return reg, eng, cloud, clk
}

func TestFirstCycleSyncsEverything(t *testing.T) {
	reg, eng, cloud, _ := testEngine(t)

	speed, err := reg.Create("speed", 1, 0, false)
	require.NoError(t, err)
	temp, err := reg.Create("temp", 100, 2, true)
	require.NoError(t, err)
	gid, err := reg.CreateGroup(60000, true)
	require.NoError(t, err)
	require.True(t, reg.AddToGroup(speed, gid))
	require.True(t, reg.AddToGroup(temp, gid))

	reg.Update(speed, 120)
	reg.Update(temp, 8750)

	// Group period has not elapsed, but the first cycle forces a full
	// state sync.
	eng.Sync()

	batches := cloud.Batches()
	require.Len(t, batches, 1)
	assert.Equal(t, `{"speed":120,"temp":87.50}`, batches[0])
}

func TestOnlyIfChangedSuppressesUnchanged(t *testing.T) {
	reg, eng, cloud, clk := testEngine(t)

	speed, _ := reg.Create("speed", 1, 0, false)
	label, _ := reg.CreateString("label", 16)
	gid, _ := reg.CreateGroup(1000, true)
	reg.AddToGroup(speed, gid)
	reg.AddToGroup(label, gid)

	eng.Sync() // initial full sync
	require.Len(t, cloud.Batches(), 1)

	// Only speed changes; label must not reappear.
	reg.Update(speed, 120)
	clk.Advance(1000)
	eng.Sync()

	batches := cloud.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, `{"speed":120}`, batches[1])
}

func TestGroupPeriodGatesPublication(t *testing.T) {
	reg, eng, cloud, clk := testEngine(t)

	speed, _ := reg.Create("speed", 1, 0, false)
	gid, _ := reg.CreateGroup(1000, true)
	reg.AddToGroup(speed, gid)

	eng.Sync()
	require.Len(t, cloud.Batches(), 1)

	reg.Update(speed, 50)
	clk.Advance(500)
	eng.Sync()
	assert.Len(t, cloud.Batches(), 1, "group period not elapsed yet")

	clk.Advance(500)
	eng.Sync()
	require.Len(t, cloud.Batches(), 2)
	assert.Equal(t, `{"speed":50}`, cloud.Batches()[1])
}

func TestAlwaysPublishPolicy(t *testing.T) {
	reg, eng, cloud, clk := testEngine(t)

	speed, _ := reg.Create("speed", 1, 0, false)
	gid, _ := reg.CreateGroup(1000, false)
	reg.AddToGroup(speed, gid)

	eng.Sync()
	clk.Advance(1000)
	eng.Sync()

	// No update happened, but the group publishes anyway.
	batches := cloud.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, `{"speed":0}`, batches[1])
}

func TestBatchCompositionAcrossGroups(t *testing.T) {
	reg, eng, cloud, clk := testEngine(t)

	speed, _ := reg.Create("speed", 1, 0, false)
	temp, _ := reg.Create("temp", 100, 2, true)
	idle, _ := reg.Create("idle", 1, 0, false)

	fast, _ := reg.CreateGroup(1000, true)
	slow, _ := reg.CreateGroup(2000, true)
	never, _ := reg.CreateGroup(60000, true)
	reg.AddToGroup(speed, fast)
	reg.AddToGroup(temp, slow)
	reg.AddToGroup(idle, never)

	eng.Sync() // clear the first-run latch
	require.Len(t, cloud.Batches(), 1)

	reg.Update(speed, 120)
	reg.Update(temp, 8750)
	reg.Update(idle, 1)

	// Both fast and slow come due in the same cycle; their members merge
	// into one flat object. idle's group is not due and must not appear.
	clk.Advance(2000)
	eng.Sync()

	batches := cloud.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, `{"speed":120,"temp":87.50}`, batches[1])
}

func TestRetryOnFailure(t *testing.T) {
	reg, eng, cloud, clk := testEngine(t)

	speed, _ := reg.Create("speed", 1, 0, false)
	gid, _ := reg.CreateGroup(1000, true)
	reg.AddToGroup(speed, gid)

	eng.Sync()
	require.Len(t, cloud.Batches(), 1)

	reg.Update(speed, 120)
	cloud.FailNextSyncs(1)
	clk.Advance(1000)
	eng.Sync()
	assert.Empty(t, cloud.Batches()[1:], "failed sync must not be recorded")

	// The identical rendering reappears verbatim on the next due cycle.
	clk.Advance(1000)
	eng.Sync()
	batches := cloud.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, `{"speed":120}`, batches[1])
}

func TestFirstRunLatchSurvivesFailure(t *testing.T) {
	reg, eng, cloud, clk := testEngine(t)

	speed, _ := reg.Create("speed", 1, 0, false)
	gid, _ := reg.CreateGroup(60000, true)
	reg.AddToGroup(speed, gid)

	cloud.FailNextSyncs(1)
	eng.Sync()
	require.Empty(t, cloud.Batches())

	// The initial full sync keeps retrying until one publish succeeds,
	// regardless of group periods.
	clk.Advance(100)
	eng.Sync()
	require.Len(t, cloud.Batches(), 1)
	assert.Equal(t, `{"speed":0}`, cloud.Batches()[0])
}

func TestDisconnectedSkipsCycle(t *testing.T) {
	reg, eng, cloud, clk := testEngine(t)

	speed, _ := reg.Create("speed", 1, 0, false)
	gid, _ := reg.CreateGroup(1000, true)
	reg.AddToGroup(speed, gid)

	cloud.SetConnected(false)
	eng.Sync()
	clk.Advance(5000)
	eng.Sync()
	assert.Empty(t, cloud.Batches())

	cloud.SetConnected(true)
	eng.Sync()
	require.Len(t, cloud.Batches(), 1)
}

func TestDebounceSuppressesBurst(t *testing.T) {
	reg, eng, cloud, clk := testEngine(t)

	speed, _ := reg.Create("speed", 1, 0, false)
	reg.SetDebounceDelay(speed, 300)
	gid, _ := reg.CreateGroup(100, true)
	reg.AddToGroup(speed, gid)

	eng.Sync() // clear first-run latch
	require.Len(t, cloud.Batches(), 1)

	// A burst of updates, each within the debounce delay of the last.
	for i, v := range []int32{10, 20, 30} {
		clk.Advance(100)
		reg.Update(speed, v)
		eng.Sync()
		require.Len(t, cloud.Batches(), 1, "update %d must stay debounced", i)
	}

	// 200ms after the last update: still quiet.
	clk.Advance(200)
	eng.Sync()
	require.Len(t, cloud.Batches(), 1)

	// 300ms after the last update the change is recognised; only the
	// final value of the burst is published.
	clk.Advance(100)
	eng.Sync()
	batches := cloud.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, `{"speed":30}`, batches[1])
}

func TestDebounceSurvivesClockWraparound(t *testing.T) {
	clk := clock.NewManual(math.MaxUint32 - 150)
	cfg := DefaultConfig()
	cfg.Clock = clk
	reg := NewRegistry(cfg)
	cloud := cloudtest.New()
	eng := NewEngine(reg, cloud, EngineConfig{})

	speed, _ := reg.Create("speed", 1, 0, false)
	reg.SetDebounceDelay(speed, 300)
	gid, _ := reg.CreateGroup(100, true)
	reg.AddToGroup(speed, gid)

	eng.Sync()
	require.Len(t, cloud.Batches(), 1)

	// The counter wraps between the update and its recognition.
	reg.Update(speed, 99)
	clk.Advance(100)
	eng.Sync()
	require.Len(t, cloud.Batches(), 1)

	clk.Advance(200) // now past the wrap, 300ms since the update
	eng.Sync()
	batches := cloud.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, `{"speed":99}`, batches[1])
}

func TestDisabledMemberExcluded(t *testing.T) {
	reg, eng, cloud, clk := testEngine(t)

	speed, _ := reg.Create("speed", 1, 0, false)
	temp, _ := reg.Create("temp", 100, 2, true)
	gid, _ := reg.CreateGroup(1000, true)
	reg.AddToGroup(speed, gid)
	reg.AddToGroup(temp, gid)

	reg.SetDisabled(temp, true)
	eng.Sync()
	require.Len(t, cloud.Batches(), 1)
	assert.Equal(t, `{"speed":0}`, cloud.Batches()[0])

	reg.Update(speed, 1)
	reg.Update(temp, 8750)
	clk.Advance(1000)
	eng.Sync()
	require.Len(t, cloud.Batches(), 2)
	assert.Equal(t, `{"speed":1}`, cloud.Batches()[1])
}

func TestSharedMemberStagedOnce(t *testing.T) {
	reg, eng, cloud, clk := testEngine(t)

	speed, _ := reg.Create("speed", 1, 0, false)
	a, _ := reg.CreateGroup(1000, true)
	b, _ := reg.CreateGroup(1000, true)
	reg.AddToGroup(speed, a)
	reg.AddToGroup(speed, b)

	eng.Sync()
	require.Len(t, cloud.Batches(), 1)

	reg.Update(speed, 7)
	clk.Advance(1000)
	eng.Sync()

	// Both groups are due, but the member appears once.
	batches := cloud.Batches()
	require.Len(t, batches, 2)
	assert.Equal(t, `{"speed":7}`, batches[1])
}

func TestStartStop(t *testing.T) {
	reg, _, cloud, _ := testEngine(t)
	eng := NewEngine(reg, cloud, EngineConfig{})

	require.NoError(t, eng.Start())
	assert.ErrorIs(t, eng.Start(), ErrAlreadyStarted)
	eng.Stop()

	// A stopped engine can be restarted.
	require.NoError(t, eng.Start())
	eng.Stop()
	eng.Stop() // idempotent
}

func TestPayloadOverflowDefersMember(t *testing.T) {
	clk := clock.NewManual(0)
	cfg := DefaultConfig()
	cfg.Clock = clk
	reg := NewRegistry(cfg)
	cloud := cloudtest.New()
	eng := NewEngine(reg, cloud, EngineConfig{PayloadLimit: 20})

	speed, _ := reg.Create("speed", 1, 0, false)
	label, _ := reg.CreateString("label", 32)
	gid, _ := reg.CreateGroup(1000, true)
	reg.AddToGroup(speed, gid)
	reg.AddToGroup(label, gid)

	reg.UpdateString(label, "running")

	// The string member does not fit next to speed under a 20 byte
	// ceiling; it is deferred, not truncated.
	eng.Sync()
	require.Len(t, cloud.Batches(), 1)
	assert.Equal(t, `{"speed":0}`, cloud.Batches()[0])

	// Once there is room, the deferred member publishes.
	clk.Advance(1000)
	eng.Sync()
	require.Len(t, cloud.Batches(), 2)
	assert.Equal(t, `{"label":"running"}`, cloud.Batches()[1])
}
