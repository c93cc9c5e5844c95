package props

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/statecast/statecast-go/pkg/clock"
	"github.com/statecast/statecast-go/pkg/log"
	"github.com/statecast/statecast-go/pkg/metrics"
	"github.com/statecast/statecast-go/pkg/wire"
)

// Engine errors.
var (
	ErrAlreadyStarted = errors.New("property engine already started")
)

// DefaultTickInterval is the default scheduler cadence. Group periods are
// evaluated against it, so a group cannot fire more often than this.
const DefaultTickInterval = 100 * time.Millisecond

// StateSyncer is the cloud collaborator consumed by the property engine.
// Implementations send one batched payload per call and report success.
type StateSyncer interface {
	// SyncState publishes a flat JSON state object. It returns false when
	// delivery failed; the engine then retries the affected members on
	// their next due cycle.
	SyncState(payload []byte) bool

	// IsConnected gates the engine's whole cycle: when false, nothing is
	// evaluated or published.
	IsConnected() bool
}

// EngineConfig holds property engine configuration.
type EngineConfig struct {
	// TickInterval is the scheduler cadence. Defaults to
	// DefaultTickInterval.
	TickInterval time.Duration

	// PayloadLimit is the state-sync payload size ceiling in bytes.
	// Defaults to wire.DefaultPayloadLimit.
	PayloadLimit int

	// Logger receives telemetry events. Defaults to log.NoopLogger.
	Logger log.Logger

	// Metrics receives instrumentation. Defaults to metrics.NewNop().
	Metrics metrics.Collector

	// DeviceID tags logged events, when known.
	DeviceID string
}

// Engine periodically evaluates property groups and publishes one batched
// state sync per cycle. Create it with NewEngine, then either run it in
// the background with Start/Stop or drive it deterministically by calling
// Sync.
type Engine struct {
	reg     *Registry
	cloud   StateSyncer
	builder *wire.PayloadBuilder
	logger  log.Logger
	metrics metrics.Collector
	cfg     EngineConfig

	// firstRun forces every group due on the first cycle, producing an
	// initial full state sync. It latches off on the first successful
	// publish.
	firstRun bool

	// syncMu serialises Sync so background ticks and manual calls cannot
	// interleave on the shared payload builder.
	syncMu sync.Mutex

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewEngine creates a property engine over the given registry and cloud
// collaborator.
func NewEngine(reg *Registry, cloud StateSyncer, cfg EngineConfig) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.PayloadLimit <= 0 {
		cfg.PayloadLimit = wire.DefaultPayloadLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNop()
	}
	return &Engine{
		reg:      reg,
		cloud:    cloud,
		builder:  wire.NewPayloadBuilder(cfg.PayloadLimit),
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		cfg:      cfg,
		firstRun: true,
	}
}

// Start begins background scheduling. It returns ErrAlreadyStarted when
// the engine is already running.
func (e *Engine) Start() error {
	if e.running.Swap(true) {
		return ErrAlreadyStarted
	}

	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.wg.Add(1)
	go e.loop()

	e.logger.Log(log.Event{
		Timestamp: time.Now(),
		DeviceID:  e.cfg.DeviceID,
		Engine:    log.EngineProps,
		Kind:      log.KindLifecycle,
		Detail:    "started",
	})
	return nil
}

// Stop halts background scheduling and waits for the current cycle to
// finish. It is safe to call Stop on a never-started engine.
func (e *Engine) Stop() {
	if !e.running.Swap(false) {
		return
	}

	e.cancel()
	e.wg.Wait()

	e.logger.Log(log.Event{
		Timestamp: time.Now(),
		DeviceID:  e.cfg.DeviceID,
		Engine:    log.EngineProps,
		Kind:      log.KindLifecycle,
		Detail:    "stopped",
	})
}

// loop runs the drift-free scheduler cadence.
func (e *Engine) loop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.Sync()
		}
	}
}

// Sync performs one scheduler cycle: skip when disconnected, evaluate due
// groups, stage changed members into one shared payload, publish it, and
// record the outcome. Exported so tests and simulators can drive the
// engine without the background goroutine.
func (e *Engine) Sync() {
	e.syncMu.Lock()
	defer e.syncMu.Unlock()

	if !e.cloud.IsConnected() {
		return
	}

	start := time.Now()
	defer func() {
		e.metrics.CycleDuration(log.EngineProps.String(), time.Since(start))
	}()

	e.builder.Reset()
	overflowed := e.reg.stage(e.builder, e.firstRun)
	for _, key := range overflowed {
		e.logger.Log(log.Event{
			Timestamp: time.Now(),
			DeviceID:  e.cfg.DeviceID,
			Engine:    log.EngineProps,
			Kind:      log.KindError,
			Detail:    "payload ceiling reached, deferred " + key,
		})
	}

	payload := e.builder.Bytes()
	if payload == nil {
		return
	}

	success := e.cloud.SyncState(payload)
	e.reg.confirm(success)
	if success {
		e.firstRun = false
	}

	e.metrics.StateSync(e.builder.Members(), len(payload), success)
	e.logger.Log(log.Event{
		Timestamp: time.Now(),
		DeviceID:  e.cfg.DeviceID,
		Engine:    log.EngineProps,
		Kind:      log.KindStateSync,
		Success:   success,
		Members:   e.builder.Members(),
		Payload:   payload,
	})
}

// stage evaluates due groups at the current clock reading and appends
// publishable members to b, marking them staged and snapshotting their
// published values. It returns the keys of members deferred because the
// payload ceiling was reached.
func (r *Registry) stage(b *wire.PayloadBuilder, firstRun bool) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clk.NowMs()

	// Treat the engine's first evaluation as time zero for every group.
	if !r.primed {
		for _, g := range r.groups {
			g.lastFiredMs = now
		}
		r.primed = true
	}

	var overflowed []string
	for _, g := range r.groups {
		if !clock.Elapsed(now, g.lastFiredMs, g.periodMs) && !firstRun {
			continue
		}
		g.lastFiredMs = now

		for _, idx := range g.members {
			p := r.props[idx]

			if p.debouncing && clock.Elapsed(now, p.latestSetMs, p.debounceDelayMs) {
				p.debouncing = false
				p.changed = true
			}

			if p.disabled || p.staged {
				continue
			}
			if (p.changed && !p.publishedEqualsSet()) || !g.onlyIfChanged || firstRun {
				if err := b.Append(p.key, p.value()); err != nil {
					// Leave the member changed so it retries once the
					// payload has room again.
					overflowed = append(overflowed, p.key)
					continue
				}
				p.snapshotStaged()
			}
		}
	}
	return overflowed
}

// confirm finalises a publish attempt: staged marks are always cleared,
// changed flags only on success.
func (r *Registry) confirm(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.props {
		if p.staged {
			if success {
				p.changed = false
				p.commitStaged()
			}
			p.staged = false
		}
	}
}
