package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/statecast/statecast-go/pkg/log"
	"github.com/statecast/statecast-go/pkg/metrics"
)

// Engine errors.
var (
	ErrAlreadyStarted = errors.New("notification engine already started")
)

// DefaultTickInterval is the default sweep cadence.
const DefaultTickInterval = 1000 * time.Millisecond

// Publisher is the cloud collaborator consumed by the notification
// engine. Implementations deliver one event message per call and report
// success.
type Publisher interface {
	// Publish delivers a single rendered notification. It returns false
	// when delivery failed; the engine then retries the notification on
	// the next sweep.
	Publish(event, message string) bool
}

// EngineConfig holds notification engine configuration.
type EngineConfig struct {
	// TickInterval is the sweep cadence. Defaults to DefaultTickInterval.
	TickInterval time.Duration

	// Logger receives telemetry events. Defaults to log.NoopLogger.
	Logger log.Logger

	// Metrics receives instrumentation. Defaults to metrics.NewNop().
	Metrics metrics.Collector

	// DeviceID tags logged events, when known.
	DeviceID string
}

// Engine periodically sweeps the notification registry and publishes
// each changed notification individually. Create it with NewEngine, then
// either run it in the background with Start/Stop or drive it
// deterministically by calling Process.
type Engine struct {
	reg     *Registry
	cloud   Publisher
	logger  log.Logger
	metrics metrics.Collector
	cfg     EngineConfig

	// processMu serialises Process so background ticks and manual calls
	// cannot interleave.
	processMu sync.Mutex

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewEngine creates a notification engine over the given registry and
// cloud collaborator.
func NewEngine(reg *Registry, cloud Publisher, cfg EngineConfig) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NoopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNop()
	}
	return &Engine{
		reg:     reg,
		cloud:   cloud,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		cfg:     cfg,
	}
}

// Start begins background sweeping. It returns ErrAlreadyStarted when
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
		Engine:    log.EngineNotify,
		Kind:      log.KindLifecycle,
		Detail:    "started",
	})
	return nil
}

// Stop halts background sweeping and waits for the current sweep to
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
		Engine:    log.EngineNotify,
		Kind:      log.KindLifecycle,
		Detail:    "stopped",
	})
}

// loop runs the sweep cadence.
func (e *Engine) loop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.Process()
		}
	}
}

// Process performs one sweep: render every changed notification, publish
// each individually, and clear the changed flag of those delivered.
// Publishes happen outside the registry lock, so a slow collaborator
// never blocks concurrent Update calls. Exported so tests and simulators
// can drive the engine without the background goroutine.
func (e *Engine) Process() {
	e.processMu.Lock()
	defer e.processMu.Unlock()

	start := time.Now()
	defer func() {
		e.metrics.CycleDuration(log.EngineNotify.String(), time.Since(start))
	}()

	for _, p := range e.reg.stage() {
		success := e.cloud.Publish(p.event, p.message)
		e.reg.confirm(p, success)

		e.metrics.EventPublish(p.event, success)
		e.logger.Log(log.Event{
			Timestamp: time.Now(),
			DeviceID:  e.cfg.DeviceID,
			Engine:    log.EngineNotify,
			Kind:      log.KindEventPublish,
			Success:   success,
			EventName: p.event,
			Message:   p.message,
		})
	}
}

// pending is one rendered notification awaiting delivery, snapshotting
// the state it was rendered from.
type pending struct {
	idx     int
	event   string
	message string
	level   uint8
	value   int32
}

// stage renders every changed notification under the registry lock.
func (r *Registry) stage() []pending {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []pending
	for i, n := range r.notes {
		if !n.changed {
			continue
		}
		out = append(out, pending{
			idx:     i,
			event:   n.event,
			message: n.message(),
			level:   n.level,
			value:   n.value,
		})
	}
	return out
}

// confirm finalises one publish attempt. The changed flag is cleared
// only on success, and only when the notification still holds the state
// the message was rendered from, so an update racing the publish is not
// lost.
func (r *Registry) confirm(p pending, success bool) {
	if !success {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.notes[p.idx]
	if n.level == p.level && n.value == p.value {
		n.changed = false
	}
}
