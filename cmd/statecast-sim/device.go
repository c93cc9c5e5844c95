package main

import (
	"fmt"
	"time"

	"github.com/statecast/statecast-go/pkg/log"
	"github.com/statecast/statecast-go/pkg/metrics"
	"github.com/statecast/statecast-go/pkg/notify"
	"github.com/statecast/statecast-go/pkg/props"
)

// Cloud is the combined collaborator surface the simulator publishes to.
type Cloud interface {
	props.StateSyncer
	notify.Publisher
}

// Device wires the two registries and engines from a device definition
// and keeps the key-to-handle maps the interactive loop works with.
type Device struct {
	cfg   DeviceConfig
	cloud Cloud

	Props  *props.Registry
	Notify *notify.Registry

	propsEngine  *props.Engine
	notifyEngine *notify.Engine

	propIDs map[string]props.PropID
	noteIDs map[string]notify.NoteID
}

// DeviceOptions carries the runtime knobs not part of the YAML
// definition.
type DeviceOptions struct {
	DeviceID   string
	PropsTick  time.Duration
	NotifyTick time.Duration
	Logger     log.Logger
	Metrics    metrics.Collector
}

// NewDevice registers everything the definition names and builds both
// engines.
func NewDevice(cfg DeviceConfig, cloud Cloud, opts DeviceOptions) (*Device, error) {
	d := &Device{
		cfg:     cfg,
		cloud:   cloud,
		Props:   props.NewRegistry(props.DefaultConfig()),
		Notify:  notify.NewRegistry(notify.DefaultConfig()),
		propIDs: make(map[string]props.PropID),
		noteIDs: make(map[string]notify.NoteID),
	}

	groupIDs := make(map[string]props.GroupID, len(cfg.Groups))
	for _, g := range cfg.Groups {
		gid, err := d.Props.CreateGroup(g.PeriodMs, g.OnlyIfChanged)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Name, err)
		}
		groupIDs[g.Name] = gid
	}

	for _, p := range cfg.Properties {
		var (
			id  props.PropID
			err error
		)
		if p.Type == "string" {
			id, err = d.Props.CreateString(p.Key, p.MaxLength)
		} else {
			id, err = d.Props.Create(p.Key, p.Scale, p.Decimals, p.Signed)
		}
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Key, err)
		}
		if p.DebounceMs > 0 {
			d.Props.SetDebounceDelay(id, p.DebounceMs)
		}
		for _, g := range p.Groups {
			if !d.Props.AddToGroup(id, groupIDs[g]) {
				return nil, fmt.Errorf("property %q: cannot join group %q", p.Key, g)
			}
		}
		d.propIDs[p.Key] = id
	}

	for _, n := range cfg.Notifications {
		var (
			id  notify.NoteID
			err error
		)
		if len(n.ValueMap) > 0 {
			id, err = d.Notify.CreateMapped(n.Key, n.Event, n.Template, n.Scale, n.Decimals, n.Signed, n.ValueMap)
		} else {
			id, err = d.Notify.Create(n.Key, n.Event, n.Template, n.Scale, n.Decimals, n.Signed)
		}
		if err != nil {
			return nil, fmt.Errorf("notification %q: %w", n.Key, err)
		}
		d.noteIDs[n.Key] = id
	}

	d.propsEngine = props.NewEngine(d.Props, cloud, props.EngineConfig{
		TickInterval: opts.PropsTick,
		Logger:       opts.Logger,
		Metrics:      opts.Metrics,
		DeviceID:     opts.DeviceID,
	})
	d.notifyEngine = notify.NewEngine(d.Notify, cloud, notify.EngineConfig{
		TickInterval: opts.NotifyTick,
		Logger:       opts.Logger,
		Metrics:      opts.Metrics,
		DeviceID:     opts.DeviceID,
	})
	return d, nil
}

// Start launches both engines.
func (d *Device) Start() error {
	if err := d.propsEngine.Start(); err != nil {
		return err
	}
	if err := d.notifyEngine.Start(); err != nil {
		d.propsEngine.Stop()
		return err
	}
	return nil
}

// Stop halts both engines.
func (d *Device) Stop() {
	d.notifyEngine.Stop()
	d.propsEngine.Stop()
}

// Sync runs one property scheduler cycle immediately.
func (d *Device) Sync() {
	d.propsEngine.Sync()
}

// Process runs one notification sweep immediately.
func (d *Device) Process() {
	d.notifyEngine.Process()
}

// PropID resolves a property key to its handle.
func (d *Device) PropID(key string) (props.PropID, bool) {
	id, ok := d.propIDs[key]
	return id, ok
}

// NoteID resolves a notification key to its handle.
func (d *Device) NoteID(key string) (notify.NoteID, bool) {
	id, ok := d.noteIDs[key]
	return id, ok
}
