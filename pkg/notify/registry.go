package notify

import (
	"errors"
	"sync"

	"github.com/statecast/statecast-go/pkg/wire"
)

// Registry errors.
var (
	ErrRegistryFull    = errors.New("notification registry full")
	ErrDuplicateKey    = errors.New("notification key already registered")
	ErrKeyTooLong      = errors.New("notification key too long")
	ErrEventTooLong    = errors.New("notification event name too long")
	ErrTemplateTooLong = errors.New("notification template too long")
)

// Default registry limits.
const (
	// DefaultMaxNotifications is the default registry capacity.
	DefaultMaxNotifications = 32

	// DefaultMaxKeyLength is the default maximum key length.
	DefaultMaxKeyLength = 64

	// DefaultMaxEventLength is the default maximum event name length.
	DefaultMaxEventLength = 64

	// DefaultMaxTemplateLength is the default maximum template length.
	DefaultMaxTemplateLength = 128
)

// Config holds notification registry configuration.
type Config struct {
	// MaxNotifications is the registry capacity. Registration fails once
	// reached; notifications are never removed.
	MaxNotifications int

	// MaxKeyLength is the maximum notification key length in bytes.
	MaxKeyLength int

	// MaxEventLength is the maximum event name length in bytes.
	MaxEventLength int

	// MaxTemplateLength is the maximum message template length in bytes.
	MaxTemplateLength int
}

// DefaultConfig returns the default registry configuration.
func DefaultConfig() Config {
	return Config{
		MaxNotifications:  DefaultMaxNotifications,
		MaxKeyLength:      DefaultMaxKeyLength,
		MaxEventLength:    DefaultMaxEventLength,
		MaxTemplateLength: DefaultMaxTemplateLength,
	}
}

// NoteID is an opaque 1-based notification handle. The zero value is
// invalid.
type NoteID int

// note is one registry slot. Notifications start at value -1, level 0
// and unchanged, so nothing is published before the first level change.
type note struct {
	key      string
	event    string
	template string

	kind     wire.Kind
	signed   bool
	scale    uint16
	decimals uint8
	valueMap []string

	value   int32
	level   uint8
	changed bool
}

// wireValue returns the wire representation of the current value.
func (n *note) wireValue() wire.Value {
	if n.kind == wire.KindMapped {
		return wire.Mapped(n.value, n.signed, n.scale, n.decimals, n.valueMap)
	}
	if n.kind == wire.KindDecimal {
		return wire.Decimal(n.value, n.scale, n.decimals)
	}
	return wire.Int(n.value, n.signed)
}

// message renders the notification into its publishable form.
func (n *note) message() string {
	return wire.FormatMessage(n.template, n.key, n.level, n.wireValue().Render())
}

// Registry is a bounded table of named notifications. All methods are
// safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	cfg   Config
	notes []*note
	byKey map[string]int
}

// NewRegistry creates a notification registry. Zero or negative limits
// fall back to the package defaults.
func NewRegistry(cfg Config) *Registry {
	if cfg.MaxNotifications <= 0 {
		cfg.MaxNotifications = DefaultMaxNotifications
	}
	if cfg.MaxKeyLength <= 0 {
		cfg.MaxKeyLength = DefaultMaxKeyLength
	}
	if cfg.MaxEventLength <= 0 {
		cfg.MaxEventLength = DefaultMaxEventLength
	}
	if cfg.MaxTemplateLength <= 0 {
		cfg.MaxTemplateLength = DefaultMaxTemplateLength
	}
	return &Registry{
		cfg:   cfg,
		byKey: make(map[string]int),
	}
}

// checkNew validates capacity and name constraints for a registration.
// Caller must hold r.mu.
func (r *Registry) checkNew(name, event, template string) error {
	if len(r.notes) >= r.cfg.MaxNotifications {
		return ErrRegistryFull
	}
	if len(name) > r.cfg.MaxKeyLength {
		return ErrKeyTooLong
	}
	if len(event) > r.cfg.MaxEventLength {
		return ErrEventTooLong
	}
	if len(template) > r.cfg.MaxTemplateLength {
		return ErrTemplateTooLong
	}
	if _, exists := r.byKey[name]; exists {
		return ErrDuplicateKey
	}
	return nil
}

// register appends a validated slot. Caller must hold r.mu.
func (r *Registry) register(n *note) NoteID {
	n.value = -1
	r.notes = append(r.notes, n)
	r.byKey[n.key] = len(r.notes) - 1
	return NoteID(len(r.notes))
}

// Create registers a numeric notification and returns its handle. The
// event name is the cloud publish subject; the template receives key,
// level and rendered value, in that order. A scale of 1 makes a plain
// integer, any other scale a fixed-point decimal.
func (r *Registry) Create(name, event, template string, scale uint16, decimals uint8, signed bool) (NoteID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkNew(name, event, template); err != nil {
		return 0, err
	}

	kind := wire.KindInt
	if scale != 1 {
		kind = wire.KindDecimal
	}
	return r.register(&note{
		key:      name,
		event:    event,
		template: template,
		kind:     kind,
		signed:   signed,
		scale:    scale,
		decimals: decimals,
	}), nil
}

// CreateMapped registers an enumerated notification whose value renders
// through the given value map when in range, falling back to the numeric
// rendering described by scale and decimals otherwise. An empty map entry
// counts as unmapped and renders as a plain integer.
func (r *Registry) CreateMapped(name, event, template string, scale uint16, decimals uint8, signed bool, valueMap []string) (NoteID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkNew(name, event, template); err != nil {
		return 0, err
	}

	vm := make([]string, len(valueMap))
	copy(vm, valueMap)
	return r.register(&note{
		key:      name,
		event:    event,
		template: template,
		kind:     wire.KindMapped,
		signed:   signed,
		scale:    scale,
		decimals: decimals,
		valueMap: vm,
	}), nil
}

// lookup resolves a handle to its slot. Caller must hold r.mu.
func (r *Registry) lookup(id NoteID) *note {
	idx := int(id) - 1
	if idx < 0 || idx >= len(r.notes) {
		return nil
	}
	return r.notes[idx]
}

// Update stores a notification's value and level and marks it for
// publication, but only when the level differs from the stored one. An
// equal-level update leaves the stored state untouched, including the
// value. It returns true for any valid handle, false otherwise.
func (r *Registry) Update(id NoteID, newValue int32, newLevel uint8) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.lookup(id)
	if n == nil {
		return false
	}
	if n.level != newLevel {
		n.value = newValue
		n.level = newLevel
		n.changed = true
	}
	return true
}

// Key returns a notification's key, or "" for an invalid handle.
func (r *Registry) Key(id NoteID) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.lookup(id)
	if n == nil {
		return ""
	}
	return n.key
}

// EventName returns a notification's cloud event name, or "" for an
// invalid handle.
func (r *Registry) EventName(id NoteID) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.lookup(id)
	if n == nil {
		return ""
	}
	return n.event
}

// Value returns a notification's current value, or -1 for an invalid
// handle.
func (r *Registry) Value(id NoteID) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.lookup(id)
	if n == nil {
		return -1
	}
	return n.value
}

// Level returns a notification's current level, or -1 for an invalid
// handle.
func (r *Registry) Level(id NoteID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.lookup(id)
	if n == nil {
		return -1
	}
	return int(n.level)
}

// Count returns the number of registered notifications.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}
