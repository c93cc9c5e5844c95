package props

import (
	"errors"
	"sync"

	"github.com/statecast/statecast-go/pkg/clock"
	"github.com/statecast/statecast-go/pkg/wire"
)

// Registry errors.
var (
	ErrRegistryFull   = errors.New("property registry full")
	ErrDuplicateKey   = errors.New("property key already registered")
	ErrKeyTooLong     = errors.New("property key too long")
	ErrInvalidLength  = errors.New("invalid string value length")
	ErrGroupTableFull = errors.New("property group table full")
)

// Default registry limits.
const (
	// DefaultMaxProperties is the default property capacity.
	DefaultMaxProperties = 64

	// DefaultMaxGroups is the default group-table capacity.
	DefaultMaxGroups = 16

	// DefaultMaxKeyLength is the default maximum property key length.
	DefaultMaxKeyLength = 32
)

// Config holds property registry configuration.
type Config struct {
	// MaxProperties is the registry capacity. Registration fails once
	// reached; properties are never removed.
	MaxProperties int

	// MaxGroups is the group-table capacity.
	MaxGroups int

	// MaxKeyLength is the maximum length of a property key in bytes.
	MaxKeyLength int

	// DefaultValue is the initial value of newly created numeric
	// properties.
	DefaultValue int32

	// DefaultChanged marks newly created properties as changed, so each
	// is published at least once even if never updated.
	DefaultChanged bool

	// Clock supplies the wrapping millisecond counter used for debounce
	// and group periods. Defaults to clock.System().
	Clock clock.Clock
}

// DefaultConfig returns the default registry configuration.
func DefaultConfig() Config {
	return Config{
		MaxProperties:  DefaultMaxProperties,
		MaxGroups:      DefaultMaxGroups,
		MaxKeyLength:   DefaultMaxKeyLength,
		DefaultValue:   0,
		DefaultChanged: true,
	}
}

// PropID is an opaque 1-based property handle. The zero value is invalid.
type PropID int

// GroupID is an opaque 1-based group handle. The zero value is invalid.
type GroupID int

// prop is one registry slot.
type prop struct {
	key      string
	kind     wire.Kind
	signed   bool
	scale    uint16
	decimals uint8

	setValue   int32
	lastPub    int32
	setStr     string
	lastPubStr string
	maxStrLen  int

	changed  bool
	disabled bool

	// staged marks inclusion in the cycle currently being published;
	// stagedVal/stagedStr hold the value snapshot taken at staging time,
	// committed as published only when the publish succeeds.
	staged    bool
	stagedVal int32
	stagedStr string

	debouncing      bool
	latestSetMs     uint32
	debounceDelayMs uint32
}

// value returns the wire representation of the current set value.
func (p *prop) value() wire.Value {
	switch p.kind {
	case wire.KindString:
		return wire.String(p.setStr)
	case wire.KindDecimal:
		return wire.Decimal(p.setValue, p.scale, p.decimals)
	default:
		return wire.Int(p.setValue, p.signed)
	}
}

// publishedEqualsSet reports whether the current set value matches the
// last published one.
func (p *prop) publishedEqualsSet() bool {
	if p.kind == wire.KindString {
		return p.setStr == p.lastPubStr
	}
	return p.setValue == p.lastPub
}

// snapshotStaged captures the current set value at staging time. The
// snapshot becomes the published value via commitStaged on success, so a
// value updated between staging and confirmation still differs from the
// published one and is caught on its next debounce cycle.
func (p *prop) snapshotStaged() {
	p.staged = true
	p.stagedVal = p.setValue
	p.stagedStr = p.setStr
}

// commitStaged records the staged snapshot as published.
func (p *prop) commitStaged() {
	if p.kind == wire.KindString {
		p.lastPubStr = p.stagedStr
		return
	}
	p.lastPub = p.stagedVal
}

// Registry is a bounded table of named properties plus their publication
// groups. All methods are safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	cfg    Config
	clk    clock.Clock
	props  []*prop
	byKey  map[string]int
	groups []*group

	defaultValue   int32
	defaultChanged bool

	// primed is set once group timestamps have been aligned to the
	// engine's first cycle.
	primed bool
}

// NewRegistry creates a property registry. Zero or negative limits fall
// back to the package defaults; a nil clock falls back to clock.System().
func NewRegistry(cfg Config) *Registry {
	if cfg.MaxProperties <= 0 {
		cfg.MaxProperties = DefaultMaxProperties
	}
	if cfg.MaxGroups <= 0 {
		cfg.MaxGroups = DefaultMaxGroups
	}
	if cfg.MaxKeyLength <= 0 {
		cfg.MaxKeyLength = DefaultMaxKeyLength
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	return &Registry{
		cfg:            cfg,
		clk:            cfg.Clock,
		byKey:          make(map[string]int),
		defaultValue:   cfg.DefaultValue,
		defaultChanged: cfg.DefaultChanged,
	}
}

// SetDefaults changes the initial value and changed flag applied to
// properties created afterwards.
func (r *Registry) SetDefaults(value int32, changed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultValue = value
	r.defaultChanged = changed
}

// checkNewKey validates capacity and key constraints for a registration.
// Caller must hold r.mu.
func (r *Registry) checkNewKey(name string) error {
	if len(r.props) >= r.cfg.MaxProperties {
		return ErrRegistryFull
	}
	if len(name) > r.cfg.MaxKeyLength {
		return ErrKeyTooLong
	}
	if _, exists := r.byKey[name]; exists {
		return ErrDuplicateKey
	}
	return nil
}

// Create registers a numeric property and returns its handle. A scale of 1
// makes a plain integer (signed or unsigned per the sign flag); any other
// scale makes a fixed-point decimal rendered with the given number of
// fractional digits.
func (r *Registry) Create(name string, scale uint16, decimals uint8, signed bool) (PropID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkNewKey(name); err != nil {
		return 0, err
	}

	kind := wire.KindInt
	if scale != 1 {
		kind = wire.KindDecimal
	}
	p := &prop{
		key:      name,
		kind:     kind,
		signed:   signed,
		scale:    scale,
		decimals: decimals,
		setValue: r.defaultValue,
		lastPub:  r.defaultValue,
		changed:  r.defaultChanged,
	}
	r.props = append(r.props, p)
	r.byKey[name] = len(r.props) - 1
	return PropID(len(r.props)), nil
}

// CreateString registers a string property whose values are truncated to
// maxLength bytes on update.
func (r *Registry) CreateString(name string, maxLength int) (PropID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkNewKey(name); err != nil {
		return 0, err
	}
	if maxLength <= 0 {
		return 0, ErrInvalidLength
	}

	p := &prop{
		key:       name,
		kind:      wire.KindString,
		scale:     1,
		maxStrLen: maxLength,
		changed:   r.defaultChanged,
	}
	r.props = append(r.props, p)
	r.byKey[name] = len(r.props) - 1
	return PropID(len(r.props)), nil
}

// lookup resolves a handle to its slot. Caller must hold r.mu.
func (r *Registry) lookup(id PropID) *prop {
	idx := int(id) - 1
	if idx < 0 || idx >= len(r.props) {
		return nil
	}
	return r.props[idx]
}

// Update sets a numeric property's value. It returns true only when the
// stored value actually changed; equal-value updates are no-ops that do
// not restart the debounce window. Updating an invalid handle or a string
// property returns false.
func (r *Registry) Update(id PropID, newValue int32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.lookup(id)
	if p == nil || p.kind == wire.KindString {
		return false
	}
	if p.setValue == newValue {
		return false
	}
	p.setValue = newValue
	p.debouncing = true
	p.latestSetMs = r.clk.NowMs()
	return true
}

// UpdateString sets a string property's value, truncated to the
// creation-time maximum length. Semantics match Update.
func (r *Registry) UpdateString(id PropID, newValue string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.lookup(id)
	if p == nil || p.kind != wire.KindString {
		return false
	}
	if p.setStr == newValue {
		return false
	}
	if len(newValue) > p.maxStrLen {
		newValue = newValue[:p.maxStrLen]
	}
	p.setStr = newValue
	p.debouncing = true
	p.latestSetMs = r.clk.NowMs()
	return true
}

// SetDisabled excludes or re-includes a property from publication.
func (r *Registry) SetDisabled(id PropID, disabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.lookup(id)
	if p == nil {
		return false
	}
	p.disabled = disabled
	return true
}

// IsDisabled reports whether a property is excluded from publication.
// Invalid handles report false.
func (r *Registry) IsDisabled(id PropID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.lookup(id)
	return p != nil && p.disabled
}

// SetDebounceDelay sets the quiet period a changed value must survive
// before it is recognised. Zero (the default) recognises changes on the
// next group evaluation.
func (r *Registry) SetDebounceDelay(id PropID, delayMs uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.lookup(id)
	if p == nil {
		return false
	}
	p.debounceDelayMs = delayMs
	return true
}

// Key returns a property's key, or "" for an invalid handle.
func (r *Registry) Key(id PropID) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.lookup(id)
	if p == nil {
		return ""
	}
	return p.key
}

// Value returns a numeric property's current set value, or -1 for an
// invalid handle.
func (r *Registry) Value(id PropID) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.lookup(id)
	if p == nil {
		return -1
	}
	return p.setValue
}

// StringValue returns a string property's current value. The second
// return is false for invalid handles and non-string properties.
func (r *Registry) StringValue(id PropID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.lookup(id)
	if p == nil || p.kind != wire.KindString {
		return "", false
	}
	return p.setStr, true
}

// Scale returns a property's scale factor, or 0 for an invalid handle.
func (r *Registry) Scale(id PropID) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.lookup(id)
	if p == nil {
		return 0
	}
	return p.scale
}

// Decimals returns a property's fractional digit count, or 0 for an
// invalid handle.
func (r *Registry) Decimals(id PropID) uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.lookup(id)
	if p == nil {
		return 0
	}
	return p.decimals
}

// IsSigned reports whether a property renders as a signed integer.
// Invalid handles report false.
func (r *Registry) IsSigned(id PropID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.lookup(id)
	return p != nil && p.signed
}

// Count returns the number of registered properties.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.props)
}
