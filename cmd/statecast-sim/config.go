package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeviceConfig is a YAML device definition: the properties, groups and
// notifications the simulator registers at startup.
type DeviceConfig struct {
	Device struct {
		// ID is the device identity. Auto-generated when empty.
		ID string `yaml:"id"`

		// Name is a display name for the banner.
		Name string `yaml:"name"`
	} `yaml:"device"`

	Properties    []PropertyConfig     `yaml:"properties"`
	Groups        []GroupConfig        `yaml:"groups"`
	Notifications []NotificationConfig `yaml:"notifications"`
}

// PropertyConfig defines one registered property.
type PropertyConfig struct {
	Key string `yaml:"key"`

	// Type is "int" (default), "decimal" or "string".
	Type string `yaml:"type"`

	// Scale and Decimals apply to decimal properties.
	Scale    uint16 `yaml:"scale"`
	Decimals uint8  `yaml:"decimals"`

	// Signed applies to int properties.
	Signed bool `yaml:"signed"`

	// MaxLength applies to string properties.
	MaxLength int `yaml:"maxLength"`

	// DebounceMs is the quiet period before a change is recognised.
	DebounceMs uint32 `yaml:"debounceMs"`

	// Groups lists the publication groups this property belongs to.
	Groups []string `yaml:"groups"`
}

// GroupConfig defines one publication group.
type GroupConfig struct {
	Name          string `yaml:"name"`
	PeriodMs      uint32 `yaml:"periodMs"`
	OnlyIfChanged bool   `yaml:"onlyIfChanged"`
}

// NotificationConfig defines one registered notification.
type NotificationConfig struct {
	Key string `yaml:"key"`

	// Event is the publish subject. Defaults to the key.
	Event string `yaml:"event"`

	// Template interpolates key, level and rendered value, in that
	// order.
	Template string `yaml:"template"`

	Scale    uint16 `yaml:"scale"`
	Decimals uint8  `yaml:"decimals"`
	Signed   bool   `yaml:"signed"`

	// ValueMap renders in-range values as the mapped strings.
	ValueMap []string `yaml:"valueMap"`
}

// DefaultDeviceConfig is the built-in definition used when no config
// file is given: a small vehicle-style device exercising every value
// kind.
func DefaultDeviceConfig() DeviceConfig {
	var cfg DeviceConfig
	cfg.Device.Name = "statecast demo device"
	cfg.Properties = []PropertyConfig{
		{Key: "speed", Type: "int", Scale: 1, DebounceMs: 200, Groups: []string{"fast"}},
		{Key: "temp", Type: "decimal", Scale: 100, Decimals: 2, Signed: true, Groups: []string{"slow"}},
		{Key: "label", Type: "string", MaxLength: 32, Groups: []string{"slow"}},
	}
	cfg.Groups = []GroupConfig{
		{Name: "fast", PeriodMs: 1000, OnlyIfChanged: true},
		{Name: "slow", PeriodMs: 5000, OnlyIfChanged: false},
	}
	cfg.Notifications = []NotificationConfig{
		{Key: "over", Event: "device/over", Template: "%s:%u:%s", Scale: 1},
		{Key: "state", Event: "device/state", Template: "%s level %u value %s",
			Scale: 1, ValueMap: []string{"ok", "warn", "alarm"}},
	}
	return cfg
}

// LoadDeviceConfig reads and validates a YAML device definition.
func LoadDeviceConfig(path string) (DeviceConfig, error) {
	var cfg DeviceConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross references and fills per-entry defaults.
func (c *DeviceConfig) Validate() error {
	groups := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		if g.Name == "" {
			return fmt.Errorf("group without a name")
		}
		if groups[g.Name] {
			return fmt.Errorf("duplicate group %q", g.Name)
		}
		groups[g.Name] = true
	}

	for i := range c.Properties {
		p := &c.Properties[i]
		if p.Key == "" {
			return fmt.Errorf("property without a key")
		}
		if p.Type == "" {
			p.Type = "int"
		}
		switch p.Type {
		case "int":
			p.Scale = 1
		case "decimal":
			if p.Scale <= 1 {
				return fmt.Errorf("property %q: decimal type needs a scale above 1", p.Key)
			}
		case "string":
			if p.MaxLength <= 0 {
				p.MaxLength = 32
			}
		default:
			return fmt.Errorf("property %q: unknown type %q", p.Key, p.Type)
		}
		for _, g := range p.Groups {
			if !groups[g] {
				return fmt.Errorf("property %q: unknown group %q", p.Key, g)
			}
		}
	}

	for i := range c.Notifications {
		n := &c.Notifications[i]
		if n.Key == "" {
			return fmt.Errorf("notification without a key")
		}
		if n.Event == "" {
			n.Event = n.Key
		}
		if n.Template == "" {
			n.Template = "%s:%u:%s"
		}
		if n.Scale == 0 {
			n.Scale = 1
		}
	}
	return nil
}
