package natspub

import (
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/statecast/statecast-go/pkg/notify"
	"github.com/statecast/statecast-go/pkg/props"
)

// Client errors.
var (
	ErrNoDeviceID = errors.New("natspub: device id required")
)

// Defaults.
const (
	// DefaultSubjectPrefix is the first token of every published subject.
	DefaultSubjectPrefix = "statecast"

	// DefaultFlushTimeout bounds how long a publish waits for the server
	// to acknowledge the flush.
	DefaultFlushTimeout = 2 * time.Second
)

// Config holds NATS publisher configuration.
type Config struct {
	// URL is the NATS server URL. Defaults to nats.DefaultURL. Ignored
	// by NewWithConn.
	URL string

	// DeviceID is the device subject token. Required.
	DeviceID string

	// SubjectPrefix is the leading subject token. Defaults to
	// DefaultSubjectPrefix.
	SubjectPrefix string

	// FlushTimeout bounds each publish's flush round trip. Defaults to
	// DefaultFlushTimeout.
	FlushTimeout time.Duration
}

// Client publishes device telemetry over NATS.
//
// State syncs go to "<prefix>.<device>.state", notification events to
// "<prefix>.<device>.event.<name>". Event names are mapped into valid
// subject tokens, so "engine/over" publishes under "event.engine.over".
type Client struct {
	nc      *nats.Conn
	ownConn bool
	cfg     Config

	stateSubject string
	eventPrefix  string
}

// Compile-time assertions that Client satisfies both engine contracts.
var (
	_ props.StateSyncer = (*Client)(nil)
	_ notify.Publisher  = (*Client)(nil)
)

// Connect dials NATS and returns a publisher for the configured device.
// Close releases the connection.
func Connect(cfg Config) (*Client, error) {
	if cfg.DeviceID == "" {
		return nil, ErrNoDeviceID
	}
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}

	nc, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	c := newClient(nc, cfg)
	c.ownConn = true
	return c, nil
}

// NewWithConn wraps an existing NATS connection. The caller keeps
// ownership of the connection; Close does not release it.
func NewWithConn(nc *nats.Conn, cfg Config) (*Client, error) {
	if cfg.DeviceID == "" {
		return nil, ErrNoDeviceID
	}
	return newClient(nc, cfg), nil
}

func newClient(nc *nats.Conn, cfg Config) *Client {
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = DefaultSubjectPrefix
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = DefaultFlushTimeout
	}

	device := subjectToken(cfg.DeviceID)
	return &Client{
		nc:           nc,
		cfg:          cfg,
		stateSubject: cfg.SubjectPrefix + "." + device + ".state",
		eventPrefix:  cfg.SubjectPrefix + "." + device + ".event.",
	}
}

// StateSubject returns the subject batched state syncs are published to.
func (c *Client) StateSubject() string {
	return c.stateSubject
}

// EventSubject returns the subject a given event name is published to.
func (c *Client) EventSubject(event string) string {
	return c.eventPrefix + subjectToken(event)
}

// SyncState publishes one batched state payload and reports delivery to
// the server.
func (c *Client) SyncState(payload []byte) bool {
	return c.publish(c.stateSubject, payload)
}

// Publish publishes one rendered notification message under its event
// subject and reports delivery to the server.
func (c *Client) Publish(event, message string) bool {
	return c.publish(c.EventSubject(event), []byte(message))
}

// publish sends and flushes, so delivery failures surface as a false
// return instead of sitting in the client buffer.
func (c *Client) publish(subject string, data []byte) bool {
	if err := c.nc.Publish(subject, data); err != nil {
		return false
	}
	return c.nc.FlushTimeout(c.cfg.FlushTimeout) == nil
}

// IsConnected reports whether the NATS connection is currently up.
func (c *Client) IsConnected() bool {
	return c.nc.IsConnected()
}

// Close releases the NATS connection when this client owns it.
func (c *Client) Close() {
	if c.ownConn {
		c.nc.Close()
	}
}

var tokenReplacer = strings.NewReplacer(
	"/", ".",
	" ", "_",
	"*", "_",
	">", "_",
)

// subjectToken maps an arbitrary name into valid NATS subject tokens.
// Slashes become token separators; whitespace and wildcards are
// replaced.
func subjectToken(name string) string {
	return tokenReplacer.Replace(name)
}
