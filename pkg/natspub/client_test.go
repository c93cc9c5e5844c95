package natspub

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startEmbeddedNATS runs an in-process NATS server on a random port and
// returns a connected client. Both are cleaned up with the test.
func startEmbeddedNATS(t *testing.T) *nats.Conn {
	t.Helper()

	opts := &server.Options{
		Host:  "127.0.0.1",
		Port:  -1,
		NoLog: true,
	}
	ns, err := server.NewServer(opts)
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("embedded NATS server not ready within timeout")
	}
	t.Cleanup(ns.Shutdown)

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	return nc
}

func TestSubjectLayout(t *testing.T) {
	nc := startEmbeddedNATS(t)

	c, err := NewWithConn(nc, Config{DeviceID: "dev-1"})
	require.NoError(t, err)

	assert.Equal(t, "statecast.dev-1.state", c.StateSubject())
	assert.Equal(t, "statecast.dev-1.event.engine.over", c.EventSubject("engine/over"))

	c, err = NewWithConn(nc, Config{DeviceID: "dev 2", SubjectPrefix: "fleet"})
	require.NoError(t, err)
	assert.Equal(t, "fleet.dev_2.state", c.StateSubject())
}

func TestDeviceIDRequired(t *testing.T) {
	nc := startEmbeddedNATS(t)

	_, err := NewWithConn(nc, Config{})
	require.ErrorIs(t, err, ErrNoDeviceID)
}

func TestSyncStateDelivers(t *testing.T) {
	nc := startEmbeddedNATS(t)

	c, err := NewWithConn(nc, Config{DeviceID: "dev-1"})
	require.NoError(t, err)

	sub, err := nc.SubscribeSync(c.StateSubject())
	require.NoError(t, err)

	require.True(t, c.SyncState([]byte(`{"speed":120}`)))

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, `{"speed":120}`, string(msg.Data))
}

func TestPublishDelivers(t *testing.T) {
	nc := startEmbeddedNATS(t)

	c, err := NewWithConn(nc, Config{DeviceID: "dev-1"})
	require.NoError(t, err)

	sub, err := nc.SubscribeSync(c.EventSubject("over"))
	require.NoError(t, err)

	require.True(t, c.Publish("over", "over:1:5"))

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "over:1:5", string(msg.Data))
}

func TestConnectivityTracksConnection(t *testing.T) {
	nc := startEmbeddedNATS(t)

	c, err := NewWithConn(nc, Config{DeviceID: "dev-1"})
	require.NoError(t, err)

	assert.True(t, c.IsConnected())
	nc.Close()
	assert.False(t, c.IsConnected())
	assert.False(t, c.SyncState([]byte(`{}`)))
	assert.False(t, c.Publish("over", "over:1:5"))
}
