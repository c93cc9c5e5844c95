package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statecast/statecast-go/internal/cloudtest"
)

func TestNewDeviceWiresDefinition(t *testing.T) {
	cfg := DefaultDeviceConfig()
	cloud := cloudtest.New()

	device, err := NewDevice(cfg, cloud, DeviceOptions{DeviceID: "test"})
	require.NoError(t, err)

	assert.Equal(t, len(cfg.Properties), device.Props.Count())
	assert.Equal(t, len(cfg.Groups), device.Props.GroupCount())
	assert.Equal(t, len(cfg.Notifications), device.Notify.Count())

	speed, ok := device.PropID("speed")
	require.True(t, ok)
	require.True(t, device.Props.Update(speed, 120))

	over, ok := device.NoteID("over")
	require.True(t, ok)
	require.True(t, device.Notify.Update(over, 5, 1))

	device.Sync()
	device.Process()

	batches := cloud.Batches()
	require.Len(t, batches, 1)
	assert.Contains(t, batches[0], `"speed":120`)

	events := cloud.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "device/over", events[0].Event)
	assert.Equal(t, "over:1:5", events[0].Message)
}

func TestNewDeviceRejectsDuplicateProperty(t *testing.T) {
	cfg := DeviceConfig{
		Properties: []PropertyConfig{
			{Key: "speed", Type: "int", Scale: 1},
			{Key: "speed", Type: "int", Scale: 1},
		},
	}
	require.NoError(t, cfg.Validate())

	_, err := NewDevice(cfg, cloudtest.New(), DeviceOptions{})
	require.Error(t, err)
}

func TestDeviceStartStop(t *testing.T) {
	device, err := NewDevice(DefaultDeviceConfig(), cloudtest.New(), DeviceOptions{})
	require.NoError(t, err)

	require.NoError(t, device.Start())
	require.Error(t, device.Start())
	device.Stop()
}
