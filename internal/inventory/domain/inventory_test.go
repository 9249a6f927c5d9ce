package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryIndexFirstWins(t *testing.T) {
	inv := Inventory{Devices: []Device{
		{DeviceID: "D1", DeviceType: "Fan", Location: "A"},
		{DeviceID: "D2", DeviceType: "Heater", Location: "B"},
		{DeviceID: "D1", DeviceType: "Pump", Location: "C"},
	}}

	index := inv.Index()
	require.Len(t, index, 2)
	assert.Equal(t, "Fan", index["D1"].DeviceType)
	assert.Equal(t, []string{"D1", "D2"}, inv.IDs())
	assert.Equal(t, 3, inv.Len())
	assert.False(t, inv.Empty())
	assert.True(t, Inventory{}.Empty())
}

func TestDeviceValidate(t *testing.T) {
	assert.Error(t, Device{}.Validate())
	assert.NoError(t, Device{DeviceID: "D1"}.Validate())
}

func TestUsageForDeviceSortsByDate(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	log := UsageLog{Records: []UsageRecord{
		{DeviceID: "D1", Date: day(3), HoursUsed: 3},
		{DeviceID: "D2", Date: day(1), HoursUsed: 9},
		{DeviceID: "D1", Date: day(1), HoursUsed: 1},
	}}

	got := log.ForDevice("D1")
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].HoursUsed)
	assert.Equal(t, 3.0, got[1].HoursUsed)
	assert.Empty(t, log.ForDevice("missing"))
}

func TestNewComplaint(t *testing.T) {
	at := time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC)

	c, err := NewComplaint("  D1 ", "noisy", "ops", at)
	require.NoError(t, err)
	assert.Equal(t, "D1", c.DeviceID)
	require.NotNil(t, c.Datetime)
	assert.True(t, at.Equal(*c.Datetime))

	_, err = NewComplaint(" ", "noisy", "ops", at)
	assert.ErrorIs(t, err, ErrEmptyComplaintDevice)

	_, err = NewComplaint("D1", "noisy", "ops", time.Time{})
	assert.Error(t, err)
}
