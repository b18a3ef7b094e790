package discovery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-hostmon/internal/metric"
)

func testBuilder() *Builder {
	return NewBuilder(mqtt.Topics{Prefix: "rpi-MQTT-monitor", Host: "pi4"}, "Raspberry Pi", "Raspberry Pi 4 Model B Rev 1.4\n")
}

func TestBuilder_Payload(t *testing.T) {
	reg := metric.NewRegistry(config.MetricsConfig{CPULoad: true})
	d, err := reg.Describe(metric.CPULoad)
	require.NoError(t, err)

	b := testBuilder()
	assert.Equal(t, "homeassistant/sensor/rpi-MQTT-monitor/pi4_cpu_load/config", b.Topic(d))

	data, err := b.Encode(d)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "rpi-MQTT-monitor/pi4/cpu_load", got["state_topic"])
	assert.Equal(t, "mdi:speedometer", got["icon"])
	assert.Equal(t, "pi4 CPU Usage", got["name"])
	assert.Equal(t, "pi4_cpu_load", got["unique_id"])
	assert.Equal(t, "%", got["unit_of_measurement"])

	device, ok := got["device"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"pi4"}, device["identifiers"])
	assert.Equal(t, "Raspberry Pi", device["manufacturer"])
	assert.Equal(t, "Raspberry Pi 4 Model B Rev 1.4", device["model"])
	assert.Equal(t, "pi4", device["name"])
}

func TestBuilder_PayloadPerKind(t *testing.T) {
	reg := metric.NewRegistry(config.MetricsConfig{
		CPULoad: true, CPUTemp: true, DiskUsage: true, Voltage: true,
		SysClockSpeed: true, Swap: true, Memory: true, UptimeDays: true,
	})
	b := testBuilder()

	seen := map[string]bool{}
	for _, d := range reg.Enabled() {
		p := b.Payload(d)
		assert.Equal(t, "pi4_"+d.Kind.String(), p.UniqueID)
		assert.Equal(t, "pi4 "+d.DisplayName, p.Name)
		assert.False(t, seen[p.UniqueID], "unique_id repeated: %s", p.UniqueID)
		seen[p.UniqueID] = true
	}
	assert.Len(t, seen, len(metric.AllKinds()))
}
