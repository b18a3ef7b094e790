package metric

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/config"
)

func allEnabled() config.MetricsConfig {
	return config.MetricsConfig{
		CPULoad: true, CPUTemp: true, DiskUsage: true, Voltage: true,
		SysClockSpeed: true, Swap: true, Memory: true, UptimeDays: true,
	}
}

func TestRegistry_DescribeEveryKind(t *testing.T) {
	r := NewRegistry(allEnabled())

	for _, kind := range AllKinds() {
		d, err := r.Describe(kind)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, d.Kind)
		assert.NotEmpty(t, d.Icon, kind)
		assert.NotEmpty(t, d.DisplayName, kind)
		assert.NotEmpty(t, d.Unit, kind)
		assert.True(t, d.Enabled, kind)
	}
}

func TestRegistry_DescribeUnknown(t *testing.T) {
	r := NewRegistry(allEnabled())

	_, err := r.Describe(Kind("gpu_temp"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegistry_EnabledKindsDeclarationOrder(t *testing.T) {
	r := NewRegistry(allEnabled())
	assert.Equal(t, AllKinds(), r.EnabledKinds())
}

func TestRegistry_DisabledKindsExcluded(t *testing.T) {
	r := NewRegistry(config.MetricsConfig{Memory: true, CPULoad: true, UptimeDays: true})

	assert.Equal(t, []Kind{CPULoad, Memory, UptimeDays}, r.EnabledKinds())

	for _, d := range r.Enabled() {
		assert.True(t, d.Enabled)
		assert.NotEqual(t, Voltage, d.Kind)
	}

	d, err := r.Describe(Voltage)
	require.NoError(t, err)
	assert.False(t, d.Enabled)
}

func TestRegistry_NothingEnabled(t *testing.T) {
	r := NewRegistry(config.MetricsConfig{})
	assert.Empty(t, r.EnabledKinds())
	assert.Empty(t, r.Enabled())
}

func TestRegistry_Metadata(t *testing.T) {
	r := NewRegistry(allEnabled())

	d, err := r.Describe(CPUTemp)
	require.NoError(t, err)
	assert.Equal(t, "hass:thermometer", d.Icon)
	assert.Equal(t, "CPU Temperature", d.DisplayName)
	assert.Equal(t, "°C", d.Unit)

	d, err = r.Describe(UptimeDays)
	require.NoError(t, err)
	assert.Equal(t, "Uptime", d.DisplayName)
	assert.Equal(t, "days", d.Unit)
}
