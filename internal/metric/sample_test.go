package metric

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample_String(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
		want   string
	}{
		{"integer", Sample{Kind: CPULoad, Value: 2, Present: true}, "2"},
		{"decimal", Sample{Kind: Voltage, Value: 1.2, Present: true}, "1.2"},
		{"zero", Sample{Kind: Swap, Value: 0, Present: true}, "0"},
		{"large", Sample{Kind: DiskUsage, Value: 1000, Present: true}, "1000"},
		{"absent", Sample{Kind: CPUTemp}, "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sample.String())
		})
	}
}

func TestFixedReader(t *testing.T) {
	r := NewDryRunReader()
	ctx := context.Background()

	v, err := r.Read(ctx, CPULoad)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = r.Read(ctx, Memory)
	require.NoError(t, err)
	assert.Equal(t, 50.0, v)

	model, err := r.Model(ctx)
	require.NoError(t, err)
	assert.Equal(t, "pi 4", model)

	_, err = (&FixedReader{}).Read(ctx, CPULoad)
	assert.True(t, errors.Is(err, ErrReaderFailure))
}
