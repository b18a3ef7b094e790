package publisher

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-hostmon/internal/metric"
)

// parseField is the inverse of metric.Sample.String.
func parseField(kind metric.Kind, field string) (metric.Sample, error) {
	if field == "false" {
		return metric.Sample{Kind: kind}, nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return metric.Sample{}, fmt.Errorf("parsing %s: %w", kind, err)
	}
	return metric.Sample{Kind: kind, Value: v, Present: true}, nil
}

// parseGrouped splits a grouped payload back into samples, one per kind.
func parseGrouped(kinds []metric.Kind, payload string) ([]metric.Sample, error) {
	fields := strings.Split(payload, groupSeparator)
	if len(fields) != len(kinds) {
		return nil, fmt.Errorf("grouped payload has %d fields, want %d", len(fields), len(kinds))
	}
	samples := make([]metric.Sample, len(kinds))
	for i, kind := range kinds {
		s, err := parseField(kind, fields[i])
		if err != nil {
			return nil, err
		}
		samples[i] = s
	}
	return samples, nil
}

func TestGroupedPayload_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		samples []metric.Sample
		want    string
	}{
		{
			name: "two values",
			samples: []metric.Sample{
				{Kind: metric.CPULoad, Value: 2, Present: true},
				{Kind: metric.Memory, Value: 50, Present: true},
			},
			want: "2,50",
		},
		{
			name: "absent in the middle",
			samples: []metric.Sample{
				{Kind: metric.CPULoad, Value: 12.5, Present: true},
				{Kind: metric.Voltage},
				{Kind: metric.UptimeDays, Value: 3, Present: true},
			},
			want: "12.5,false,3",
		},
		{
			name:    "single",
			samples: []metric.Sample{{Kind: metric.CPUTemp, Value: 61, Present: true}},
			want:    "61",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := GroupedPayload(tt.samples)
			assert.Equal(t, tt.want, payload)

			kinds := make([]metric.Kind, len(tt.samples))
			for i, s := range tt.samples {
				kinds[i] = s.Kind
			}
			got, err := parseGrouped(kinds, payload)
			require.NoError(t, err)
			assert.Equal(t, tt.samples, got)
		})
	}
}
