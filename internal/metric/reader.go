package metric

import (
	"context"
	"fmt"
)

// Reader produces the current value of a metric.
// Failures should wrap ErrReaderFailure.
type Reader interface {
	Read(ctx context.Context, kind Kind) (float64, error)
}

// ModelDetector reports the hardware model string used in discovery payloads.
type ModelDetector interface {
	Model(ctx context.Context) (string, error)
}

// FixedReader returns constant values. It backs dry-run mode.
type FixedReader struct {
	Values    map[Kind]float64
	ModelName string
}

// NewDryRunReader returns the reader used when dry_run is set.
func NewDryRunReader() *FixedReader {
	return &FixedReader{
		Values: map[Kind]float64{
			CPULoad:       2,
			CPUTemp:       60,
			DiskUsage:     1000,
			Voltage:       3,
			SysClockSpeed: 7,
			Swap:          40,
			Memory:        50,
			UptimeDays:    80,
		},
		ModelName: "pi 4",
	}
}

// Read implements Reader.
func (f *FixedReader) Read(_ context.Context, kind Kind) (float64, error) {
	v, ok := f.Values[kind]
	if !ok {
		return 0, fmt.Errorf("%w: no fixed value for %s", ErrReaderFailure, kind)
	}
	return v, nil
}

// Model implements ModelDetector.
func (f *FixedReader) Model(context.Context) (string, error) {
	return f.ModelName, nil
}
