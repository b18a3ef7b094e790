package status

import (
	"time"

	"github.com/nerrad567/gray-logic-hostmon/internal/publisher"
)

// SampleView is one metric value as served over HTTP. Value is a number, or
// false when the reader failed, mirroring the wire rendering.
type SampleView struct {
	Metric  string `json:"metric"`
	Value   any    `json:"value"`
	Present bool   `json:"present"`
}

// Snapshot is the public view of one completed cycle.
type Snapshot struct {
	Host       string       `json:"host"`
	Time       time.Time    `json:"time"`
	Grouped    bool         `json:"grouped"`
	Discovery  bool         `json:"discovery"`
	Published  int          `json:"published"`
	Failed     int          `json:"failed"`
	DurationMS int64        `json:"duration_ms"`
	Samples    []SampleView `json:"samples"`
}

// newSnapshot converts a cycle result for the given host.
func newSnapshot(host string, res publisher.Result) Snapshot {
	samples := make([]SampleView, len(res.Samples))
	for i, s := range res.Samples {
		view := SampleView{Metric: s.Kind.String(), Present: s.Present, Value: false}
		if s.Present {
			view.Value = s.Value
		}
		samples[i] = view
	}

	return Snapshot{
		Host:       host,
		Time:       res.Time.UTC(),
		Grouped:    res.Grouped,
		Discovery:  res.Discovery,
		Published:  res.Published,
		Failed:     res.Failed,
		DurationMS: res.Duration.Milliseconds(),
		Samples:    samples,
	}
}
