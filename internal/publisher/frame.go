package publisher

import (
	"strings"

	"github.com/nerrad567/gray-logic-hostmon/internal/metric"
)

// groupSeparator joins values in a grouped payload.
const groupSeparator = ","

// GroupedPayload joins the sample values in the order given.
func GroupedPayload(samples []metric.Sample) string {
	fields := make([]string, len(samples))
	for i, s := range samples {
		fields[i] = s.String()
	}
	return strings.Join(fields, groupSeparator)
}
