package metric

import "strconv"

// absentValue is what an absent sample renders as on the wire.
const absentValue = "false"

// Sample is one metric value gathered during a cycle.
// Present is false when the reader failed.
type Sample struct {
	Kind    Kind
	Value   float64
	Present bool
}

// String renders the value in its shortest decimal form ("2", "1.2"),
// or "false" when absent.
func (s Sample) String() string {
	if !s.Present {
		return absentValue
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64)
}
