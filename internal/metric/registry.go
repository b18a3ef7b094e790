package metric

import (
	"fmt"

	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/config"
)

// Descriptor holds the presentation metadata for one metric kind.
type Descriptor struct {
	Kind        Kind
	Icon        string
	DisplayName string
	Unit        string
	Enabled     bool
}

// catalogue is the fixed metadata table, in declaration order.
var catalogue = []Descriptor{
	{Kind: CPULoad, Icon: "mdi:speedometer", DisplayName: "CPU Usage", Unit: "%"},
	{Kind: CPUTemp, Icon: "hass:thermometer", DisplayName: "CPU Temperature", Unit: "°C"},
	{Kind: DiskUsage, Icon: "mdi:harddisk", DisplayName: "Disk Usage", Unit: "%"},
	{Kind: Voltage, Icon: "mdi:sine-wave", DisplayName: "CPU Voltage", Unit: "V"},
	{Kind: SysClockSpeed, Icon: "mdi:speedometer", DisplayName: "CPU Clock Speed", Unit: "MHz"},
	{Kind: Swap, Icon: "mdi:harddisk", DisplayName: "Disk Swap", Unit: "%"},
	{Kind: Memory, Icon: "mdi:memory", DisplayName: "Memory Usage", Unit: "%"},
	{Kind: UptimeDays, Icon: "mdi:timer", DisplayName: "Uptime", Unit: "days"},
}

// Registry is the read-only metric table built once from configuration.
//
// Thread Safety: immutable after construction, safe for concurrent reads.
type Registry struct {
	descriptors []Descriptor
	index       map[Kind]int
}

// NewRegistry builds the registry, applying the enable flags from cfg.
func NewRegistry(cfg config.MetricsConfig) *Registry {
	enabled := map[Kind]bool{
		CPULoad:       cfg.CPULoad,
		CPUTemp:       cfg.CPUTemp,
		DiskUsage:     cfg.DiskUsage,
		Voltage:       cfg.Voltage,
		SysClockSpeed: cfg.SysClockSpeed,
		Swap:          cfg.Swap,
		Memory:        cfg.Memory,
		UptimeDays:    cfg.UptimeDays,
	}

	r := &Registry{
		descriptors: make([]Descriptor, len(catalogue)),
		index:       make(map[Kind]int, len(catalogue)),
	}
	for i, d := range catalogue {
		d.Enabled = enabled[d.Kind]
		r.descriptors[i] = d
		r.index[d.Kind] = i
	}
	return r
}

// Describe returns the descriptor for kind.
func (r *Registry) Describe(kind Kind) (Descriptor, error) {
	i, ok := r.index[kind]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrNotFound, kind)
	}
	return r.descriptors[i], nil
}

// EnabledKinds returns the enabled kinds in declaration order.
func (r *Registry) EnabledKinds() []Kind {
	kinds := make([]Kind, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if d.Enabled {
			kinds = append(kinds, d.Kind)
		}
	}
	return kinds
}

// Enabled returns the descriptors of enabled kinds in declaration order.
func (r *Registry) Enabled() []Descriptor {
	out := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out
}
