package metric

// Kind identifies a host metric. It is also the topic segment and the
// suffix of the discovery unique_id.
type Kind string

// Supported metric kinds, in declaration order.
const (
	CPULoad       Kind = "cpu_load"
	CPUTemp       Kind = "cpu_temp"
	DiskUsage     Kind = "disk_usage"
	Voltage       Kind = "voltage"
	SysClockSpeed Kind = "sys_clock_speed"
	Swap          Kind = "swap"
	Memory        Kind = "memory"
	UptimeDays    Kind = "uptime_days"
)

// AllKinds returns every Kind in declaration order.
func AllKinds() []Kind {
	return []Kind{CPULoad, CPUTemp, DiskUsage, Voltage, SysClockSpeed, Swap, Memory, UptimeDays}
}

// String returns the kind identifier.
func (k Kind) String() string {
	return string(k)
}
