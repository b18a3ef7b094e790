// Package hostprobe reads host metrics from the running Linux system.
//
// Sources:
//
//	cpu_load         /proc/loadavg (sysinfo(2) fallback) / CPU count × 100
//	cpu_temp         sysfs thermal zones (highest-numbered zone)
//	disk_usage       statfs(2) on the configured path
//	voltage          vcgencmd measure_volts
//	sys_clock_speed  sysfs cpufreq for cpu0
//	swap             sysinfo(2)
//	memory           /proc/meminfo MemAvailable, sysinfo(2) fallback
//	uptime_days      sysinfo(2)
//
// procfs and sysfs files are parsed with github.com/prometheus/procfs.
//
// Every failure wraps metric.ErrReaderFailure so callers can report the
// value as absent and carry on.
package hostprobe
