package hostprobe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/sysfs"

	"github.com/nerrad567/gray-logic-hostmon/internal/metric"
)

// UnknownModel is reported when no hardware model can be found.
const UnknownModel = "unknown"

// commandTimeout bounds external tool invocations such as vcgencmd.
const commandTimeout = 5 * time.Second

// Paths relative to the probe root.
const (
	deviceTreePath = "proc/device-tree/model"
	cpuinfoPath    = "proc/cpuinfo"
)

// memInfo is the subset of sysinfo(2) the probes need, in bytes.
type memInfo struct {
	load1     float64
	uptime    time.Duration
	totalRAM  uint64
	freeRAM   uint64
	bufferRAM uint64
	totalSwap uint64
	freeSwap  uint64
}

// diskInfo is filesystem capacity in bytes.
type diskInfo struct {
	total uint64
	avail uint64
}

// Probe reads metrics from the local host. It implements metric.Reader
// and metric.ModelDetector.
//
// Thread Safety: stateless after construction, safe for concurrent use.
type Probe struct {
	diskPath string
	root     string

	memInfo  func() (memInfo, error)
	diskInfo func(path string) (diskInfo, error)
	numCPU   func() int
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New creates a Probe measuring disk usage of diskPath.
func New(diskPath string) *Probe {
	return &Probe{
		diskPath: diskPath,
		root:     "/",
		memInfo:  sysMemInfo,
		diskInfo: sysDiskInfo,
		numCPU:   runtime.NumCPU,
		run:      runCommand,
	}
}

// runCommand executes name and returns its standard output.
func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(cmdCtx, name, args...).Output() //nolint:gosec // fixed tool names only
	if err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%s timed out after %v", name, commandTimeout)
		}
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
	return out, nil
}

// path resolves rel against the probe root.
func (p *Probe) path(rel string) string {
	return filepath.Join(p.root, rel)
}

// Read implements metric.Reader.
func (p *Probe) Read(ctx context.Context, kind metric.Kind) (float64, error) {
	var (
		v   float64
		err error
	)

	switch kind {
	case metric.CPULoad:
		v, err = p.cpuLoad()
	case metric.CPUTemp:
		v, err = p.cpuTemp()
	case metric.DiskUsage:
		v, err = p.diskUsage()
	case metric.Voltage:
		v, err = p.voltage(ctx)
	case metric.SysClockSpeed:
		v, err = p.clockSpeed()
	case metric.Swap:
		v, err = p.swap()
	case metric.Memory:
		v, err = p.memory()
	case metric.UptimeDays:
		v, err = p.uptimeDays()
	default:
		err = fmt.Errorf("%w: %s", metric.ErrNotFound, kind)
	}

	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", metric.ErrReaderFailure, kind, err)
	}
	return v, nil
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// cpuLoad scales the 1-minute load average by the CPU count. /proc/loadavg
// is preferred; sysinfo(2) is the fallback.
func (p *Probe) cpuLoad() (float64, error) {
	load1, err := p.loadAvg()
	if err != nil {
		mi, sysErr := p.memInfo()
		if sysErr != nil {
			return 0, errors.Join(err, sysErr)
		}
		load1 = mi.load1
	}

	cpus := p.numCPU()
	if cpus < 1 {
		cpus = 1
	}
	return roundTo(load1/float64(cpus)*100, 1), nil
}

func (p *Probe) loadAvg() (float64, error) {
	fs, err := procfs.NewFS(p.path("proc"))
	if err != nil {
		return 0, err
	}
	avg, err := fs.LoadAvg()
	if err != nil {
		return 0, err
	}
	return avg.Load1, nil
}

// cpuTemp reports the highest-numbered thermal zone in whole degrees Celsius.
func (p *Probe) cpuTemp() (float64, error) {
	fs, err := sysfs.NewFS(p.path("sys"))
	if err != nil {
		return 0, err
	}
	zones, err := fs.ClassThermalZoneStats()
	if err != nil {
		return 0, err
	}
	if len(zones) == 0 {
		return 0, fmt.Errorf("no thermal zones found")
	}

	last, lastIdx := zones[0], -1
	for _, z := range zones {
		idx, err := strconv.Atoi(z.Name)
		if err != nil {
			continue
		}
		if idx > lastIdx {
			last, lastIdx = z, idx
		}
	}
	return float64(last.Temp / 1000), nil
}

func (p *Probe) diskUsage() (float64, error) {
	di, err := p.diskInfo(p.diskPath)
	if err != nil {
		return 0, err
	}
	if di.total == 0 {
		return 0, fmt.Errorf("filesystem at %s reports zero size", p.diskPath)
	}
	return math.Trunc(100 - float64(di.avail)/float64(di.total)*100), nil
}

// voltage parses vcgencmd output of the form "volt=1.2000V".
func (p *Probe) voltage(ctx context.Context) (float64, error) {
	out, err := p.run(ctx, "vcgencmd", "measure_volts")
	if err != nil {
		return 0, err
	}
	return parseVolts(string(out))
}

func parseVolts(out string) (float64, error) {
	s := strings.TrimSpace(out)
	_, value, ok := strings.Cut(s, "=")
	if !ok {
		return 0, fmt.Errorf("unexpected vcgencmd output %q", s)
	}
	value = strings.TrimSuffix(strings.TrimSpace(value), "V")
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing voltage %q: %w", value, err)
	}
	return v, nil
}

// clockSpeed converts the cpu0 frequency from kHz to whole MHz.
func (p *Probe) clockSpeed() (float64, error) {
	fs, err := sysfs.NewFS(p.path("sys"))
	if err != nil {
		return 0, err
	}
	stats, err := fs.SystemCpufreq()
	if err != nil {
		return 0, err
	}

	for _, st := range stats {
		if st.Name != "0" {
			continue
		}
		khz := st.ScalingCurrentFrequency
		if khz == nil {
			khz = st.CpuinfoCurrentFrequency
		}
		if khz == nil {
			break
		}
		return math.Round(float64(*khz) / 1000), nil
	}
	return 0, fmt.Errorf("no current frequency reported for cpu0")
}

func (p *Probe) swap() (float64, error) {
	mi, err := p.memInfo()
	if err != nil {
		return 0, err
	}
	if mi.totalSwap == 0 {
		return 0, nil
	}
	used := mi.totalSwap - mi.freeSwap
	return roundTo(float64(used)/float64(mi.totalSwap)*100, 1), nil
}

// memory reports used RAM as a whole percentage. MemAvailable is preferred
// because sysinfo(2) counts page cache as used.
func (p *Probe) memory() (float64, error) {
	if total, avail, err := p.meminfo(); err == nil && total > 0 {
		return math.Round(float64(total-avail) / float64(total) * 100), nil
	}

	mi, err := p.memInfo()
	if err != nil {
		return 0, err
	}
	if mi.totalRAM == 0 {
		return 0, fmt.Errorf("sysinfo reports zero RAM")
	}
	used := mi.totalRAM - mi.freeRAM - mi.bufferRAM
	return math.Round(float64(used) / float64(mi.totalRAM) * 100), nil
}

// meminfo returns MemTotal and MemAvailable from /proc/meminfo in kB.
func (p *Probe) meminfo() (total, avail uint64, err error) {
	fs, err := procfs.NewFS(p.path("proc"))
	if err != nil {
		return 0, 0, err
	}
	mi, err := fs.Meminfo()
	if err != nil {
		return 0, 0, err
	}
	if mi.MemTotal == nil || mi.MemAvailable == nil {
		return 0, 0, fmt.Errorf("MemTotal/MemAvailable missing from meminfo")
	}

	total, avail = *mi.MemTotal, *mi.MemAvailable
	if avail > total {
		avail = total
	}
	return total, avail, nil
}

func (p *Probe) uptimeDays() (float64, error) {
	mi, err := p.memInfo()
	if err != nil {
		return 0, err
	}
	return math.Floor(mi.uptime.Hours() / 24), nil
}

// Model implements metric.ModelDetector. The device tree is tried first,
// then the Raspberry Pi "Model" line of /proc/cpuinfo, then the CPU model
// name. When nothing can be read it returns UnknownModel together with the
// error.
func (p *Probe) Model(context.Context) (string, error) {
	if data, err := os.ReadFile(p.path(deviceTreePath)); err == nil {
		if model := strings.TrimSpace(strings.TrimRight(string(data), "\x00")); model != "" {
			return model, nil
		}
	}

	data, err := os.ReadFile(p.path(cpuinfoPath))
	if err != nil {
		return UnknownModel, fmt.Errorf("%w: model: %w", metric.ErrReaderFailure, err)
	}

	// procfs does not keep the board "Model" line on ARM.
	for _, line := range strings.Split(string(data), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.TrimSpace(key) == "Model" {
			if model := strings.TrimSpace(value); model != "" {
				return model, nil
			}
		}
	}

	if fs, err := procfs.NewFS(p.path("proc")); err == nil {
		if cpus, err := fs.CPUInfo(); err == nil && len(cpus) > 0 && cpus[0].ModelName != "" {
			return strings.TrimSpace(cpus[0].ModelName), nil
		}
	}

	return UnknownModel, fmt.Errorf("%w: model: no model found in %s", metric.ErrReaderFailure, cpuinfoPath)
}
