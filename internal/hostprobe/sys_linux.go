//go:build linux

package hostprobe

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// loadScale is the fixed-point scale of sysinfo load averages (1 << SI_LOAD_SHIFT).
const loadScale = 1 << 16

// sysMemInfo reads load, memory, swap and uptime with one sysinfo(2) call.
// Field widths differ between 32 and 64-bit targets, hence the conversions.
func sysMemInfo() (memInfo, error) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return memInfo{}, fmt.Errorf("sysinfo: %w", err)
	}

	unit := uint64(si.Unit)
	if unit == 0 {
		unit = 1
	}

	return memInfo{
		load1:     float64(uint64(si.Loads[0])) / loadScale,
		uptime:    time.Duration(int64(si.Uptime)) * time.Second,
		totalRAM:  uint64(si.Totalram) * unit,
		freeRAM:   uint64(si.Freeram) * unit,
		bufferRAM: uint64(si.Bufferram) * unit,
		totalSwap: uint64(si.Totalswap) * unit,
		freeSwap:  uint64(si.Freeswap) * unit,
	}, nil
}

// sysDiskInfo reads capacity figures for the filesystem holding path.
func sysDiskInfo(path string) (diskInfo, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return diskInfo{}, fmt.Errorf("statfs %s: %w", path, err)
	}

	size := uint64(st.Frsize)
	if size == 0 {
		size = uint64(st.Bsize)
	}

	return diskInfo{
		total: uint64(st.Blocks) * size,
		avail: uint64(st.Bavail) * size,
	}, nil
}
