//go:build !linux

package hostprobe

import "errors"

var errUnsupported = errors.New("host probes are only available on linux")

func sysMemInfo() (memInfo, error) {
	return memInfo{}, errUnsupported
}

func sysDiskInfo(string) (diskInfo, error) {
	return diskInfo{}, errUnsupported
}
