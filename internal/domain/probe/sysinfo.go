package probe

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// SystemReader reads memory, disk, and board facts from the OS.
type SystemReader interface {
	AvailableMemoryMB() (int64, error)
	DiskFreeMB(path string) (int64, error)
	HasDesktopSession() bool
	IsJetsonBoard() bool
}

// RealSystemReader reads from /proc and statfs.
type RealSystemReader struct{}

// AvailableMemoryMB parses MemAvailable from /proc/meminfo.
func (RealSystemReader) AvailableMemoryMB() (int64, error) {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0, err
	}
	return ParseMemAvailableMB(string(data))
}

// DiskFreeMB reports free space on the filesystem containing path.
func (RealSystemReader) DiskFreeMB(path string) (int64, error) {
	if path == "" {
		path = "."
	}
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return int64(stat.Bavail) * stat.Bsize / (1024 * 1024), nil
}

// HasDesktopSession reports whether a graphical session is reachable.
// Desktop mutations (dock pinning, fonts) are skipped without one.
func (RealSystemReader) HasDesktopSession() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// IsJetsonBoard reports whether the device-tree model names a Jetson.
func (RealSystemReader) IsJetsonBoard() bool {
	data, err := os.ReadFile("/proc/device-tree/model")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "jetson")
}

// ParseMemAvailableMB extracts MemAvailable (kB) from meminfo content and
// converts it to megabytes.
func ParseMemAvailableMB(meminfo string) (int64, error) {
	for _, line := range strings.Split(meminfo, "\n") {
		if !strings.HasPrefix(line, "MemAvailable:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		kb, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return 0, err
		}
		return kb / 1024, nil
	}
	return 0, os.ErrNotExist
}
