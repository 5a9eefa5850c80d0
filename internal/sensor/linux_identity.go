//go:build linux

package sensor

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

func (a *linuxAdapter) Identity() Identity {
	osName, osVersion := a.osRelease()

	cores, active := a.cpuCounts()

	return Identity{
		Hostname:     a.hostname(),
		OSName:       osName,
		OSVersion:    osVersion,
		Processor:    a.processor(),
		Architecture: runtime.GOARCH,
		Cores:        cores,
		ActiveCores:  active,
		Jailbroken:   false,
		Multitasking: true,
		Uptime:       a.uptime(),
	}
}

// cpuCounts returns the present and online CPUs. A CPU without an online
// attribute, usually cpu0, cannot be taken offline and counts as online.
func (a *linuxAdapter) cpuCounts() (int, int) {
	fs, ok := a.sysFS()
	if !ok {
		return runtime.NumCPU(), runtime.NumCPU()
	}
	cpus, err := fs.CPUs()
	if err != nil || len(cpus) == 0 {
		return runtime.NumCPU(), runtime.NumCPU()
	}

	active := 0
	for _, cpu := range cpus {
		online, err := cpu.Online()
		if err != nil || online {
			active++
		}
	}
	return len(cpus), active
}

// osRelease returns the distribution name and the kernel release.
func (a *linuxAdapter) osRelease() (string, string) {
	name := "Linux"
	if kv := parseKeyValueFile(filepath.Join(a.cfg.EtcRoot, "os-release")); kv != nil {
		switch {
		case kv["PRETTY_NAME"] != "":
			name = kv["PRETTY_NAME"]
		case kv["NAME"] != "":
			name = kv["NAME"]
		}
	}

	if release, ok := a.sysctl("kernel.osrelease"); ok {
		return name, release
	}

	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		a.logger.Debug().Err(err).Msg("uname failed")
		return name, ""
	}
	return name, unix.ByteSliceToString(uts.Release[:])
}

// processor returns the first model name in cpuinfo, falling back to the
// vendor for architectures that report none.
func (a *linuxAdapter) processor() string {
	fs, ok := a.procFS()
	if !ok {
		return "unknown"
	}
	cpus, err := fs.CPUInfo()
	if err != nil {
		a.logger.Debug().Err(err).Msg("cpuinfo unreadable")
		return "unknown"
	}

	var vendor string
	for _, cpu := range cpus {
		if name := strings.TrimSpace(cpu.ModelName); name != "" {
			return name
		}
		if vendor == "" {
			vendor = strings.TrimSpace(cpu.VendorID)
		}
	}
	if vendor != "" {
		return vendor
	}
	return "unknown"
}

func (a *linuxAdapter) uptime() time.Duration {
	line, ok := readFirstLine(a.proc("uptime"))
	if !ok {
		return 0
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0
	}
	seconds, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
