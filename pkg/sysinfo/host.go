// Package sysinfo probes the host machine so reports can say what they
// were measured on.
package sysinfo

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo describes the machine a set of timings was collected on.
type HostInfo struct {
	Hostname      string `json:"hostname" yaml:"hostname"`
	OS            string `json:"os" yaml:"os"`
	Arch          string `json:"arch" yaml:"arch"`
	CPUModel      string `json:"cpu_model" yaml:"cpu_model"`
	CPUThreads    int    `json:"cpu_threads" yaml:"cpu_threads"`
	MemTotalBytes uint64 `json:"mem_total_bytes" yaml:"mem_total_bytes"`
	MemUsedBytes  uint64 `json:"mem_used_bytes" yaml:"mem_used_bytes"`
	UptimeSeconds uint64 `json:"uptime_seconds" yaml:"uptime_seconds"`
}

// Collect probes the host. Probe failures leave the affected fields at
// their zero values; the first error encountered is returned alongside
// the partial result so callers can log it and move on.
func Collect() (*HostInfo, error) {
	info := &HostInfo{
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		CPUThreads: runtime.NumCPU(),
	}

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if cpus, err := cpu.Info(); err != nil {
		keep(err)
	} else if len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		keep(err)
	} else {
		info.MemTotalBytes = vm.Total
		info.MemUsedBytes = vm.Used
	}

	if h, err := host.Info(); err != nil {
		keep(err)
	} else {
		info.Hostname = h.Hostname
		info.UptimeSeconds = h.Uptime
	}

	return info, firstErr
}
