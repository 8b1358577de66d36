package sysinfo

import (
	"runtime"
	"testing"
)

func TestCollect(t *testing.T) {
	info, err := Collect()
	if info == nil {
		t.Fatal("Collect must always return a (possibly partial) HostInfo")
	}
	if err != nil {
		t.Logf("partial host info: %v", err)
	}

	if info.OS != runtime.GOOS {
		t.Errorf("Expected OS %s, got %s", runtime.GOOS, info.OS)
	}
	if info.Arch != runtime.GOARCH {
		t.Errorf("Expected arch %s, got %s", runtime.GOARCH, info.Arch)
	}
	if info.CPUThreads < 1 {
		t.Errorf("Expected at least 1 CPU thread, got %d", info.CPUThreads)
	}
}
