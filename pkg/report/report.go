// Package report turns recorded timings into human- and
// machine-readable output. It only reads registry snapshots; the
// registry stays the sole writer of measurement state.
package report

import (
	"sort"
	"time"

	"github.com/opclock/opclock/pkg/sysinfo"
)

// Entry is the report row for one timer name.
type Entry struct {
	Name  string  `json:"name" yaml:"name"`
	Runs  []int64 `json:"runs_ms" yaml:"runs_ms"`
	Last  int64   `json:"last_ms" yaml:"last_ms"`
	Total int64   `json:"total_ms" yaml:"total_ms"`
}

// Report is a point-in-time view of everything a registry has recorded.
type Report struct {
	SessionID   string            `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	GeneratedAt time.Time         `json:"generated_at" yaml:"generated_at"`
	Host        *sysinfo.HostInfo `json:"host,omitempty" yaml:"host,omitempty"`
	Entries     []Entry           `json:"timings" yaml:"timings"`
}

// Build creates a report from a registry snapshot. Entries are sorted by
// name so repeated reports over the same data render identically.
func Build(snapshot map[string][]int64) *Report {
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		runs := snapshot[name]
		var total int64
		for _, v := range runs {
			total += v
		}
		var last int64
		if len(runs) > 0 {
			last = runs[len(runs)-1]
		}
		entries = append(entries, Entry{
			Name:  name,
			Runs:  runs,
			Last:  last,
			Total: total,
		})
	}

	return &Report{
		GeneratedAt: time.Now(),
		Entries:     entries,
	}
}
