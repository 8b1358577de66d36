// Package prometheus exposes recorded timings in Prometheus text
// format.
package prometheus

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// SnapshotFunc supplies the timings to export: timer name to recorded
// runs in milliseconds. Callers that share a registry across goroutines
// hand in a func that serializes the read.
type SnapshotFunc func() map[string][]int64

var scrapesTotal = promauto.NewCounter(promclient.CounterOpts{
	Name: "opclock_scrapes_total",
	Help: "Number of times the timings exporter has been scraped",
})

// Exporter serves timing metrics at /metrics. Custom metrics are written
// first, then everything registered with the default Prometheus registry
// (process and Go runtime collectors included) is appended.
type Exporter struct {
	snapshot  SnapshotFunc
	startTime time.Time
}

// NewExporter creates an exporter over a timings snapshot source.
func NewExporter(snapshot SnapshotFunc) *Exporter {
	return &Exporter{
		snapshot:  snapshot,
		startTime: time.Now(),
	}
}

// ServeHTTP serves Prometheus-compatible metrics
func (e *Exporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	scrapesTotal.Inc()

	snap := e.snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "# HELP opclock_uptime_seconds Exporter uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE opclock_uptime_seconds gauge\n")
	fmt.Fprintf(w, "opclock_uptime_seconds %.0f\n", time.Since(e.startTime).Seconds())

	fmt.Fprintf(w, "\n# HELP opclock_timers Number of timer names with recorded runs\n")
	fmt.Fprintf(w, "# TYPE opclock_timers gauge\n")
	fmt.Fprintf(w, "opclock_timers %d\n", len(names))

	fmt.Fprintf(w, "\n# HELP opclock_timer_runs_total Recorded runs per timer\n")
	fmt.Fprintf(w, "# TYPE opclock_timer_runs_total counter\n")
	for _, name := range names {
		fmt.Fprintf(w, "opclock_timer_runs_total{name=%q} %d\n", name, len(snap[name]))
	}

	fmt.Fprintf(w, "\n# HELP opclock_timer_last_milliseconds Most recent recorded duration per timer\n")
	fmt.Fprintf(w, "# TYPE opclock_timer_last_milliseconds gauge\n")
	for _, name := range names {
		runs := snap[name]
		if len(runs) == 0 {
			continue
		}
		fmt.Fprintf(w, "opclock_timer_last_milliseconds{name=%q} %d\n", name, runs[len(runs)-1])
	}

	fmt.Fprintf(w, "\n# HELP opclock_timer_milliseconds_total Sum of recorded durations per timer\n")
	fmt.Fprintf(w, "# TYPE opclock_timer_milliseconds_total counter\n")
	for _, name := range names {
		var total int64
		for _, v := range snap[name] {
			total += v
		}
		fmt.Fprintf(w, "opclock_timer_milliseconds_total{name=%q} %d\n", name, total)
	}

	// Append everything from the default registry (scrape counter,
	// process and Go collectors).
	fmt.Fprintf(w, "\n")

	metricFamilies, err := promclient.DefaultGatherer.Gather()
	if err != nil {
		fmt.Fprintf(w, "# Error gathering Prometheus metrics: %v\n", err)
		return
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, mf := range metricFamilies {
		if err := encoder.Encode(mf); err != nil {
			fmt.Fprintf(w, "# Error encoding metric %s: %v\n", mf.GetName(), err)
		}
	}

	w.Write(buf.Bytes())
}
