package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestExporterServesTimings(t *testing.T) {
	exporter := NewExporter(func() map[string][]int64 {
		return map[string][]int64{
			"open-file": {12, 30},
			"parse":     {7},
		}
	})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	exporter.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Expected text/plain content type, got %s", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"opclock_timers 2",
		`opclock_timer_runs_total{name="open-file"} 2`,
		`opclock_timer_last_milliseconds{name="open-file"} 30`,
		`opclock_timer_milliseconds_total{name="open-file"} 42`,
		`opclock_timer_runs_total{name="parse"} 1`,
		"opclock_uptime_seconds",
		"opclock_scrapes_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Metrics output missing %q", want)
		}
	}
}

func TestExporterEmptySnapshot(t *testing.T) {
	exporter := NewExporter(func() map[string][]int64 { return nil })

	rec := httptest.NewRecorder()
	exporter.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "opclock_timers 0") {
		t.Error("Expected zero timers gauge for an empty snapshot")
	}
}
