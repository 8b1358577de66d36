package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func testSnapshot() map[string][]int64 {
	return map[string][]int64{
		"zeta":  {100},
		"alpha": {10, 20, 30},
	}
}

func TestBuildSortsAndTotals(t *testing.T) {
	rep := Build(testSnapshot())

	if len(rep.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(rep.Entries))
	}
	if rep.Entries[0].Name != "alpha" || rep.Entries[1].Name != "zeta" {
		t.Errorf("Entries should be sorted by name, got %s, %s",
			rep.Entries[0].Name, rep.Entries[1].Name)
	}

	alpha := rep.Entries[0]
	if alpha.Total != 60 {
		t.Errorf("Expected total 60 for alpha, got %d", alpha.Total)
	}
	if alpha.Last != 30 {
		t.Errorf("Expected last 30 for alpha, got %d", alpha.Last)
	}
	if rep.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
}

func TestBuildEmptySnapshot(t *testing.T) {
	rep := Build(nil)
	if len(rep.Entries) != 0 {
		t.Errorf("Expected no entries, got %d", len(rep.Entries))
	}
}

func TestRender(t *testing.T) {
	rep := Build(testSnapshot())
	rep.SessionID = "session-1"

	var buf bytes.Buffer
	rep.Render(&buf)
	out := buf.String()

	for _, want := range []string{"session-1", "alpha", "zeta", "Total (ms)"} {
		if !strings.Contains(out, want) {
			t.Errorf("Rendered table missing %q", want)
		}
	}
}

func TestExportJSON(t *testing.T) {
	rep := Build(testSnapshot())

	var buf bytes.Buffer
	if err := rep.ExportJSON(&buf); err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Exported JSON does not parse: %v", err)
	}
	if len(decoded.Entries) != 2 {
		t.Errorf("Expected 2 entries after round trip, got %d", len(decoded.Entries))
	}
}

func TestExportYAML(t *testing.T) {
	rep := Build(testSnapshot())

	var buf bytes.Buffer
	if err := rep.ExportYAML(&buf); err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Exported YAML does not parse: %v", err)
	}
	if _, ok := decoded["timings"]; !ok {
		t.Error("Exported YAML missing timings key")
	}
}

func TestExportCSV(t *testing.T) {
	rep := Build(testSnapshot())

	var buf bytes.Buffer
	if err := rep.ExportCSV(&buf); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Exported CSV does not parse: %v", err)
	}

	// Header + 3 alpha runs + 1 zeta run
	if len(rows) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(rows))
	}
	if rows[0][0] != "name" {
		t.Errorf("Expected header row, got %v", rows[0])
	}
	if rows[1][0] != "alpha" || rows[1][1] != "1" || rows[1][2] != "10" {
		t.Errorf("Unexpected first data row: %v", rows[1])
	}
}

func TestExportDispatch(t *testing.T) {
	rep := Build(testSnapshot())

	for _, format := range []string{"json", "yaml", "csv"} {
		var buf bytes.Buffer
		if err := rep.Export(&buf, format); err != nil {
			t.Errorf("Export(%s) failed: %v", format, err)
		}
		if buf.Len() == 0 {
			t.Errorf("Export(%s) wrote nothing", format)
		}
	}
}
