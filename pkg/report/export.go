package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ExportJSON writes the report as indented JSON.
func (r *Report) ExportJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// ExportYAML writes the report as YAML.
func (r *Report) ExportYAML(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(r)
}

// ExportCSV writes one row per recorded run: name, run index, duration.
func (r *Report) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "run", "duration_ms"}); err != nil {
		return err
	}
	for _, e := range r.Entries {
		for i, v := range e.Runs {
			row := []string{e.Name, strconv.Itoa(i + 1), strconv.FormatInt(v, 10)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Export dispatches on format: json, yaml or csv.
func (r *Report) Export(w io.Writer, format string) error {
	switch format {
	case "yaml":
		return r.ExportYAML(w)
	case "csv":
		return r.ExportCSV(w)
	default:
		return r.ExportJSON(w)
	}
}
