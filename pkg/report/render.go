package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Render writes the report as a table.
func (r *Report) Render(w io.Writer) {
	if r.SessionID != "" {
		fmt.Fprintf(w, "Session: %s\n", r.SessionID)
	}
	if r.Host != nil {
		fmt.Fprintf(w, "Host: %s (%s/%s, %s, %d threads)\n",
			r.Host.Hostname, r.Host.OS, r.Host.Arch, r.Host.CPUModel, r.Host.CPUThreads)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Name", "Runs", "Last (ms)", "Total (ms)")

	for _, e := range r.Entries {
		table.Append(
			e.Name,
			strconv.Itoa(len(e.Runs)),
			strconv.FormatInt(e.Last, 10),
			strconv.FormatInt(e.Total, 10),
		)
	}

	table.Render()
}
