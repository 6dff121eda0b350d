// Package report renders tabular summaries for the cmd/hlimdemo and
// cmd/hlimcheck CLIs, upgrading the teacher's ad hoc strings.Repeat banner
// style (verify.WriteReport) to github.com/jedib0t/go-pretty/v6/table.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/hlimgo/hlim"
)

// WriteCircuitStats renders a circuit's hlim.Stats as a two-column table:
// node-kind histogram rows, followed by totals.
func WriteCircuitStats(w io.Writer, title string, s hlim.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Node kind", "Count"})

	kinds := make([]string, 0, len(s.NodeKindCounts))
	for k := range s.NodeKindCounts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		t.AppendRow(table.Row{k, s.NodeKindCounts[k]})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"total nodes", s.NodeCount})
	t.AppendRow(table.Row{"clocks", s.ClockCount})
	t.AppendRow(table.Row{"groups", s.GroupCount})
	t.Render()
}

// EquivalenceCase is one row of an optimizer-equivalence check: a named
// circuit family, the optimization level applied, and whether every
// sampled output port agreed between the unoptimized and optimized
// simulations for every stimulus vector tried.
type EquivalenceCase struct {
	Name   string
	Level  int
	Trials int
	Passed bool
	Detail string
}

// WriteEquivalenceReport renders a slice of EquivalenceCase as a PASS/FAIL
// table, mirroring the teacher's verify.WriteReport pass/fail summary but
// through go-pretty instead of hand-rolled separators.
func WriteEquivalenceReport(w io.Writer, cases []EquivalenceCase) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Optimizer equivalence check")
	t.AppendHeader(table.Row{"Circuit", "Level", "Trials", "Result", "Detail"})

	failures := 0
	for _, c := range cases {
		result := "PASS"
		if !c.Passed {
			result = "FAIL"
			failures++
		}
		t.AppendRow(table.Row{c.Name, c.Level, c.Trials, result, c.Detail})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"", "", "", fmt.Sprintf("%d/%d passed", len(cases)-failures, len(cases)), ""})
	t.Render()
}
