package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/unbound-force/covtree/internal/covtree"
	"github.com/unbound-force/covtree/internal/engine"
	"github.com/unbound-force/covtree/internal/model"
	"github.com/unbound-force/covtree/internal/tier"
)

// WriteText writes the report as a human-readable styled tree table.
// Output uses lipgloss for color when the output is a TTY; degrades
// gracefully for pipes and CI.
func WriteText(w io.Writer, rpt *engine.Report, cuts tier.Cuts) error {
	s := DefaultStyles()

	rows, tiers := treeRows(rpt.Root, cuts)
	if len(rows) == 0 {
		fmt.Fprintln(w, s.Muted.Render("No files in report."))
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader
			}
			// Color the lines column by its tier.
			if col == 1 && row >= 0 && row < len(tiers) {
				return s.TierStyle(tiers[row])
			}
			return lipgloss.NewStyle()
		}).
		Headers("PATH", "LINES", "REGIONS", "FUNCTIONS", "TIER").
		Rows(rows...)

	fmt.Fprintln(w, t)

	// Report-root totals.
	fmt.Fprintln(w)
	fmt.Fprintln(w, s.Header.Render("--- Totals ---"))
	writeRatio(w, s, "Lines:", rpt.Totals.LinesCovered, rpt.Totals.LinesTotal)
	writeRatio(w, s, "Regions:", rpt.Totals.RegionsCovered, rpt.Totals.RegionsTotal)
	writeRatio(w, s, "Functions:", rpt.Totals.FunctionsCovered, rpt.Totals.FunctionsTotal)
	if rpt.Totals.BranchesTotal > 0 {
		writeRatio(w, s, "Branches:", rpt.Totals.BranchesCovered, rpt.Totals.BranchesTotal)
	}

	if len(rpt.Diagnostics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, s.Header.Render(
			fmt.Sprintf("--- Diagnostics (%d) ---", len(rpt.Diagnostics))))
		for _, d := range rpt.Diagnostics {
			fmt.Fprintln(w, s.Muted.Render("  "+d.String()))
		}
	}

	return nil
}

// treeRows flattens the tree into indented table rows, depth-first
// in child order. The parallel tier slice colors the lines column.
func treeRows(root *covtree.Node, cuts tier.Cuts) ([][]string, []tier.Tier) {
	var rows [][]string
	var tiers []tier.Tier

	var walk func(n *covtree.Node, depth int)
	walk = func(n *covtree.Node, depth int) {
		rows = append(rows, summaryRow(indent(depth)+n.Name+"/", n.Summary, cuts))
		tiers = append(tiers, tier.Classify(n.Summary.LinesCovered, n.Summary.LinesTotal, cuts))

		for _, c := range n.Children {
			if c.Dir != nil {
				walk(c.Dir, depth+1)
				continue
			}
			rows = append(rows, summaryRow(indent(depth+1)+c.Name(), c.File.Summary, cuts))
			tiers = append(tiers, tier.Classify(c.File.Summary.LinesCovered, c.File.Summary.LinesTotal, cuts))
		}
	}
	walk(root, 0)

	return rows, tiers
}

func summaryRow(label string, s model.Summary, cuts tier.Cuts) []string {
	return []string{
		label,
		ratio(s.LinesCovered, s.LinesTotal),
		ratio(s.RegionsCovered, s.RegionsTotal),
		ratio(s.FunctionsCovered, s.FunctionsTotal),
		string(tier.Classify(s.LinesCovered, s.LinesTotal, cuts)),
	}
}

func ratio(covered, total uint64) string {
	if total == 0 {
		return "-"
	}
	pct := 100.0 * float64(covered) / float64(total)
	return fmt.Sprintf("%d/%d (%.1f%%)", covered, total, pct)
}

func writeRatio(w io.Writer, s Styles, label string, covered, total uint64) {
	fmt.Fprintf(w, "%s  %s\n", s.SummaryLabel.Render(label), ratio(covered, total))
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
