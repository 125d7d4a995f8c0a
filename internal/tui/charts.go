package tui

import (
	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/saldotui/saldotui/internal/ledger"
)

var (
	expenseBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("173"))
	othersBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	upBarStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	downBarStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("71"))
)

// expenseChart draws the capped expense rows as a bar chart. Chart heights
// are display-only, so the exact decimals degrade to floats here and only
// here.
func expenseChart(rows []ledger.Row, width, height int) string {
	if len(rows) == 0 {
		return "No expense data."
	}
	bc := barchart.New(width, height)
	for _, r := range rows {
		style := expenseBarStyle
		if r.Others {
			style = othersBarStyle
		}
		bc.Push(barchart.BarData{
			Label: chartLabel(r.Account),
			Values: []barchart.BarValue{
				{Name: r.Account, Value: r.Amount.InexactFloat64(), Style: style},
			},
		})
	}
	bc.Draw()
	return bc.View()
}

// diffChart draws per-account deltas between two periods; increases and
// decreases get distinct styles.
func diffChart(rows []ledger.DiffRow, width, height int) string {
	if len(rows) == 0 {
		return "No diff data."
	}
	bc := barchart.New(width, height)
	for _, r := range rows {
		style := downBarStyle
		if r.Delta.Sign() >= 0 {
			style = upBarStyle
		}
		bc.Push(barchart.BarData{
			Label: chartLabel(r.Account),
			Values: []barchart.BarValue{
				{Name: r.Account, Value: r.Delta.Abs().InexactFloat64(), Style: style},
			},
		})
	}
	bc.Draw()
	return bc.View()
}

// chartLabel shortens a full account path to its last segment for axis
// labels.
func chartLabel(account string) string {
	segments := splitPath(account)
	label := segments[len(segments)-1]
	return truncate(label, 12)
}
