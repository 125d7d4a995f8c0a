package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/saldotui/saldotui/internal/api"
	"github.com/saldotui/saldotui/internal/ledger"
	"github.com/saldotui/saldotui/internal/money"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	creditStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	debitStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	overStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

func renderTransactions(rows []api.Transaction, reg *money.Registry, currency string, width int) string {
	if len(rows) == 0 {
		return "No transactions."
	}
	dateWidth, amountWidth, balanceWidth := 12, 14, 14
	descWidth := width - dateWidth - amountWidth - balanceWidth - 8
	if descWidth < 10 {
		descWidth = 10
	}

	lines := []string{headerStyle.Render(fmt.Sprintf("%-*s  %-*s  %*s  %*s",
		dateWidth, "Date", descWidth, "Description", amountWidth, "Amount", balanceWidth, "Balance"))}
	for _, row := range rows {
		amount := padLeft(reg.Format(currency, row.Amount), amountWidth)
		if row.Amount.Sign() > 0 {
			amount = creditStyle.Render(amount)
		} else if row.Amount.Sign() < 0 {
			amount = debitStyle.Render(amount)
		}
		lines = append(lines, fmt.Sprintf("%-*s  %-*s  %s  %s",
			dateWidth, truncate(row.Date, dateWidth),
			descWidth, truncate(row.Description, descWidth),
			amount,
			padLeft(reg.Format(currency, row.RunningBalance), balanceWidth)))
	}
	return strings.Join(lines, "\n")
}

func renderBudget(report api.BudgetReport, reg *money.Registry, currency string, width int) string {
	if len(report.Rows) == 0 {
		return "No budget data."
	}
	amountWidth := 13
	nameWidth := width - 3*amountWidth - 10 - 8
	if nameWidth < 12 {
		nameWidth = 12
	}

	lines := []string{headerStyle.Render(fmt.Sprintf("%-*s  %*s  %*s  %*s  %8s",
		nameWidth, "Account", amountWidth, "Actual", amountWidth, "Budget", amountWidth, "Variance", "Var %"))}
	render := func(row api.BudgetRow) string {
		name := row.Account
		if name == "" {
			name = row.FullPath
		}
		line := fmt.Sprintf("%-*s  %*s  %*s  %*s  %7s%%",
			nameWidth, truncate(name, nameWidth),
			amountWidth, reg.Format(currency, row.ActualAmount),
			amountWidth, reg.Format(currency, row.BudgetAmount),
			amountWidth, reg.Format(currency, row.Variance),
			row.VariancePercentage.StringFixed(1))
		if row.IsOverBudget {
			return overStyle.Render(line)
		}
		return line
	}
	for _, row := range report.Rows {
		lines = append(lines, render(row))
	}
	lines = append(lines, strings.Repeat("─", min(width, 40)))
	lines = append(lines, render(report.Totals))
	return strings.Join(lines, "\n")
}

func renderDiffTotals(totals ledger.DiffTotals, reg *money.Registry, currency string) string {
	sign := ""
	if totals.Delta.Sign() > 0 {
		sign = "+"
	}
	return fmt.Sprintf("Total: %s → %s (%s%s, %s%%)",
		reg.Format(currency, totals.A),
		reg.Format(currency, totals.B),
		sign,
		reg.Format(currency, totals.Delta),
		totals.Percent.StringFixed(1))
}

func splitPath(path string) []string {
	return strings.Split(path, ledger.PathSeparator)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}

func padLeft(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
