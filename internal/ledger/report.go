package ledger

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is one chart-ready account/amount pair.
type Row struct {
	Account string
	Amount  decimal.Decimal
	// Others marks the synthetic fold row; Folded is how many accounts it
	// absorbed.
	Others bool
	Folded int
}

// DiffRow is a month-over-month (or any two-period) per-account delta.
type DiffRow struct {
	Account string
	A, B    decimal.Decimal
	Delta   decimal.Decimal
	Others  bool
	Folded  int
}

// DiffTotals summarizes a diff: overall sums and the percent change from A
// to B. Percent is zero when the baseline is zero.
type DiffTotals struct {
	A, B    decimal.Decimal
	Delta   decimal.Decimal
	Percent decimal.Decimal
}

// ExpensePath reports whether a full path belongs to the expense subtree.
// The source ledgers use "Despesas" or "Expenses" roots, with a
// case-insensitive "expense" substring as the catch-all.
func ExpensePath(fullPath string) bool {
	root := fullPath
	if i := strings.Index(fullPath, PathSeparator); i >= 0 {
		root = fullPath[:i]
	}
	lower := FoldName(root)
	return lower == "despesas" || lower == "expenses" || strings.Contains(lower, "expense")
}

// Resolver reduces one account's multi-currency amounts to a single value,
// typically by converting everything into the display currency.
type Resolver func(*Account) decimal.Decimal

// CurrencyResolver resolves to the account's amount in one currency,
// ignoring the others.
func CurrencyResolver(currency string) Resolver {
	return func(a *Account) decimal.Decimal { return a.Amount(currency) }
}

// ExpenseRows flattens every node of an aggregated forest whose path
// matches the predicate into rows, recursively including nested
// descendants, using the absolute value of the resolved amount. Rows come
// back sorted descending by amount.
func ExpenseRows(roots []*Account, resolve Resolver, match func(string) bool) []Row {
	var rows []Row
	var walk func(a *Account)
	walk = func(a *Account) {
		if match(a.FullPath) {
			rows = append(rows, Row{Account: a.FullPath, Amount: resolve(a).Abs()})
		}
		for _, c := range a.Children {
			walk(c)
		}
	}
	for _, a := range roots {
		walk(a)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Amount.GreaterThan(rows[j].Amount)
	})
	return rows
}

// CapRows applies the top-N-plus-Others policy: when more than limit rows
// exist, the first limit-1 survive and the tail folds into one synthetic
// row whose amount is the exact sum of everything it absorbed.
func CapRows(rows []Row, limit int) []Row {
	if limit <= 1 || len(rows) <= limit {
		return rows
	}
	kept := make([]Row, limit-1, limit)
	copy(kept, rows[:limit-1])
	folded := rows[limit-1:]
	sum := decimal.Zero
	for _, r := range folded {
		sum = sum.Add(r.Amount)
	}
	return append(kept, Row{
		Account: fmt.Sprintf("Others (%d accounts)", len(folded)),
		Amount:  sum,
		Others:  true,
		Folded:  len(folded),
	})
}

// Diff unions two row sets on account name and computes per-account deltas
// (B minus A), sorted by absolute delta descending. The same cap policy folds
// the tail, carrying the folded rows' constituent A and B sums, not just
// the delta. Totals cover the full (unfolded) sets.
func Diff(a, b []Row, limit int) ([]DiffRow, DiffTotals) {
	byAccount := make(map[string]*DiffRow)
	var order []string
	add := func(rows []Row, set func(*DiffRow, decimal.Decimal)) {
		for _, r := range rows {
			d, ok := byAccount[r.Account]
			if !ok {
				d = &DiffRow{Account: r.Account}
				byAccount[r.Account] = d
				order = append(order, r.Account)
			}
			set(d, r.Amount)
		}
	}
	add(a, func(d *DiffRow, v decimal.Decimal) { d.A = v })
	add(b, func(d *DiffRow, v decimal.Decimal) { d.B = v })

	rows := make([]DiffRow, 0, len(order))
	totals := DiffTotals{A: decimal.Zero, B: decimal.Zero}
	for _, name := range order {
		d := byAccount[name]
		d.Delta = d.B.Sub(d.A)
		totals.A = totals.A.Add(d.A)
		totals.B = totals.B.Add(d.B)
		rows = append(rows, *d)
	}
	totals.Delta = totals.B.Sub(totals.A)
	if !totals.A.IsZero() {
		totals.Percent = totals.Delta.Div(totals.A).Mul(decimal.NewFromInt(100))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Delta.Abs().GreaterThan(rows[j].Delta.Abs())
	})

	if limit > 1 && len(rows) > limit {
		kept := rows[:limit-1]
		folded := rows[limit-1:]
		other := DiffRow{Others: true, Folded: len(folded)}
		for _, d := range folded {
			other.A = other.A.Add(d.A)
			other.B = other.B.Add(d.B)
		}
		other.Delta = other.B.Sub(other.A)
		other.Account = fmt.Sprintf("Others (%d accounts)", len(folded))
		rows = append(append([]DiffRow{}, kept...), other)
	}
	return rows, totals
}
