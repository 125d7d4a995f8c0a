package api

import (
	"github.com/shopspring/decimal"

	"github.com/saldotui/saldotui/internal/ledger"
	"github.com/saldotui/saldotui/internal/money"
)

// accountPayload mirrors one account in a balance response. Current servers
// send amounts as pre-formatted per-currency strings; legacy ones send one
// bare number. Nested responses carry children.
type accountPayload struct {
	Name            string            `json:"name"`
	FullPath        string            `json:"fullPath"`
	Amounts         map[string]string `json:"amounts"`
	Amount          *float64          `json:"amount"`
	ClearedAmounts  map[string]string `json:"clearedAmounts"`
	ClearedAmount   *float64          `json:"clearedAmount"`
	LastClearedDate string            `json:"lastClearedDate"`
	Children        []accountPayload  `json:"children"`
}

// LegacyCurrency is the currency assumed for legacy single-number amounts.
const LegacyCurrency = "BRL"

func (p accountPayload) record(reg *money.Registry) ledger.Record {
	r := ledger.Record{
		Name:            p.Name,
		FullPath:        p.FullPath,
		Amounts:         parseAmountMap(reg, p.Amounts),
		Cleared:         parseAmountMap(reg, p.ClearedAmounts),
		LastClearedDate: p.LastClearedDate,
	}
	if r.Amounts == nil && p.Amount != nil {
		r.Amounts = map[string]decimal.Decimal{LegacyCurrency: decimal.NewFromFloat(*p.Amount)}
	}
	if r.Cleared == nil && p.ClearedAmount != nil {
		r.Cleared = map[string]decimal.Decimal{LegacyCurrency: decimal.NewFromFloat(*p.ClearedAmount)}
	}
	for _, c := range p.Children {
		r.Children = append(r.Children, c.record(reg))
	}
	return r
}

func parseAmountMap(reg *money.Registry, in map[string]string) map[string]decimal.Decimal {
	if in == nil {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(in))
	for code, formatted := range in {
		// Malformed values parse to zero, matching the dashboard's
		// degrade-to-empty behavior.
		out[code] = reg.Parse(code, formatted)
	}
	return out
}

// Balance is a decoded balance response: the canonical records plus the
// shape tag decided here, at the wire boundary.
type Balance struct {
	Records []ledger.Record
	Shape   ledger.Shape
}

// Transaction is one row of an account's transaction listing.
type Transaction struct {
	Date           string          `json:"date"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// CashFlowRow is one cash-flow subtotal, keyed by a colon-delimited path in
// Description.
type CashFlowRow struct {
	Description    string          `json:"description"`
	Inflow         decimal.Decimal `json:"inflow_amount"`
	Outflow        decimal.Decimal `json:"outflow_amount"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// CashFlowRecords converts subtotal rows into ledger records (net flow per
// path, in one currency) so they reuse the same flat-to-tree normalization
// as accounts.
func CashFlowRecords(rows []CashFlowRow, currency string) []ledger.Record {
	out := make([]ledger.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, ledger.Record{
			FullPath: row.Description,
			Amounts: map[string]decimal.Decimal{
				currency: row.Inflow.Sub(row.Outflow),
			},
		})
	}
	return out
}

// BudgetRow is one account's budget line.
type BudgetRow struct {
	Account            string          `json:"account"`
	FullPath           string          `json:"fullPath"`
	ActualAmount       decimal.Decimal `json:"actualAmount"`
	BudgetAmount       decimal.Decimal `json:"budgetAmount"`
	Variance           decimal.Decimal `json:"variance"`
	VariancePercentage decimal.Decimal `json:"variancePercentage"`
	IsOverBudget       bool            `json:"isOverBudget"`
}

// BudgetReport is the budget endpoint's full payload.
type BudgetReport struct {
	Rows   []BudgetRow `json:"rows"`
	Totals BudgetRow   `json:"totals"`
}

// Health is the health endpoint's payload.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}
