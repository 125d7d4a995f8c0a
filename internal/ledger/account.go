// Package ledger rebuilds account trees from API payloads and computes
// exact-decimal roll-up balances per currency.
package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// PathSeparator splits an account's full path into its ancestor chain.
const PathSeparator = ":"

// Record is one account as delivered by the ledger API, after the wire
// layer has decoded it. Children is non-empty only for nested payloads.
type Record struct {
	Name            string
	FullPath        string
	Amounts         map[string]decimal.Decimal
	Cleared         map[string]decimal.Decimal
	LastClearedDate string
	Children        []Record
}

// Account is one node of the normalized tree. A node exclusively owns its
// children; trees are never shared and never mutated after construction.
// Aggregation produces a fresh tree instead.
type Account struct {
	Name     string
	FullPath string
	// Amounts maps currency code to the node's value. Before aggregation it
	// holds only authoritative values; Aggregate returns a tree where every
	// node carries an entry for every currency seen in its subtree.
	Amounts map[string]decimal.Decimal
	// Cleared is the bank-reconciled series, tracked in parallel to Amounts.
	Cleared         map[string]decimal.Decimal
	LastClearedDate string
	// Authoritative marks nodes present in the source data, as opposed to
	// parents synthesized from a path prefix.
	Authoritative bool
	Children      []*Account

	aggregated bool
}

// Segments returns the colon-split path segments.
func (a *Account) Segments() []string {
	return strings.Split(a.FullPath, PathSeparator)
}

// Leaf reports whether the node has no children.
func (a *Account) Leaf() bool {
	return len(a.Children) == 0
}

// Amount returns the node's value for a currency after aggregation. Calling
// it on a non-aggregated tree is a programming error and panics; every
// display path runs on aggregated trees only.
func (a *Account) Amount(currency string) decimal.Decimal {
	if !a.aggregated {
		panic("ledger: Amount called on non-aggregated account " + a.FullPath)
	}
	return a.Amounts[currency]
}

// ClearedAmount is the aggregated reconciled value for a currency. Same
// precondition as Amount.
func (a *Account) ClearedAmount(currency string) decimal.Decimal {
	if !a.aggregated {
		panic("ledger: ClearedAmount called on non-aggregated account " + a.FullPath)
	}
	return a.Cleared[currency]
}

// Currencies lists the currency codes with a non-zero aggregated amount on
// this node, sorted. Zero rows are suppressed from display.
func (a *Account) Currencies() []string {
	out := make([]string, 0, len(a.Amounts))
	for code, v := range a.Amounts {
		if v.IsZero() {
			continue
		}
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Records converts a tree back into nested records, used to re-feed
// normalization and by tests.
func Records(roots []*Account) []Record {
	out := make([]Record, 0, len(roots))
	for _, a := range roots {
		out = append(out, a.record())
	}
	return out
}

func (a *Account) record() Record {
	r := Record{
		Name:            a.Name,
		FullPath:        a.FullPath,
		Amounts:         copyAmounts(a.Amounts),
		Cleared:         copyAmounts(a.Cleared),
		LastClearedDate: a.LastClearedDate,
	}
	for _, c := range a.Children {
		r.Children = append(r.Children, c.record())
	}
	return r
}

func copyAmounts(in map[string]decimal.Decimal) map[string]decimal.Decimal {
	if in == nil {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func parentPath(path string) string {
	i := strings.LastIndex(path, PathSeparator)
	if i < 0 {
		return ""
	}
	return path[:i]
}

func lastSegment(path string) string {
	i := strings.LastIndex(path, PathSeparator)
	if i < 0 {
		return path
	}
	return path[i+len(PathSeparator):]
}
