package ledger

import "github.com/shopspring/decimal"

// Aggregate computes roll-up totals and returns a new forest; the input is
// left untouched. For every currency observed anywhere in a subtree, each
// node ends up with a value: its own stored one when the node carried that
// currency in the authoritative input, otherwise the exact decimal sum of
// its children's values (zero when no child carries the currency). The
// cleared series gets the same treatment.
//
// The resulting nodes unlock Amount and ClearedAmount; reading those off a
// non-aggregated tree panics.
func Aggregate(roots []*Account) []*Account {
	out := make([]*Account, 0, len(roots))
	for _, a := range roots {
		folded, _ := fold(a)
		out = append(out, folded)
	}
	return out
}

func fold(a *Account) (*Account, map[string]struct{}) {
	children := make([]*Account, 0, len(a.Children))
	currencies := make(map[string]struct{}, len(a.Amounts))
	for code := range a.Amounts {
		currencies[code] = struct{}{}
	}
	for code := range a.Cleared {
		currencies[code] = struct{}{}
	}
	for _, c := range a.Children {
		fc, sub := fold(c)
		children = append(children, fc)
		for code := range sub {
			currencies[code] = struct{}{}
		}
	}

	amounts := make(map[string]decimal.Decimal, len(currencies))
	cleared := make(map[string]decimal.Decimal, len(currencies))
	for code := range currencies {
		amounts[code] = resolve(a, code, a.Amounts, children, amountOf)
		cleared[code] = resolve(a, code, a.Cleared, children, clearedOf)
	}

	return &Account{
		Name:            a.Name,
		FullPath:        a.FullPath,
		Amounts:         amounts,
		Cleared:         cleared,
		LastClearedDate: a.LastClearedDate,
		Authoritative:   a.Authoritative,
		Children:        children,
		aggregated:      true,
	}, currencies
}

func amountOf(a *Account, code string) decimal.Decimal  { return a.Amounts[code] }
func clearedOf(a *Account, code string) decimal.Decimal { return a.Cleared[code] }

// resolve applies the precedence rule for one node and currency: an
// authoritative stored value wins; anything else is the sum of the children.
func resolve(a *Account, code string, stored map[string]decimal.Decimal, children []*Account, get func(*Account, string) decimal.Decimal) decimal.Decimal {
	if a.Authoritative {
		if v, ok := stored[code]; ok {
			return v
		}
	}
	sum := decimal.Zero
	for _, c := range children {
		sum = sum.Add(get(c, code))
	}
	return sum
}
