package tui

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/saldotui/saldotui/internal/ledger"
	"github.com/saldotui/saldotui/internal/money"
)

func buildForest(t *testing.T, records []ledger.Record) []*ledger.Account {
	t.Helper()
	norm := ledger.NewNormalizer(language.BrazilianPortuguese)
	return ledger.Aggregate(norm.Normalize(records, ledger.ShapeFlat))
}

func brl(s string) map[string]decimal.Decimal {
	return map[string]decimal.Decimal{"BRL": decimal.RequireFromString(s)}
}

func sampleForest(t *testing.T) []*ledger.Account {
	t.Helper()
	return buildForest(t, []ledger.Record{
		{Name: "Mercado", FullPath: "Despesas:Mercado", Amounts: brl("320.50")},
		{Name: "Transporte", FullPath: "Despesas:Transporte", Amounts: brl("89.90")},
		{Name: "Corrente", FullPath: "Líquido:Corrente", Amounts: brl("1500")},
	})
}

func TestTreeViewLiquidoStartsCollapsed(t *testing.T) {
	t.Parallel()

	tv := NewTreeView()
	tv.SetAccounts(sampleForest(t))

	require.True(t, tv.Expanded("Despesas"))
	require.False(t, tv.Expanded("Líquido"))
}

func TestTreeViewToggleIsLocal(t *testing.T) {
	t.Parallel()

	tv := NewTreeView()
	tv.SetAccounts(sampleForest(t))

	// cursor starts on Despesas
	require.Equal(t, "Despesas", tv.Selected().Name)
	tv.Toggle()
	require.False(t, tv.Expanded("Despesas"))
	// collapsing one root leaves the other alone
	require.False(t, tv.Expanded("Líquido"))

	tv.Toggle()
	require.True(t, tv.Expanded("Despesas"))
}

func TestTreeViewToggleOnLeafIsNoop(t *testing.T) {
	t.Parallel()

	tv := NewTreeView()
	tv.SetAccounts(sampleForest(t))

	tv.CursorDown()
	leaf := tv.Selected()
	require.True(t, leaf.Leaf())
	tv.Toggle()
	require.True(t, tv.Expanded(leaf.FullPath))
}

func TestTreeViewCursorBounds(t *testing.T) {
	t.Parallel()

	tv := NewTreeView()
	tv.SetAccounts(sampleForest(t))

	tv.CursorUp()
	require.Equal(t, "Despesas", tv.Selected().Name)

	// Despesas, Mercado, Transporte, Líquido (collapsed, children hidden)
	for i := 0; i < 10; i++ {
		tv.CursorDown()
	}
	require.Equal(t, "Líquido", tv.Selected().Name)
}

func TestTreeViewCollapseHidesDescendants(t *testing.T) {
	t.Parallel()

	tv := NewTreeView()
	tv.SetAccounts(sampleForest(t))
	reg := money.NewRegistry(language.BrazilianPortuguese, nil)

	out := tv.View(80, 20, reg, false)
	require.Contains(t, out, "Mercado")
	require.NotContains(t, out, "Corrente")

	tv.Toggle() // collapse Despesas
	out = tv.View(80, 20, reg, false)
	require.NotContains(t, out, "Mercado")
}

func TestTreeViewConnectorLines(t *testing.T) {
	t.Parallel()

	require.Equal(t, "└─ ", connector(nil, true))
	require.Equal(t, "├─ ", connector(nil, false))
	require.Equal(t, "│  ├─ ", connector([]bool{false}, false))
	require.Equal(t, "   └─ ", connector([]bool{true}, true))
}

func TestTreeViewSetAccountsResetsState(t *testing.T) {
	t.Parallel()

	tv := NewTreeView()
	tv.SetAccounts(sampleForest(t))
	tv.CursorDown()
	tv.CursorDown()
	tv.Toggle()

	tv.SetAccounts(sampleForest(t))
	require.Equal(t, "Despesas", tv.Selected().Name)
	require.True(t, tv.Expanded("Despesas"))
	require.False(t, tv.Expanded("Líquido"))
}

func TestTreeViewViewScrollsToCursor(t *testing.T) {
	t.Parallel()

	records := make([]ledger.Record, 0, 12)
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		records = append(records, ledger.Record{Name: name, FullPath: "Despesas:" + name, Amounts: brl("1")})
	}
	tv := NewTreeView()
	tv.SetAccounts(buildForest(t, records))
	reg := money.NewRegistry(language.AmericanEnglish, nil)

	for i := 0; i < 12; i++ {
		tv.CursorDown()
	}
	out := tv.View(80, 4, reg, true)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[len(lines)-1], "L")
	require.Contains(t, lines[len(lines)-1], "> ")
}

func TestTreeViewEmpty(t *testing.T) {
	t.Parallel()

	tv := NewTreeView()
	require.True(t, tv.Empty())
	require.Nil(t, tv.Selected())
	require.Equal(t, "No accounts.", tv.View(80, 10, money.NewRegistry(language.AmericanEnglish, nil), false))
}
