package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/saldotui/saldotui/internal/ledger"
	"github.com/saldotui/saldotui/internal/money"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	reg := money.NewRegistry(language.AmericanEnglish, map[string]money.Format{
		"BRL": {MinFraction: 2, MaxFraction: 2},
		"USD": {MinFraction: 2, MaxFraction: 2},
	})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(srv.URL, 2*time.Second, reg, log)
}

func TestBalanceFlatShape(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/balance", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`[
			{"fullPath":"Despesas:Casa","amounts":{"BRL":"1,234.56"}},
			{"fullPath":"Despesas:Carro","amounts":{"BRL":"99.10","USD":"3.00"}}
		]`))
	})

	got, err := c.Balance(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, ledger.ShapeFlat, got.Shape)
	require.Len(t, got.Records, 2)
	require.True(t, got.Records[0].Amounts["BRL"].Equal(decimal.RequireFromString("1234.56")))
	require.True(t, got.Records[1].Amounts["USD"].Equal(decimal.RequireFromString("3")))
}

func TestBalanceNestedShape(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Ativos", r.URL.Query().Get("account"))
		_, _ = w.Write([]byte(`{
			"name":"Ativos","fullPath":"Ativos",
			"children":[{"name":"Banco","fullPath":"Ativos:Banco","amounts":{"BRL":"10.50"}}]
		}`))
	})

	got, err := c.Balance(context.Background(), "Ativos")
	require.NoError(t, err)
	require.Equal(t, ledger.ShapeNested, got.Shape)
	require.Len(t, got.Records, 1)
	require.Len(t, got.Records[0].Children, 1)
	require.True(t, got.Records[0].Children[0].Amounts["BRL"].Equal(decimal.RequireFromString("10.5")))
}

func TestBalanceListOfRootsWithChildren(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"name":"Ativos","fullPath":"Ativos",
			 "children":[{"name":"Banco","fullPath":"Ativos:Banco","amounts":{"BRL":"10.50"}}]},
			{"name":"Despesas","fullPath":"Despesas",
			 "children":[{"name":"Casa","fullPath":"Despesas:Casa","amounts":{"BRL":"99.10"}}]}
		]`))
	})

	got, err := c.Balance(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, ledger.ShapeNested, got.Shape)
	require.Len(t, got.Records, 2)

	roots := ledger.Aggregate(ledger.NewNormalizer(language.BrazilianPortuguese).Normalize(got.Records, got.Shape))
	require.Len(t, roots, 2)
	require.Len(t, roots[0].Children, 1)
	require.Equal(t, "Ativos:Banco", roots[0].Children[0].FullPath)
	require.True(t, roots[0].Amount("BRL").Equal(decimal.RequireFromString("10.5")))
}

func TestBalanceLegacyNumberAmount(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"fullPath":"Ativos:Banco","amount":250.75,"clearedAmount":200}]`))
	})

	got, err := c.Balance(context.Background(), "")
	require.NoError(t, err)
	rec := got.Records[0]
	require.True(t, rec.Amounts[LegacyCurrency].Equal(decimal.RequireFromString("250.75")))
	require.True(t, rec.Cleared[LegacyCurrency].Equal(decimal.RequireFromString("200")))
}

func TestBalanceMalformedAmountParsesToZero(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"fullPath":"Ativos:Banco","amounts":{"BRL":"garbage"}}]`))
	})

	got, err := c.Balance(context.Background(), "")
	require.NoError(t, err)
	require.True(t, got.Records[0].Amounts["BRL"].IsZero())
}

func TestTransactions(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/transactions", r.URL.Path)
		require.Equal(t, "Despesas:Casa:Luz", r.URL.Query().Get("account"))
		_, _ = w.Write([]byte(`[
			{"date":"2026-08-01","description":"Conta de luz","amount":-140.22,"runningBalance":-140.22}
		]`))
	})

	got, err := c.Transactions(context.Background(), "Despesas:Casa:Luz")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Conta de luz", got[0].Description)
	require.True(t, got[0].Amount.Equal(decimal.RequireFromString("-140.22")))
}

func TestCashFlowRecordsReuseFlatNormalization(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/cashflow", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"description":"Despesas:Casa","inflow_amount":0,"outflow_amount":150.40,"runningBalance":-150.40},
			{"description":"Receitas:Salario","inflow_amount":8000,"outflow_amount":0,"runningBalance":7849.60}
		]`))
	})

	rows, err := c.CashFlow(context.Background())
	require.NoError(t, err)
	records := CashFlowRecords(rows, "BRL")

	roots := ledger.Aggregate(ledger.NewNormalizer(language.BrazilianPortuguese).Normalize(records, ledger.ShapeFlat))
	require.Len(t, roots, 2)
	var total decimal.Decimal
	for _, root := range roots {
		total = total.Add(root.Amount("BRL"))
	}
	require.True(t, total.Equal(decimal.RequireFromString("7849.60")))
}

func TestBudget(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"rows":[{"account":"Casa","fullPath":"Despesas:Casa","actualAmount":120,"budgetAmount":100,"variance":20,"variancePercentage":20,"isOverBudget":true}],
			"totals":{"account":"Total","actualAmount":120,"budgetAmount":100,"variance":20,"variancePercentage":20,"isOverBudget":true}
		}`))
	})

	got, err := c.Budget(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	require.True(t, got.Rows[0].IsOverBudget)
	require.True(t, got.Totals.Variance.Equal(decimal.NewFromInt(20)))
}

func TestHealth(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok","timestamp":"2026-08-30T12:00:00Z","service":"ledger-api"}`))
	})

	got, err := c.Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", got.Status)
}

func TestServerErrorSurfacesStatus(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Balance(context.Background(), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}
