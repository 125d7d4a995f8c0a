package rates

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
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchLiveTable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"base":"BRL","rates":{"BRL":1,"USD":5.25}}`))
	}))
	t.Cleanup(srv.Close)

	table := NewFetcher(srv.URL, time.Second, discard()).Fetch(context.Background())
	require.Equal(t, "BRL", table.Base)
	require.True(t, table.Rates["USD"].Equal(decimal.RequireFromString("5.25")))
}

func TestFetchFailureFallsBackToDefaults(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	table := NewFetcher(srv.URL, time.Second, discard()).Fetch(context.Background())
	require.Equal(t, Defaults().Base, table.Base)
	require.True(t, table.Rates["USD"].Equal(Defaults().Rates["USD"]))
}

func TestConvert(t *testing.T) {
	t.Parallel()
	table := Table{Base: "BRL", Rates: map[string]decimal.Decimal{
		"BRL": decimal.NewFromInt(1),
		"USD": decimal.NewFromInt(5),
	}}

	got := table.Convert(decimal.NewFromInt(10), "USD", "BRL")
	require.True(t, got.Equal(decimal.NewFromInt(50)))

	// Unknown codes degrade to 1:1 rather than erroring.
	same := table.Convert(decimal.NewFromInt(7), "XXX", "BRL")
	require.True(t, same.Equal(decimal.NewFromInt(7)))
}
