// Package rates fetches exchange rates on a timer and converts amounts into
// the display currency. Fetch failures fall back to built-in defaults; the
// dashboard never surfaces a rates error.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Table maps currency codes to their value in the base currency.
type Table struct {
	Base  string
	Rates map[string]decimal.Decimal
}

// Defaults are the hardcoded fallback rates used whenever the live fetch
// fails or has not completed yet.
func Defaults() Table {
	return Table{
		Base: "BRL",
		Rates: map[string]decimal.Decimal{
			"BRL": decimal.NewFromInt(1),
			"USD": decimal.RequireFromString("5.40"),
			"EUR": decimal.RequireFromString("6.10"),
			"BTC": decimal.RequireFromString("590000"),
		},
	}
}

// Convert expresses an amount of one currency in another. Unknown codes
// convert at 1:1 so display degrades instead of erroring.
func (t Table) Convert(v decimal.Decimal, from, to string) decimal.Decimal {
	if from == to {
		return v
	}
	fromRate, okFrom := t.Rates[from]
	toRate, okTo := t.Rates[to]
	if !okFrom || !okTo || toRate.IsZero() {
		return v
	}
	return v.Mul(fromRate).Div(toRate)
}

type payload struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Fetcher retrieves the live table from a rates endpoint.
type Fetcher struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

// NewFetcher builds a fetcher for the given URL.
func NewFetcher(url string, timeout time.Duration, log *slog.Logger) *Fetcher {
	return &Fetcher{url: url, httpClient: &http.Client{Timeout: timeout}, log: log}
}

// Fetch returns the live table, or Defaults on any failure. The failure is
// logged and swallowed; periodic refresh just tries again next tick.
func (f *Fetcher) Fetch(ctx context.Context) Table {
	t, err := f.fetch(ctx)
	if err != nil {
		f.log.Warn("rates fetch failed, using defaults", "err", err)
		return Defaults()
	}
	return t
}

func (f *Fetcher) fetch(ctx context.Context) (Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return Table{}, fmt.Errorf("building rates request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Table{}, fmt.Errorf("requesting rates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Table{}, fmt.Errorf("rates endpoint returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Table{}, fmt.Errorf("reading rates response: %w", err)
	}
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return Table{}, fmt.Errorf("decoding rates: %w", err)
	}
	if len(p.Rates) == 0 {
		return Table{}, fmt.Errorf("rates response carried no rates")
	}
	return Table{Base: p.Base, Rates: p.Rates}, nil
}
