// Package api is the client for the backend ledger API. It decodes wire
// payloads into canonical ledger records at this boundary; nothing past it
// sniffs response shapes.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saldotui/saldotui/internal/ledger"
	"github.com/saldotui/saldotui/internal/money"
)

// Client calls the ledger API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	registry   *money.Registry
	log        *slog.Logger
}

// New builds a client for the given base URL. The registry parses the
// pre-formatted amount strings the balance endpoint returns.
func New(baseURL string, timeout time.Duration, registry *money.Registry, log *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		registry:   registry,
		log:        log,
	}
}

// Balance fetches the account balances, optionally scoped to one account
// path. The response is either a flat array or a single nested root; the
// shape is tagged here and never re-detected downstream.
func (c *Client) Balance(ctx context.Context, accountPath string) (Balance, error) {
	q := url.Values{}
	if accountPath != "" {
		q.Set("account", accountPath)
	}
	raw, err := c.get(ctx, "/api/balance", q)
	if err != nil {
		return Balance{}, err
	}
	return c.decodeBalance(raw)
}

func (c *Client) decodeBalance(raw []byte) (Balance, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var flat []accountPayload
		if err := json.Unmarshal(raw, &flat); err != nil {
			return Balance{}, fmt.Errorf("decoding flat balance: %w", err)
		}
		records := make([]ledger.Record, 0, len(flat))
		shape := ledger.ShapeFlat
		for _, p := range flat {
			// A list of roots that already carry children is a nested
			// forest, not a flat path listing.
			if len(p.Children) > 0 {
				shape = ledger.ShapeNested
			}
			records = append(records, p.record(c.registry))
		}
		return Balance{Records: records, Shape: shape}, nil
	}

	var root accountPayload
	if err := json.Unmarshal(raw, &root); err != nil {
		return Balance{}, fmt.Errorf("decoding nested balance: %w", err)
	}
	return Balance{Records: []ledger.Record{root.record(c.registry)}, Shape: ledger.ShapeNested}, nil
}

// BalanceForMonth fetches balances scoped to one month ("2006-01"), used
// by the period diff view.
func (c *Client) BalanceForMonth(ctx context.Context, month string) (Balance, error) {
	q := url.Values{}
	q.Set("month", month)
	raw, err := c.get(ctx, "/api/balance", q)
	if err != nil {
		return Balance{}, err
	}
	return c.decodeBalance(raw)
}

// Transactions fetches one account's transaction listing.
func (c *Client) Transactions(ctx context.Context, accountPath string) ([]Transaction, error) {
	q := url.Values{}
	q.Set("account", accountPath)
	raw, err := c.get(ctx, "/api/transactions", q)
	if err != nil {
		return nil, err
	}
	var out []Transaction
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding transactions: %w", err)
	}
	return out, nil
}

// CashFlow fetches the cash-flow subtotals.
func (c *Client) CashFlow(ctx context.Context) ([]CashFlowRow, error) {
	raw, err := c.get(ctx, "/api/cashflow", nil)
	if err != nil {
		return nil, err
	}
	var out []CashFlowRow
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decoding cash flow: %w", err)
	}
	return out, nil
}

// Budget fetches the budget report.
func (c *Client) Budget(ctx context.Context) (BudgetReport, error) {
	raw, err := c.get(ctx, "/api/budget", nil)
	if err != nil {
		return BudgetReport{}, err
	}
	var out BudgetReport
	if err := json.Unmarshal(raw, &out); err != nil {
		return BudgetReport{}, fmt.Errorf("decoding budget: %w", err)
	}
	return out, nil
}

// Health probes the backend. Callers treat failures as non-fatal.
func (c *Client) Health(ctx context.Context) (Health, error) {
	raw, err := c.get(ctx, "/health", nil)
	if err != nil {
		return Health{}, err
	}
	var out Health
	if err := json.Unmarshal(raw, &out); err != nil {
		return Health{}, fmt.Errorf("decoding health: %w", err)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed", "path", path, "request_id", reqID, "err", err)
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}
	c.log.Debug("request done", "path", path, "request_id", reqID, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, snippet(body))
	}
	return body, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 120 {
		s = s[:120] + "…"
	}
	return s
}
