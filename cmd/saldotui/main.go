package main

import (
	"context"
	"fmt"
	stdlog "log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/language"

	"github.com/saldotui/saldotui/internal/api"
	"github.com/saldotui/saldotui/internal/config"
	"github.com/saldotui/saldotui/internal/ledger"
	"github.com/saldotui/saldotui/internal/log"
	"github.com/saldotui/saldotui/internal/money"
	"github.com/saldotui/saldotui/internal/rates"
	"github.com/saldotui/saldotui/internal/tui"
)

// currencyFormats covers the currencies the backend is known to emit.
// Anything else falls back to money.DefaultFormat.
var currencyFormats = map[string]money.Format{
	"BRL": {MinFraction: 2, MaxFraction: 2},
	"USD": {MinFraction: 2, MaxFraction: 2},
	"EUR": {MinFraction: 2, MaxFraction: 2},
	"BTC": {MinFraction: 0, MaxFraction: 8, Symbol: "₿"},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("config: %v", err)
	}

	logger, closer, err := log.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		stdlog.Fatalf("open log: %v", err)
	}
	defer closer.Close()

	locale, err := language.Parse(cfg.UI.Locale)
	if err != nil {
		logger.Warn("invalid locale, using pt-BR", "locale", cfg.UI.Locale, "err", err)
		locale = language.BrazilianPortuguese
	}

	registry := money.NewRegistry(locale, currencyFormats)
	normalizer := ledger.NewNormalizer(locale)
	client := api.New(cfg.API.BaseURL, cfg.API.Timeout, registry, log.Component(logger, "api"))

	var fetcher *rates.Fetcher
	if cfg.Rates.URL != "" {
		fetcher = rates.NewFetcher(cfg.Rates.URL, cfg.API.Timeout, log.Component(logger, "rates"))
	}

	logger.Info("starting", "base_url", cfg.API.BaseURL, "locale", locale.String(), "currency", cfg.UI.Currency)

	app := tui.New(ctx, cfg, client, registry, normalizer, fetcher, logger)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}
