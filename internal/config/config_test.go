package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SALDOTUI_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, "pt-BR", cfg.UI.Locale)
	require.Equal(t, "BRL", cfg.UI.Currency)
	require.Equal(t, 10, cfg.UI.MaxChartRows)
	require.Equal(t, 5*time.Minute, cfg.Rates.Refresh)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
base_url = "http://ledger.local:9000"
timeout = "3s"

[ui]
locale = "en-US"
max_chart_rows = 6
`), 0o644))
	t.Setenv("SALDOTUI_CONFIG", path)
	t.Setenv("SALDOTUI_UI_CURRENCY", "USD")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://ledger.local:9000", cfg.API.BaseURL)
	require.Equal(t, 3*time.Second, cfg.API.Timeout)
	require.Equal(t, "en-US", cfg.UI.Locale)
	require.Equal(t, 6, cfg.UI.MaxChartRows)
	require.Equal(t, "USD", cfg.UI.Currency)
}

func TestLoadRejectsTinyChartCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\nmax_chart_rows = 1\n"), 0o644))
	t.Setenv("SALDOTUI_CONFIG", path)

	_, err := Load()
	require.Error(t, err)
}
