package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.App.WatchdogIntervalSec != 60 {
		t.Errorf("watchdog interval = %d, want 60", cfg.App.WatchdogIntervalSec)
	}
	if cfg.Market.Symbol != "ETH/BTC" || cfg.Market.Base != "ETH" || cfg.Market.Quote != "BTC" {
		t.Errorf("market = %+v, want ETH/BTC split into ETH and BTC", cfg.Market)
	}
	if cfg.Strategy.MinLotSize != 0.003 {
		t.Errorf("min lot size = %v, want 0.003", cfg.Strategy.MinLotSize)
	}
	if cfg.Strategy.BootstrapPolicy != PolicyLowInventory {
		t.Errorf("bootstrap policy = %q, want %q", cfg.Strategy.BootstrapPolicy, PolicyLowInventory)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("storage driver = %q, want sqlite", cfg.Storage.Driver)
	}
}

func TestLoadDerivesMarketCoins(t *testing.T) {
	path := writeConfig(t, `
[market]
symbol = "ltc/usd"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Market.Symbol != "LTC/USD" || cfg.Market.Base != "LTC" || cfg.Market.Quote != "USD" {
		t.Errorf("market = %+v, want normalized LTC/USD", cfg.Market)
	}
}

func TestLoadRejectsBadSymbol(t *testing.T) {
	path := writeConfig(t, `
[market]
symbol = "ETHBTC"
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for symbol without separator")
	}
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	path := writeConfig(t, `
[strategy]
bootstrap_policy = "sometimes"
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown bootstrap policy")
	}
}

func TestLoadRejectsPostgresWithoutDSN(t *testing.T) {
	path := writeConfig(t, `
[storage]
driver = "postgres"
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for postgres driver without dsn")
	}
}
