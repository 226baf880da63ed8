package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	PolicyLowInventory = "low-inventory" // bootstrap when no lot OR free base < buy amount
	PolicyNoLot        = "no-lot"        // bootstrap only when no lot exists
)

type Config struct {
	App struct {
		WatchdogIntervalSec int `toml:"watchdog_interval_sec"`
	} `toml:"app"`

	Market struct {
		Symbol string `toml:"symbol"` // e.g. "ETH/BTC"

		// derived from Symbol during validation
		Base  string `toml:"-"`
		Quote string `toml:"-"`
	} `toml:"market"`

	Strategy struct {
		StepDistance float64 `toml:"step_distance"`
		UsedEquity   float64 `toml:"used_equity"`
		MinLotSize   float64 `toml:"min_lot_size"`
		TakeProfit   float64 `toml:"take_profit"`

		// BootstrapPolicy picks the bootstrap branch condition; the two
		// observed variants behave differently when inventory runs low, so
		// the choice is explicit rather than implied.
		BootstrapPolicy string `toml:"bootstrap_policy"`
	} `toml:"strategy"`

	Exchange struct {
		RestURL    string `toml:"rest_url"`
		WsURL      string `toml:"ws_url"`
		SubAccount string `toml:"sub_account"`

		// loaded from FTX_KEY / FTX_SECRET, never from the config file
		Key    string `toml:"-"`
		Secret string `toml:"-"`
	} `toml:"exchange"`

	Storage struct {
		Driver      string `toml:"driver"` // "sqlite" or "postgres"
		SQLitePath  string `toml:"sqlite_path"`
		PostgresDSN string `toml:"postgres_dsn"`

		Redis struct {
			Enabled bool   `toml:"enabled"`
			Addr    string `toml:"addr"`
			Prefix  string `toml:"prefix"`
		} `toml:"redis"`
	} `toml:"storage"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	loadSecrets(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.WatchdogIntervalSec <= 0 {
		cfg.App.WatchdogIntervalSec = 60
	}
	if cfg.Market.Symbol == "" {
		cfg.Market.Symbol = "ETH/BTC"
	}
	if cfg.Strategy.StepDistance <= 0 {
		cfg.Strategy.StepDistance = 0.001
	}
	if cfg.Strategy.UsedEquity <= 0 {
		cfg.Strategy.UsedEquity = 0.01
	}
	if cfg.Strategy.MinLotSize <= 0 {
		cfg.Strategy.MinLotSize = 0.003
	}
	if cfg.Strategy.TakeProfit <= 0 {
		cfg.Strategy.TakeProfit = 0.001
	}
	if cfg.Strategy.BootstrapPolicy == "" {
		cfg.Strategy.BootstrapPolicy = PolicyLowInventory
	}
	if cfg.Exchange.RestURL == "" {
		cfg.Exchange.RestURL = "https://ftx.com/api"
	}
	if cfg.Exchange.WsURL == "" {
		cfg.Exchange.WsURL = "wss://ftx.com/ws/"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "database/data.sqlite3"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "gridbot"
	}
}

func loadSecrets(cfg *Config) {
	// .env is optional; real deployments set the variables directly
	_ = godotenv.Load()
	cfg.Exchange.Key = os.Getenv("FTX_KEY")
	cfg.Exchange.Secret = os.Getenv("FTX_SECRET")
}

func validate(cfg *Config) error {
	sym := strings.ToUpper(strings.TrimSpace(cfg.Market.Symbol))
	base, quote, ok := strings.Cut(sym, "/")
	if !ok || base == "" || quote == "" {
		return fmt.Errorf("market.symbol %q is not of the form BASE/QUOTE", cfg.Market.Symbol)
	}
	cfg.Market.Symbol = sym
	cfg.Market.Base = base
	cfg.Market.Quote = quote

	switch cfg.Strategy.BootstrapPolicy {
	case PolicyLowInventory, PolicyNoLot:
	default:
		return fmt.Errorf("strategy.bootstrap_policy %q: must be %q or %q",
			cfg.Strategy.BootstrapPolicy, PolicyLowInventory, PolicyNoLot)
	}

	switch cfg.Storage.Driver {
	case "sqlite":
	case "postgres":
		if strings.TrimSpace(cfg.Storage.PostgresDSN) == "" {
			return errors.New("storage.postgres_dsn empty but driver is postgres")
		}
	default:
		return fmt.Errorf("storage.driver %q: must be sqlite or postgres", cfg.Storage.Driver)
	}

	if cfg.Storage.Redis.Enabled && strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
		return errors.New("storage.redis.addr empty but enabled")
	}
	return nil
}
