package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"tonpocket/internal/domain"
)

// Platform names accepted for the price feed source.
const (
	PlatformSimulate    = "simulate"
	PlatformBinance     = "binance"
	PlatformBybit       = "bybit"
	PlatformHyperliquid = "hyperliquid"
)

type Config struct {
	Nickname        string
	Listen          string
	Platform        string
	RefreshInterval time.Duration
	DepositLatency  time.Duration
	WithdrawLatency time.Duration
	SwapLatency     time.Duration
	NotificationTTL time.Duration
	DisplayRate     decimal.Decimal
	StableAssetID   string
	JournalCapacity int
	TLSDomains      []string
	Assets          []domain.Asset
}

type ConfigTmp struct {
	Nickname        string        `yaml:"nickname"`
	Listen          string        `yaml:"listen"`
	Platform        string        `yaml:"platform"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	DepositLatency  time.Duration `yaml:"deposit_latency"`
	WithdrawLatency time.Duration `yaml:"withdraw_latency"`
	SwapLatency     time.Duration `yaml:"swap_latency"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
	DisplayRateStr  string        `yaml:"display_rate,omitempty"`
	StableAssetID   string        `yaml:"stable_asset,omitempty"`
	JournalCapacity int           `yaml:"journal_capacity,omitempty"`
	TLSDomains      []string      `yaml:"tls_domains,omitempty"`
	Assets          []AssetTmp    `yaml:"assets"`
}

type AssetTmp struct {
	ID        string `yaml:"id"`
	Symbol    string `yaml:"symbol"`
	Name      string `yaml:"name"`
	Balance   string `yaml:"balance,omitempty"`
	PriceUsd  string `yaml:"price_usd"`
	Change24h string `yaml:"change_24h,omitempty"`
}

// Default returns the out-of-the-box wallet configuration: the simulated
// feed and the stock USDT/TON asset set.
func Default() Config {
	return Config{
		Nickname:        "test",
		Listen:          ":8080",
		Platform:        PlatformSimulate,
		RefreshInterval: 10 * time.Second,
		DepositLatency:  2 * time.Second,
		WithdrawLatency: 2 * time.Second,
		SwapLatency:     1500 * time.Millisecond,
		NotificationTTL: 4 * time.Second,
		DisplayRate:     decimal.NewFromFloat(92.5),
		StableAssetID:   "tether",
		Assets:          DefaultAssets(),
	}
}

// DefaultAssets is the seed ledger used when the config names no assets.
func DefaultAssets() []domain.Asset {
	return []domain.Asset{
		{
			ID:        "tether",
			Symbol:    "USDT",
			Name:      "Tether",
			Balance:   decimal.Zero,
			PriceUsd:  decimal.NewFromInt(1),
			Change24h: decimal.NewFromFloat(0.01),
		},
		{
			ID:        "toncoin",
			Symbol:    "TON",
			Name:      "Toncoin",
			Balance:   decimal.Zero,
			PriceUsd:  decimal.NewFromFloat(5.42),
			Change24h: decimal.NewFromFloat(-1.24),
		},
	}
}

// Get reads the configuration from the yaml file named by --config, or
// builds one from CLI flags when no file is given.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	nickname := flag.String("nickname", "test", "wallet owner nickname")
	listen := flag.String("listen", ":8080", "http listen address")
	platform := flag.String("platform", PlatformSimulate,
		"price feed source: simulate, binance, bybit or hyperliquid")
	refresh := flag.Duration("refreshinterval", 10*time.Second, "price feed refresh interval")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	cfg := Default()
	cfg.Nickname = *nickname
	cfg.Listen = *listen
	cfg.Platform = *platform
	cfg.RefreshInterval = *refresh
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(f)
}

// Parse decodes a yaml document into a Config, filling defaults for
// omitted fields.
func Parse(data []byte) (Config, error) {
	var tmp ConfigTmp
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if tmp.Nickname != "" {
		cfg.Nickname = tmp.Nickname
	}
	if tmp.Listen != "" {
		cfg.Listen = tmp.Listen
	}
	if tmp.Platform != "" {
		cfg.Platform = tmp.Platform
	}
	if tmp.RefreshInterval > 0 {
		cfg.RefreshInterval = tmp.RefreshInterval
	}
	if tmp.DepositLatency > 0 {
		cfg.DepositLatency = tmp.DepositLatency
	}
	if tmp.WithdrawLatency > 0 {
		cfg.WithdrawLatency = tmp.WithdrawLatency
	}
	if tmp.SwapLatency > 0 {
		cfg.SwapLatency = tmp.SwapLatency
	}
	if tmp.NotificationTTL > 0 {
		cfg.NotificationTTL = tmp.NotificationTTL
	}
	if tmp.StableAssetID != "" {
		cfg.StableAssetID = tmp.StableAssetID
	}
	if tmp.JournalCapacity > 0 {
		cfg.JournalCapacity = tmp.JournalCapacity
	}
	cfg.TLSDomains = tmp.TLSDomains

	if tmp.DisplayRateStr != "" {
		rate, err := decimal.NewFromString(tmp.DisplayRateStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'display_rate' param in yaml config: %w", err)
		}
		cfg.DisplayRate = rate
	}

	if len(tmp.Assets) > 0 {
		assets, err := parseAssets(tmp.Assets)
		if err != nil {
			return Config{}, err
		}
		cfg.Assets = assets
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseAssets(tmps []AssetTmp) ([]domain.Asset, error) {
	assets := make([]domain.Asset, 0, len(tmps))
	for _, a := range tmps {
		if a.ID == "" || a.Symbol == "" {
			return nil, fmt.Errorf("asset entry in yaml config needs both 'id' and 'symbol'")
		}

		balance := decimal.Zero
		if a.Balance != "" {
			var err error
			balance, err = decimal.NewFromString(a.Balance)
			if err != nil {
				return nil, fmt.Errorf("incorrect 'balance' param for asset %s: %w", a.ID, err)
			}
		}

		price, err := decimal.NewFromString(a.PriceUsd)
		if err != nil {
			return nil, fmt.Errorf("incorrect 'price_usd' param for asset %s: %w", a.ID, err)
		}

		change := decimal.Zero
		if a.Change24h != "" {
			change, err = decimal.NewFromString(a.Change24h)
			if err != nil {
				return nil, fmt.Errorf("incorrect 'change_24h' param for asset %s: %w", a.ID, err)
			}
		}

		name := a.Name
		if name == "" {
			name = a.Symbol
		}

		assets = append(assets, domain.Asset{
			ID:        a.ID,
			Symbol:    a.Symbol,
			Name:      name,
			Balance:   balance,
			PriceUsd:  price,
			Change24h: change,
		})
	}
	return assets, nil
}

func validate(cfg Config) error {
	switch cfg.Platform {
	case PlatformSimulate, PlatformBinance, PlatformBybit, PlatformHyperliquid:
	default:
		return fmt.Errorf("unknown platform %q", cfg.Platform)
	}

	found := false
	for _, a := range cfg.Assets {
		if a.ID == cfg.StableAssetID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("stable asset %q is not in the asset list", cfg.StableAssetID)
	}
	return nil
}
