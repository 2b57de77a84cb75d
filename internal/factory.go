package internal

import (
	"fmt"
	"os"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"

	"tonpocket/config"
	"tonpocket/internal/clients"
	"tonpocket/internal/services/pricer"
)

const hyperliquidAPIURL = "https://api.hyperliquid.xyz"

// NewPlatformClient builds the exchange client for the configured price
// feed platform. The simulated platform needs no client and returns nil.
func NewPlatformClient(cfg config.Config) (any, error) {
	switch cfg.Platform {
	case config.PlatformSimulate:
		return nil, nil
	case config.PlatformBinance:
		return clients.NewBinanceClient(
			os.Getenv("BINANCE_API_KEY"),
			os.Getenv("BINANCE_API_SECRET"),
		), nil
	case config.PlatformBybit:
		return clients.NewBybitClient(
			os.Getenv("BYBIT_API_KEY"),
			os.Getenv("BYBIT_API_SECRET"),
		), nil
	case config.PlatformHyperliquid:
		key := os.Getenv("HYPERLIQUID_PRIVATE_KEY")
		if key == "" {
			return nil, fmt.Errorf("HYPERLIQUID_PRIVATE_KEY environment variable must be set")
		}
		url := os.Getenv("HYPERLIQUID_API_URL")
		if url == "" {
			url = hyperliquidAPIURL
		}
		return clients.NewHyperliquidClient(key, url)
	default:
		return nil, fmt.Errorf("unsupported platform: %s", cfg.Platform)
	}
}

// NewPriceSource dispatches the client to its platform price source.
// This is the single point of truth for platform-specific quote fetching.
func NewPriceSource(client any) (pricer.Source, error) {
	switch c := client.(type) {
	case nil:
		return pricer.NewDefaultSimulateSource(), nil
	case *binance.Client:
		return pricer.NewBinanceSource(c), nil
	case *bybit.Client:
		return pricer.NewBybitSource(c), nil
	case *clients.HyperliquidClient:
		return pricer.NewHyperliquidSource(c.Info()), nil
	default:
		return nil, fmt.Errorf("unsupported client type: %T", client)
	}
}
