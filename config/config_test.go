package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse([]byte(`
nickname: alice
listen: ":9090"
platform: binance
refresh_interval: 30s
deposit_latency: 1s
notification_ttl: 2s
display_rate: "95.25"
assets:
  - id: tether
    symbol: USDT
    name: Tether
    price_usd: "1.00"
    change_24h: "0.01"
  - id: toncoin
    symbol: TON
    name: Toncoin
    balance: "3.5"
    price_usd: "5.42"
    change_24h: "-1.24"
`))
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.Nickname)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, PlatformBinance, cfg.Platform)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, time.Second, cfg.DepositLatency)
	assert.Equal(t, 2*time.Second, cfg.NotificationTTL)
	assert.True(t, cfg.DisplayRate.Equal(decimal.NewFromFloat(95.25)))

	require.Len(t, cfg.Assets, 2)
	assert.Equal(t, "toncoin", cfg.Assets[1].ID)
	assert.True(t, cfg.Assets[1].Balance.Equal(decimal.NewFromFloat(3.5)))
	assert.True(t, cfg.Assets[1].PriceUsd.Equal(decimal.NewFromFloat(5.42)))
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`nickname: bob`))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, "bob", cfg.Nickname)
	assert.Equal(t, def.Listen, cfg.Listen)
	assert.Equal(t, def.Platform, cfg.Platform)
	assert.Equal(t, def.RefreshInterval, cfg.RefreshInterval)
	assert.Equal(t, def.SwapLatency, cfg.SwapLatency)
	assert.True(t, cfg.DisplayRate.Equal(def.DisplayRate))
	require.Len(t, cfg.Assets, 2)
	assert.Equal(t, "tether", cfg.Assets[0].ID)
}

func TestParseRejectsBadDecimal(t *testing.T) {
	_, err := Parse([]byte(`
assets:
  - id: tether
    symbol: USDT
    price_usd: "one dollar"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price_usd")
}

func TestParseRejectsUnknownPlatform(t *testing.T) {
	_, err := Parse([]byte(`platform: kraken`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown platform")
}

func TestParseRejectsMissingStableAsset(t *testing.T) {
	_, err := Parse([]byte(`
assets:
  - id: toncoin
    symbol: TON
    price_usd: "5.42"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stable asset")
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, validate(Default()))
}
