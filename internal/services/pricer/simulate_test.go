package pricer

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tonpocket/internal/domain"
)

func simAssets() []domain.Asset {
	return []domain.Asset{
		{ID: "tether", Symbol: "USDT", PriceUsd: decimal.NewFromInt(1), Change24h: decimal.NewFromFloat(0.01)},
		{ID: "toncoin", Symbol: "TON", PriceUsd: decimal.NewFromFloat(5.42), Change24h: decimal.NewFromFloat(-1.24)},
	}
}

func TestSimulateSource_Bounds(t *testing.T) {
	src := NewSimulateSource(1, 0)
	assets := simAssets()

	for i := 0; i < 200; i++ {
		update, err := src.Quotes(context.Background(), assets)
		require.NoError(t, err)
		require.Len(t, update, 2)

		for _, a := range assets {
			quote, ok := update[a.ID]
			require.True(t, ok)

			priceDelta := quote.PriceUsd.Sub(a.PriceUsd).Abs()
			assert.True(t, priceDelta.LessThanOrEqual(decimal.NewFromFloat(0.0101)),
				"price moved %s in one tick", priceDelta)

			changeDelta := quote.Change24h.Sub(a.Change24h).Abs()
			assert.True(t, changeDelta.LessThanOrEqual(decimal.NewFromFloat(0.0501)),
				"change moved %s in one tick", changeDelta)

			assert.True(t, quote.PriceUsd.IsPositive())
			assert.True(t, quote.PriceUsd.Exponent() >= -4, "price %s must be rounded to 4 places", quote.PriceUsd)
			assert.True(t, quote.Change24h.Exponent() >= -2, "change %s must be rounded to 2 places", quote.Change24h)
		}

		// walk forward so bounds are exercised across many price levels
		for j := range assets {
			assets[j].PriceUsd = update[assets[j].ID].PriceUsd
			assets[j].Change24h = update[assets[j].ID].Change24h
		}
	}
}

func TestSimulateSource_DoesNotInventAssets(t *testing.T) {
	src := NewSimulateSource(7, 0)
	update, err := src.Quotes(context.Background(), simAssets())
	require.NoError(t, err)
	assert.Len(t, update, 2)
	_, ok := update["dogecoin"]
	assert.False(t, ok)
}

func TestSimulateSource_EmptyAssetSet(t *testing.T) {
	src := NewSimulateSource(7, 0)
	update, err := src.Quotes(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, update)
}
