package pricer

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"tonpocket/internal/domain"
	"tonpocket/pkg/retrier"
)

// BinanceSource fetches real spot prices and 24h change percentages from the
// Binance public API without requiring authentication.
type BinanceSource struct {
	client *binance.Client
	retry  *retrier.Retrier
}

// NewBinanceSource creates a source backed by the Binance public API.
func NewBinanceSource(client *binance.Client) *BinanceSource {
	return &BinanceSource{client: client, retry: retrier.New()}
}

// Quotes fetches 24h ticker stats for each asset's <SYMBOL>USDT market.
// The stable asset itself is pinned at $1.00.
func (s *BinanceSource) Quotes(ctx context.Context, assets []domain.Asset) (domain.PriceUpdate, error) {
	update := make(domain.PriceUpdate, len(assets))
	for _, a := range assets {
		if a.Symbol == stableSymbol {
			update[a.ID] = domain.PriceQuote{
				PriceUsd:  decimal.NewFromInt(1),
				Change24h: a.Change24h,
			}
			continue
		}

		quote, err := retrier.DoWithData(s.retry, ctx, func(ctx context.Context) (domain.PriceQuote, error) {
			return s.fetchStats(ctx, a.Symbol)
		})
		if err != nil {
			return nil, errors.Wrapf(domain.ErrFeedUnavailable, "binance stats for %s: %v", a.Symbol, err)
		}

		update[a.ID] = quote
	}
	return update, nil
}

func (s *BinanceSource) fetchStats(ctx context.Context, baseSymbol string) (domain.PriceQuote, error) {
	stats, err := s.client.NewListPriceChangeStatsService().Symbol(baseSymbol + "USDT").Do(ctx)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	if len(stats) == 0 {
		return domain.PriceQuote{}, fmt.Errorf("binance API returned empty stats for %s", baseSymbol)
	}

	price, err := decimal.NewFromString(stats[0].LastPrice)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("parse binance price %q: %w", stats[0].LastPrice, err)
	}
	change, err := decimal.NewFromString(stats[0].PriceChangePercent)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("parse binance change %q: %w", stats[0].PriceChangePercent, err)
	}

	return domain.PriceQuote{
		PriceUsd:  price.Round(pricePrecision),
		Change24h: change.Round(changePrecision),
	}, nil
}
