package pricer

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	hyperliquid "github.com/sonirico/go-hyperliquid"

	"tonpocket/internal/domain"
	"tonpocket/pkg/retrier"
)

// HyperliquidSource fetches mid prices from the Hyperliquid public Info API.
// Mids carry no 24h statistics, so the change is derived from the previous
// ledger price the same way as for Bybit.
type HyperliquidSource struct {
	info  *hyperliquid.Info
	retry *retrier.Retrier
}

// NewHyperliquidSource creates a source backed by the Hyperliquid Info API.
func NewHyperliquidSource(info *hyperliquid.Info) *HyperliquidSource {
	return &HyperliquidSource{info: info, retry: retrier.New()}
}

// Quotes fetches all mids once and resolves each asset by its base symbol.
func (s *HyperliquidSource) Quotes(ctx context.Context, assets []domain.Asset) (domain.PriceUpdate, error) {
	if s.info == nil {
		return nil, errors.Wrap(domain.ErrFeedUnavailable, "hyperliquid info client is nil")
	}

	var mids map[string]string
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		m, merr := s.info.AllMids(ctx)
		if merr != nil {
			return merr
		}
		mids = m
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(domain.ErrFeedUnavailable, "hyperliquid mids: %v", err)
	}

	update := make(domain.PriceUpdate, len(assets))
	for _, a := range assets {
		if a.Symbol == stableSymbol {
			update[a.ID] = domain.PriceQuote{
				PriceUsd:  decimal.NewFromInt(1),
				Change24h: a.Change24h,
			}
			continue
		}

		mid, ok := mids[a.Symbol]
		if !ok || mid == "" {
			return nil, errors.Wrap(domain.ErrFeedUnavailable,
				fmt.Sprintf("hyperliquid API returned empty mid price for %s", a.Symbol))
		}
		price, err := decimal.NewFromString(mid)
		if err != nil {
			return nil, errors.Wrapf(domain.ErrFeedUnavailable, "parse hyperliquid mid %q: %v", mid, err)
		}

		update[a.ID] = domain.PriceQuote{
			PriceUsd:  price.Round(pricePrecision),
			Change24h: deriveChange(a, price),
		}
	}
	return update, nil
}
