package pricer

import (
	"context"
	"fmt"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"tonpocket/internal/domain"
	"tonpocket/pkg/retrier"
)

// BybitSource fetches spot prices from the Bybit V5 public market API.
// Bybit tickers carry only the last price here, so the 24h change is derived
// from the previous ledger price.
type BybitSource struct {
	client *bybit.Client
	retry  *retrier.Retrier
}

// NewBybitSource creates a source backed by the Bybit public API.
func NewBybitSource(client *bybit.Client) *BybitSource {
	return &BybitSource{client: client, retry: retrier.New()}
}

// Quotes fetches the last spot price for each asset's <SYMBOL>USDT market.
func (s *BybitSource) Quotes(ctx context.Context, assets []domain.Asset) (domain.PriceUpdate, error) {
	update := make(domain.PriceUpdate, len(assets))
	for _, a := range assets {
		if a.Symbol == stableSymbol {
			update[a.ID] = domain.PriceQuote{
				PriceUsd:  decimal.NewFromInt(1),
				Change24h: a.Change24h,
			}
			continue
		}

		price, err := retrier.DoWithData(s.retry, ctx, func(_ context.Context) (decimal.Decimal, error) {
			return s.fetchLastPrice(a.Symbol)
		})
		if err != nil {
			return nil, errors.Wrapf(domain.ErrFeedUnavailable, "bybit tickers for %s: %v", a.Symbol, err)
		}

		update[a.ID] = domain.PriceQuote{
			PriceUsd:  price.Round(pricePrecision),
			Change24h: deriveChange(a, price),
		}
	}
	return update, nil
}

func (s *BybitSource) fetchLastPrice(baseSymbol string) (decimal.Decimal, error) {
	symbol := bybit.SymbolV5(baseSymbol + "USDT")
	result, err := s.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Zero, err
	}
	if len(result.Result.Spot.List) == 0 {
		return decimal.Zero, fmt.Errorf("bybit API returned empty tickers for %s", baseSymbol)
	}
	return decimal.NewFromString(result.Result.Spot.List[0].LastPrice)
}

// deriveChange approximates the 24h change by carrying the previous value
// forward adjusted by the move since the last known price.
func deriveChange(a domain.Asset, newPrice decimal.Decimal) decimal.Decimal {
	if !a.PriceUsd.IsPositive() {
		return a.Change24h
	}
	move := newPrice.Sub(a.PriceUsd).Div(a.PriceUsd).Mul(decimal.NewFromInt(100))
	return a.Change24h.Add(move).Round(changePrecision)
}
