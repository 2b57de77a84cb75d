// Package pricer provides quote sources for the pricing feed. The simulated
// source perturbs current prices; the exchange-backed sources fetch real spot
// prices from public APIs without authentication.
package pricer

import (
	"context"

	"tonpocket/internal/domain"
)

// Source produces a refreshed quote per asset. Implementations must not
// mutate the passed assets; they only read current prices to build the
// update.
type Source interface {
	Quotes(ctx context.Context, assets []domain.Asset) (domain.PriceUpdate, error)
}

// stableSymbol is quoted at a constant $1.00 by the exchange-backed sources:
// the exchanges have no USDT/USDT market to ask.
const stableSymbol = "USDT"
