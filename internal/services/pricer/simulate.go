package pricer

import (
	"context"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"tonpocket/internal/domain"
)

const (
	// bounds of the symmetric per-tick perturbation
	maxPriceStep  = 0.01
	maxChangeStep = 0.05

	pricePrecision  = 4
	changePrecision = 2

	defaultNetworkDelay = 500 * time.Millisecond
)

// SimulateSource generates market data by applying a small bounded random
// perturbation to each asset's current price and 24h change, standing in for
// a live market feed. A short artificial delay imitates network latency.
type SimulateSource struct {
	rng   *rand.Rand
	delay time.Duration
}

// NewSimulateSource creates a simulated source. A zero delay disables the
// artificial network latency.
func NewSimulateSource(seed int64, delay time.Duration) *SimulateSource {
	return &SimulateSource{
		rng:   rand.New(rand.NewSource(seed)),
		delay: delay,
	}
}

// NewDefaultSimulateSource seeds from the clock and uses the stock delay.
func NewDefaultSimulateSource() *SimulateSource {
	return NewSimulateSource(time.Now().UnixNano(), defaultNetworkDelay)
}

// Quotes perturbs every asset's price within ±0.01 (rounded to 4 places) and
// its 24h change within ±0.05 (rounded to 2 places). A perturbation that
// would drive a price to zero or below keeps the old price instead.
func (s *SimulateSource) Quotes(ctx context.Context, assets []domain.Asset) (domain.PriceUpdate, error) {
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	update := make(domain.PriceUpdate, len(assets))
	for _, a := range assets {
		price, _ := a.PriceUsd.Float64()
		change, _ := a.Change24h.Float64()

		newPrice := price + (s.rng.Float64()-0.5)*2*maxPriceStep
		if newPrice <= 0 {
			newPrice = price
		}
		newChange := change + (s.rng.Float64()-0.5)*2*maxChangeStep

		update[a.ID] = domain.PriceQuote{
			PriceUsd:  decimal.NewFromFloat(newPrice).Round(pricePrecision),
			Change24h: decimal.NewFromFloat(newChange).Round(changePrecision),
		}
	}
	return update, nil
}
