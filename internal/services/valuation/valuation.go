// Package valuation derives portfolio totals from the current asset set and
// display-currency rate. Everything here is pure computation over the inputs:
// no mutation, no caching.
package valuation

import (
	"github.com/shopspring/decimal"

	"tonpocket/internal/domain"
)

// MaskedPlaceholder replaces every numeric rendering when balances are hidden.
const MaskedPlaceholder = "••••••"

// AssetValuation is one asset with its derived USD and display-currency value.
type AssetValuation struct {
	Asset        domain.Asset
	ValueUsd     decimal.Decimal
	ValueDisplay decimal.Decimal
	BalanceText  string
	ValueUsdText string
}

// Summary is a full valuation snapshot for display.
type Summary struct {
	Assets           []AssetValuation
	TotalUsd         decimal.Decimal
	TotalDisplay     decimal.Decimal
	TotalUsdText     string
	TotalDisplayText string
	Hidden           bool
}

// Summarize computes per-asset and total values from balances, prices and the
// display rate. When hidden is set, every numeric text is replaced with the
// masked placeholder; the numeric fields still carry real values so callers
// that own the hidden flag can flip rendering without recomputation.
func Summarize(assets []domain.Asset, rate decimal.Decimal, hidden bool) Summary {
	out := Summary{
		Assets:   make([]AssetValuation, 0, len(assets)),
		TotalUsd: decimal.Zero,
		Hidden:   hidden,
	}

	for _, a := range assets {
		valueUsd := a.ValueUsd()
		av := AssetValuation{
			Asset:        a,
			ValueUsd:     valueUsd,
			ValueDisplay: valueUsd.Mul(rate),
		}
		if hidden {
			av.BalanceText = MaskedPlaceholder
			av.ValueUsdText = MaskedPlaceholder
		} else {
			av.BalanceText = a.Balance.StringFixed(4) + " " + a.Symbol
			av.ValueUsdText = "$" + valueUsd.StringFixed(2)
		}
		out.Assets = append(out.Assets, av)
		out.TotalUsd = out.TotalUsd.Add(valueUsd)
	}

	out.TotalDisplay = out.TotalUsd.Mul(rate)
	if hidden {
		out.TotalUsdText = MaskedPlaceholder
		out.TotalDisplayText = MaskedPlaceholder
	} else {
		out.TotalUsdText = "$" + out.TotalUsd.StringFixed(2)
		out.TotalDisplayText = out.TotalDisplay.StringFixed(0) + " ₽"
	}
	return out
}
