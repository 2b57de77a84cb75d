package domain

import "github.com/shopspring/decimal"

// Asset is a single held currency/token together with its latest market data.
// Balance is mutated only by the ledger, PriceUsd/Change24h only by the
// pricing feed.
type Asset struct {
	ID        string
	Symbol    string
	Name      string
	Balance   decimal.Decimal
	PriceUsd  decimal.Decimal
	Change24h decimal.Decimal
}

// ValueUsd returns Balance * PriceUsd.
func (a Asset) ValueUsd() decimal.Decimal {
	return a.Balance.Mul(a.PriceUsd)
}

// Clone returns an independent copy of the asset.
func (a Asset) Clone() Asset {
	return Asset{
		ID:        a.ID,
		Symbol:    a.Symbol,
		Name:      a.Name,
		Balance:   a.Balance,
		PriceUsd:  a.PriceUsd,
		Change24h: a.Change24h,
	}
}

// PriceQuote is a refreshed market quote for a single asset.
type PriceQuote struct {
	PriceUsd  decimal.Decimal
	Change24h decimal.Decimal
}

// PriceUpdate maps asset ids to refreshed quotes. Assets absent from the
// update keep their previous values; unknown ids are ignored.
type PriceUpdate map[string]PriceQuote
