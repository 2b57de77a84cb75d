package ledger

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tonpocket/internal/domain"
)

// Ledger owns the authoritative in-memory set of asset balances plus the
// display-currency exchange rate. All mutations go through the Apply*
// entry points; each commit is atomic with respect to every other caller.
//
// Rows are copy-on-write: a mutation replaces only the targeted rows, and
// every snapshot handed out is a deep copy, so no caller can observe or alias
// ledger internals mid-mutation.
type Ledger struct {
	mu     sync.RWMutex
	assets []domain.Asset
	index  map[string]int
	rate   decimal.Decimal
	logger *zap.Logger
}

// New creates a ledger from the seed asset set and initial display rate.
// Duplicate ids in the seed are rejected.
func New(seed []domain.Asset, rate decimal.Decimal, logger *zap.Logger) (*Ledger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(seed) == 0 {
		return nil, errors.New("ledger requires at least one seed asset")
	}

	assets := make([]domain.Asset, 0, len(seed))
	index := make(map[string]int, len(seed))
	for _, a := range seed {
		if a.ID == "" {
			return nil, errors.New("seed asset with empty id")
		}
		if _, ok := index[a.ID]; ok {
			return nil, errors.Errorf("duplicate seed asset id %q", a.ID)
		}
		if a.Balance.IsNegative() {
			return nil, errors.Errorf("seed asset %s has negative balance %s", a.ID, a.Balance.String())
		}
		index[a.ID] = len(assets)
		assets = append(assets, a.Clone())
	}

	return &Ledger{
		assets: assets,
		index:  index,
		rate:   rate,
		logger: logger,
	}, nil
}

// Assets returns a deep copy of the current asset set in seed order.
func (l *Ledger) Assets() []domain.Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Asset, len(l.assets))
	for i, a := range l.assets {
		out[i] = a.Clone()
	}
	return out
}

// Asset returns a copy of the asset with the given id.
func (l *Ledger) Asset(id string) (domain.Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.index[id]
	if !ok {
		return domain.Asset{}, errors.Wrapf(domain.ErrUnknownAsset, "%q", id)
	}
	return l.assets[i].Clone(), nil
}

// Rate returns the current display-currency exchange rate (units per USD).
func (l *Ledger) Rate() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.rate
}

// SetRate replaces the display-currency exchange rate. Non-positive rates are
// ignored so a broken feed tick cannot corrupt valuation.
func (l *Ledger) SetRate(rate decimal.Decimal) {
	if !rate.IsPositive() {
		l.logger.Warn("ignoring non-positive display rate", zap.String("rate", rate.String()))
		return
	}
	l.mu.Lock()
	l.rate = rate
	l.mu.Unlock()
}

// ApplyDeposit increases the balance of the named asset by amount.
// No other asset is touched.
func (l *Ledger) ApplyDeposit(assetID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.Wrapf(domain.ErrInvalidAmount, "deposit amount %s", amount.String())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[assetID]
	if !ok {
		return errors.Wrapf(domain.ErrUnknownAsset, "%q", assetID)
	}

	row := l.assets[i].Clone()
	row.Balance = row.Balance.Add(amount)
	l.assets[i] = row

	l.logger.Info("deposit applied",
		zap.String("asset", row.Symbol),
		zap.String("amount", amount.String()),
		zap.String("balance", row.Balance.String()))
	return nil
}

// ApplyWithdraw decreases the balance of the named asset by amount. The
// balance is re-checked here even though the pipeline validates it earlier:
// a price tick or a concurrent commit may have landed in between.
func (l *Ledger) ApplyWithdraw(assetID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.Wrapf(domain.ErrInvalidAmount, "withdraw amount %s", amount.String())
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.index[assetID]
	if !ok {
		return errors.Wrapf(domain.ErrUnknownAsset, "%q", assetID)
	}
	if l.assets[i].Balance.LessThan(amount) {
		return errors.Wrapf(domain.ErrInsufficientBalance, "have %s %s, need %s",
			l.assets[i].Balance.String(), l.assets[i].Symbol, amount.String())
	}

	row := l.assets[i].Clone()
	row.Balance = row.Balance.Sub(amount)
	l.assets[i] = row

	l.logger.Info("withdraw applied",
		zap.String("asset", row.Symbol),
		zap.String("amount", amount.String()),
		zap.String("balance", row.Balance.String()))
	return nil
}

// ApplySwap moves amount out of the source asset and credits the destination
// with amount * priceUsd(from) / priceUsd(to), using prices current at the
// moment the swap is applied, not at request time. Returns the received
// amount.
func (l *Ledger) ApplySwap(fromID, toID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, errors.Wrapf(domain.ErrInvalidAmount, "swap amount %s", amount.String())
	}
	if fromID == toID {
		return decimal.Zero, errors.Wrap(domain.ErrInvalidAssetPair, "source equals destination")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fi, ok := l.index[fromID]
	if !ok {
		return decimal.Zero, errors.Wrapf(domain.ErrInvalidAssetPair, "unknown source %q", fromID)
	}
	ti, ok := l.index[toID]
	if !ok {
		return decimal.Zero, errors.Wrapf(domain.ErrInvalidAssetPair, "unknown destination %q", toID)
	}
	if l.assets[fi].Balance.LessThan(amount) {
		return decimal.Zero, errors.Wrapf(domain.ErrInsufficientBalance, "have %s %s, need %s",
			l.assets[fi].Balance.String(), l.assets[fi].Symbol, amount.String())
	}
	if !l.assets[ti].PriceUsd.IsPositive() {
		return decimal.Zero, errors.Wrapf(domain.ErrInvalidAssetPair, "destination %s has no price", l.assets[ti].Symbol)
	}

	rate := l.assets[fi].PriceUsd.Div(l.assets[ti].PriceUsd)
	received := amount.Mul(rate)

	from := l.assets[fi].Clone()
	to := l.assets[ti].Clone()
	from.Balance = from.Balance.Sub(amount)
	to.Balance = to.Balance.Add(received)
	l.assets[fi] = from
	l.assets[ti] = to

	l.logger.Info("swap applied",
		zap.String("from", from.Symbol),
		zap.String("to", to.Symbol),
		zap.String("amount", amount.String()),
		zap.String("received", received.String()),
		zap.String("rate", rate.String()))
	return received, nil
}

// ApplyPriceUpdate replaces PriceUsd and Change24h for each asset present in
// the update. Assets absent from the update keep their previous values,
// unknown ids are ignored, balances never move here.
func (l *Ledger) ApplyPriceUpdate(update domain.PriceUpdate) {
	if len(update) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, quote := range update {
		i, ok := l.index[id]
		if !ok {
			l.logger.Debug("ignoring quote for unknown asset", zap.String("asset_id", id))
			continue
		}
		if !quote.PriceUsd.IsPositive() {
			l.logger.Warn("ignoring non-positive quote",
				zap.String("asset", l.assets[i].Symbol),
				zap.String("price", quote.PriceUsd.String()))
			continue
		}
		row := l.assets[i].Clone()
		row.PriceUsd = quote.PriceUsd
		row.Change24h = quote.Change24h
		l.assets[i] = row
	}
}
