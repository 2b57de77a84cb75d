package feed

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tonpocket/internal/domain"
	"tonpocket/internal/ledger"
)

type stubSource struct {
	update domain.PriceUpdate
	err    error
	calls  int
}

func (s *stubSource) Quotes(ctx context.Context, assets []domain.Asset) (domain.PriceUpdate, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.update, nil
}

func newTestLedger(t *testing.T) *ledger.Ledger {
	seed := []domain.Asset{
		{ID: "tether", Symbol: "USDT", Balance: decimal.Zero, PriceUsd: decimal.NewFromInt(1), Change24h: decimal.NewFromFloat(0.01)},
		{ID: "toncoin", Symbol: "TON", Balance: decimal.Zero, PriceUsd: decimal.NewFromFloat(5.42), Change24h: decimal.NewFromFloat(-1.24)},
	}
	l, err := ledger.New(seed, decimal.NewFromFloat(92.5), zap.NewNop())
	require.NoError(t, err)
	return l
}

func TestTick_AppliesQuotes(t *testing.T) {
	l := newTestLedger(t)
	src := &stubSource{update: domain.PriceUpdate{
		"toncoin": {PriceUsd: decimal.NewFromFloat(5.5), Change24h: decimal.NewFromFloat(0.5)},
	}}

	f := New(src, l, DefaultInterval, zap.NewNop())
	f.Tick(context.Background())

	ton, err := l.Asset("toncoin")
	require.NoError(t, err)
	assert.True(t, ton.PriceUsd.Equal(decimal.NewFromFloat(5.5)))
	assert.Equal(t, 1, src.calls)
}

func TestTick_SourceFailureLeavesPricesIntact(t *testing.T) {
	l := newTestLedger(t)
	src := &stubSource{err: errors.Wrap(domain.ErrFeedUnavailable, "boom")}

	f := New(src, l, DefaultInterval, zap.NewNop())
	f.Tick(context.Background())

	ton, err := l.Asset("toncoin")
	require.NoError(t, err)
	assert.True(t, ton.PriceUsd.Equal(decimal.NewFromFloat(5.42)), "failed tick must not corrupt prices")

	// the next tick recovers on its own
	src.err = nil
	src.update = domain.PriceUpdate{
		"toncoin": {PriceUsd: decimal.NewFromFloat(5.6), Change24h: decimal.Zero},
	}
	f.Tick(context.Background())

	ton, err = l.Asset("toncoin")
	require.NoError(t, err)
	assert.True(t, ton.PriceUsd.Equal(decimal.NewFromFloat(5.6)))
}

func TestTick_DriftsRateWithinBounds(t *testing.T) {
	l := newTestLedger(t)
	src := &stubSource{update: domain.PriceUpdate{}}
	f := New(src, l, DefaultInterval, zap.NewNop())

	prev := l.Rate()
	for i := 0; i < 100; i++ {
		f.Tick(context.Background())
		next := l.Rate()
		delta := next.Sub(prev).Abs()
		assert.True(t, delta.LessThanOrEqual(decimal.NewFromFloat(0.2501)),
			"rate moved %s in one tick", delta)
		assert.True(t, next.IsPositive())
		prev = next
	}
}

func TestTick_RateDriftsEvenWhenSourceFails(t *testing.T) {
	l := newTestLedger(t)
	src := &stubSource{err: errors.New("down")}
	f := New(src, l, DefaultInterval, zap.NewNop())

	moved := false
	for i := 0; i < 20 && !moved; i++ {
		before := l.Rate()
		f.Tick(context.Background())
		moved = !l.Rate().Equal(before)
	}
	assert.True(t, moved, "rate drift is decoupled from quote fetching")
}

func TestTick_NeverTouchesBalances(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.ApplyDeposit("tether", decimal.NewFromInt(100)))

	src := &stubSource{update: domain.PriceUpdate{
		"tether":  {PriceUsd: decimal.NewFromFloat(1.0001), Change24h: decimal.Zero},
		"toncoin": {PriceUsd: decimal.NewFromFloat(6), Change24h: decimal.Zero},
	}}
	f := New(src, l, DefaultInterval, zap.NewNop())
	f.Tick(context.Background())

	usdt, err := l.Asset("tether")
	require.NoError(t, err)
	assert.True(t, usdt.Balance.Equal(decimal.NewFromInt(100)))
}
