package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tonpocket/internal/domain"
	"tonpocket/internal/services/operation"
	"tonpocket/internal/services/valuation"
)

func testConfig() Config {
	return Config{
		Nickname: "test",
		SeedAssets: []domain.Asset{
			{ID: "tether", Symbol: "USDT", Name: "Tether", Balance: decimal.Zero, PriceUsd: decimal.NewFromInt(1), Change24h: decimal.NewFromFloat(0.01)},
			{ID: "toncoin", Symbol: "TON", Name: "Toncoin", Balance: decimal.Zero, PriceUsd: decimal.NewFromFloat(5.42), Change24h: decimal.NewFromFloat(-1.24)},
		},
		StableAssetID:   "tether",
		DisplayRate:     decimal.NewFromFloat(92.5),
		Latencies:       operation.Latencies{Deposit: time.Millisecond, Withdraw: time.Millisecond, Swap: time.Millisecond},
		NotificationTTL: 50 * time.Millisecond,
	}
}

func newTestWallet(t *testing.T) *Wallet {
	w, err := New(testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w
}

func TestWallet_EndToEnd(t *testing.T) {
	w := newTestWallet(t)
	ctx := context.Background()

	_, err := w.Deposit(ctx, "100", "sbp")
	require.NoError(t, err)

	summary := w.Summary()
	assert.True(t, summary.TotalUsd.Equal(decimal.NewFromInt(100)))

	receipt, err := w.Swap(ctx, "tether", "toncoin", "50")
	require.NoError(t, err)
	assert.Equal(t, "9.2251", receipt.Received.StringFixed(4))

	_, err = w.Withdraw(ctx, "toncoin", "100", "someaddressvalue")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// rejected withdraw leaves totals as the swap left them
	after := w.Summary()
	assert.True(t, after.TotalUsd.Sub(decimal.NewFromInt(100)).Abs().LessThan(decimal.NewFromFloat(0.0001)),
		"total usd %s", after.TotalUsd)

	notification, ok := w.Notification()
	require.True(t, ok)
	assert.True(t, notification.Visible)
	assert.Contains(t, notification.Message, "TON")
}

func TestWallet_ToggleHidden(t *testing.T) {
	w := newTestWallet(t)

	assert.False(t, w.Hidden())
	assert.True(t, w.ToggleHidden())
	assert.True(t, w.Hidden())

	summary := w.Summary()
	assert.Equal(t, valuation.MaskedPlaceholder, summary.TotalDisplayText)

	snap := w.Snapshot()
	assert.True(t, snap.Hidden)
	assert.Equal(t, valuation.MaskedPlaceholder, snap.TotalUsd)

	assert.False(t, w.ToggleHidden())
	assert.False(t, w.Hidden())
}

func TestWallet_JournalGrowsOnCommit(t *testing.T) {
	w := newTestWallet(t)
	ctx := context.Background()

	before := w.Journal().CurrentIndex()
	_, err := w.Deposit(ctx, "10", "sbp")
	require.NoError(t, err)

	records := w.Journal().SnapshotsAfter(before)
	require.NotEmpty(t, records)
	last := records[len(records)-1].Snapshot
	assert.Equal(t, "$10.00", last.TotalUsd)
}

func TestWallet_RejectedOperationDoesNotJournal(t *testing.T) {
	w := newTestWallet(t)
	ctx := context.Background()

	before := w.Journal().CurrentIndex()
	_, err := w.Deposit(ctx, "-1", "sbp")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Equal(t, before, w.Journal().CurrentIndex())
}

func TestWallet_PriceUpdatePublishesSnapshot(t *testing.T) {
	w := newTestWallet(t)

	before := w.Journal().CurrentIndex()
	w.ApplyPriceUpdate(domain.PriceUpdate{
		"toncoin": {PriceUsd: decimal.NewFromFloat(6), Change24h: decimal.Zero},
	})

	records := w.Journal().SnapshotsAfter(before)
	require.NotEmpty(t, records)

	last := records[len(records)-1].Snapshot
	require.Len(t, last.Assets, 2)
	assert.Equal(t, "6.0000", last.Assets[1].PriceUsd)
}
