// Package wallet owns the aggregate state of the simulated wallet: the
// ledger, the operation pipeline, the notifier and the hidden-balance flag.
// It is the single coordinator every surface goes through; no other writer
// touches the ledger.
package wallet

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tonpocket/internal/domain"
	"tonpocket/internal/events"
	"tonpocket/internal/ledger"
	"tonpocket/internal/services/notify"
	"tonpocket/internal/services/operation"
	"tonpocket/internal/services/valuation"
)

// Config carries the seed state and simulation parameters.
type Config struct {
	Nickname        string
	SeedAssets      []domain.Asset
	StableAssetID   string
	DisplayRate     decimal.Decimal
	PaymentMethods  []domain.PaymentMethod
	Latencies       operation.Latencies
	NotificationTTL time.Duration
	JournalCapacity int
}

// Wallet is the owned aggregate passed to every operation surface.
type Wallet struct {
	nickname      string
	methods       []domain.PaymentMethod
	ledger        *ledger.Ledger
	pipeline      *operation.Pipeline
	notifier      *notify.Notifier
	journal       *events.SnapshotJournal
	notifications *events.NotificationBroadcaster
	hidden        atomic.Bool
	logger        *zap.Logger
}

// New builds the wallet aggregate from seed configuration.
func New(cfg Config, logger *zap.Logger) (*Wallet, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.PaymentMethods) == 0 {
		cfg.PaymentMethods = domain.DefaultPaymentMethods()
	}

	led, err := ledger.New(cfg.SeedAssets, cfg.DisplayRate, logger)
	if err != nil {
		return nil, errors.Wrap(err, "init ledger")
	}

	notifications := events.NewNotificationBroadcaster(64)
	notifier := notify.New(cfg.NotificationTTL, notifications, logger)

	pipeline, err := operation.New(led, notifier, cfg.StableAssetID, cfg.PaymentMethods, cfg.Latencies, logger)
	if err != nil {
		notifier.Close()
		return nil, errors.Wrap(err, "init operation pipeline")
	}

	w := &Wallet{
		nickname:      cfg.Nickname,
		methods:       cfg.PaymentMethods,
		ledger:        led,
		pipeline:      pipeline,
		notifier:      notifier,
		journal:       events.NewSnapshotJournal(cfg.JournalCapacity),
		notifications: notifications,
		logger:        logger,
	}
	w.publishSnapshot()
	return w, nil
}

// Close tears down owned timers.
func (w *Wallet) Close() {
	w.notifier.Close()
}

func (w *Wallet) Nickname() string { return w.nickname }

// PaymentMethods returns the configured deposit rails.
func (w *Wallet) PaymentMethods() []domain.PaymentMethod {
	out := make([]domain.PaymentMethod, len(w.methods))
	copy(out, w.methods)
	return out
}

// Deposit runs the deposit pipeline and journals the new state on commit.
func (w *Wallet) Deposit(ctx context.Context, amountText, methodID string) (domain.Receipt, error) {
	receipt, err := w.pipeline.RequestDeposit(ctx, amountText, methodID)
	if err != nil {
		return domain.Receipt{}, err
	}
	w.publishSnapshot()
	return receipt, nil
}

// Withdraw runs the withdraw pipeline and journals the new state on commit.
func (w *Wallet) Withdraw(ctx context.Context, assetID, amountText, addressText string) (domain.Receipt, error) {
	receipt, err := w.pipeline.RequestWithdraw(ctx, assetID, amountText, addressText)
	if err != nil {
		return domain.Receipt{}, err
	}
	w.publishSnapshot()
	return receipt, nil
}

// Swap runs the swap pipeline and journals the new state on commit.
func (w *Wallet) Swap(ctx context.Context, fromID, toID, amountText string) (domain.Receipt, error) {
	receipt, err := w.pipeline.RequestSwap(ctx, fromID, toID, amountText)
	if err != nil {
		return domain.Receipt{}, err
	}
	w.publishSnapshot()
	return receipt, nil
}

// ToggleHidden flips balance masking and returns the new value.
func (w *Wallet) ToggleHidden() bool {
	for {
		old := w.hidden.Load()
		if w.hidden.CompareAndSwap(old, !old) {
			w.publishSnapshot()
			return !old
		}
	}
}

// Hidden reports whether balances are masked.
func (w *Wallet) Hidden() bool { return w.hidden.Load() }

// Summary computes the current valuation with the wallet's hidden flag.
func (w *Wallet) Summary() valuation.Summary {
	return valuation.Summarize(w.ledger.Assets(), w.ledger.Rate(), w.hidden.Load())
}

// Notification returns the active notification, if any.
func (w *Wallet) Notification() (domain.Notification, bool) {
	return w.notifier.Current()
}

// Journal exposes the snapshot history for SSE resume.
func (w *Wallet) Journal() *events.SnapshotJournal { return w.journal }

// Notifications exposes the notification event stream.
func (w *Wallet) Notifications() *events.NotificationBroadcaster { return w.notifications }

// Processing reports whether an operation surface is mid-flight.
func (w *Wallet) Processing(kind domain.OperationKind) bool {
	return w.pipeline.Processing(kind)
}

// Assets returns a copy of the current ledger rows. Part of the feed sink.
func (w *Wallet) Assets() []domain.Asset { return w.ledger.Assets() }

// ApplyPriceUpdate forwards a feed update to the ledger and journals the
// resulting state. Part of the feed sink.
func (w *Wallet) ApplyPriceUpdate(update domain.PriceUpdate) {
	w.ledger.ApplyPriceUpdate(update)
	w.publishSnapshot()
}

// Rate returns the display-currency rate. Part of the feed sink.
func (w *Wallet) Rate() decimal.Decimal { return w.ledger.Rate() }

// SetRate forwards a drifted display rate to the ledger. Part of the feed
// sink.
func (w *Wallet) SetRate(rate decimal.Decimal) {
	w.ledger.SetRate(rate)
	w.publishSnapshot()
}

// Snapshot renders the current wallet state as a wire-friendly event.
func (w *Wallet) Snapshot() events.WalletSnapshot {
	summary := w.Summary()
	rate := w.ledger.Rate()

	snap := events.WalletSnapshot{
		Timestamp:    time.Now(),
		Nickname:     w.nickname,
		Assets:       make([]events.AssetView, 0, len(summary.Assets)),
		TotalUsd:     summary.TotalUsdText,
		TotalDisplay: summary.TotalDisplayText,
		Rate:         rate.String(),
		Hidden:       summary.Hidden,
	}
	for _, av := range summary.Assets {
		view := events.AssetView{
			ID:        av.Asset.ID,
			Symbol:    av.Asset.Symbol,
			Name:      av.Asset.Name,
			PriceUsd:  av.Asset.PriceUsd.StringFixed(4),
			Change24h: av.Asset.Change24h.StringFixed(2),
			Balance:   av.BalanceText,
			ValueUsd:  av.ValueUsdText,
		}
		snap.Assets = append(snap.Assets, view)
	}
	return snap
}

func (w *Wallet) publishSnapshot() {
	w.journal.Append(w.Snapshot())
}
