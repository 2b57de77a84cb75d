// Package operation sequences user-initiated wallet operations through
// validate -> simulated latency -> commit -> notify.
package operation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tonpocket/internal/domain"
)

const (
	DefaultDepositLatency  = 2000 * time.Millisecond
	DefaultWithdrawLatency = 2000 * time.Millisecond
	DefaultSwapLatency     = 1500 * time.Millisecond
)

// Latencies configures the simulated settlement delay per operation kind.
// The delay stands in for network/settlement time; once it starts, the only
// exit is commit. A real settlement backend replacing it must add
// failure/timeout/retry semantics at this seam.
type Latencies struct {
	Deposit  time.Duration
	Withdraw time.Duration
	Swap     time.Duration
}

// DefaultLatencies returns the stock simulation delays.
func DefaultLatencies() Latencies {
	return Latencies{
		Deposit:  DefaultDepositLatency,
		Withdraw: DefaultWithdrawLatency,
		Swap:     DefaultSwapLatency,
	}
}

type ledgerAPI interface {
	Asset(id string) (domain.Asset, error)
	ApplyDeposit(assetID string, amount decimal.Decimal) error
	ApplyWithdraw(assetID string, amount decimal.Decimal) error
	ApplySwap(fromID, toID string, amount decimal.Decimal) (decimal.Decimal, error)
}

type notifier interface {
	Emit(message string)
}

// Pipeline drives each operation through its state machine:
// Idle -> Validating -> Processing -> Committed | Rejected.
// Validation failures reject before Processing and leave the ledger
// untouched. One request per surface (operation kind) may be in the
// Processing phase at a time; there is no cross-surface mutual exclusion.
type Pipeline struct {
	ledger        ledgerAPI
	notifier      notifier
	logger        *zap.Logger
	latencies     Latencies
	methods       map[string]domain.PaymentMethod
	stableAssetID string

	// wait is the simulated latency; injectable so tests don't sleep.
	wait func(ctx context.Context, d time.Duration) error

	inFlight map[domain.OperationKind]*atomic.Bool
}

// New creates a pipeline. stableAssetID names the asset deposits credit
// (USDT in the stock seed). methods is the accepted deposit rail set.
func New(ledger ledgerAPI, notifier notifier, stableAssetID string, methods []domain.PaymentMethod, latencies Latencies, logger *zap.Logger) (*Pipeline, error) {
	if ledger == nil {
		return nil, errors.New("ledger is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := ledger.Asset(stableAssetID); err != nil {
		return nil, errors.Wrap(err, "stable asset for deposits")
	}

	methodIndex := make(map[string]domain.PaymentMethod, len(methods))
	for _, m := range methods {
		methodIndex[m.ID] = m
	}

	return &Pipeline{
		ledger:        ledger,
		notifier:      notifier,
		logger:        logger,
		latencies:     latencies,
		methods:       methodIndex,
		stableAssetID: stableAssetID,
		wait:          waitFor,
		inFlight: map[domain.OperationKind]*atomic.Bool{
			domain.OperationDeposit:  {},
			domain.OperationWithdraw: {},
			domain.OperationSwap:     {},
		},
	}, nil
}

func waitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Processing reports whether the surface for the given kind has a request in
// the Processing phase. The UI uses this to keep its submit control disabled.
func (p *Pipeline) Processing(kind domain.OperationKind) bool {
	guard, ok := p.inFlight[kind]
	return ok && guard.Load()
}

// parseAmount turns raw user input into a positive decimal.
func parseAmount(text string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, errors.Wrapf(domain.ErrInvalidAmount, "%q", text)
	}
	if !amount.IsPositive() {
		return decimal.Zero, errors.Wrapf(domain.ErrInvalidAmount, "%q is not positive", text)
	}
	return amount, nil
}

// RequestDeposit validates and commits a deposit of the stable asset.
func (p *Pipeline) RequestDeposit(ctx context.Context, amountText, methodID string) (domain.Receipt, error) {
	opID := uuid.NewString()
	log := p.logger.With(
		zap.String("op_id", opID),
		zap.String("kind", domain.OperationDeposit.String()))
	log.Debug("state transition", zap.String("state", string(domain.StateValidating)))

	amount, err := parseAmount(amountText)
	if err != nil {
		return p.reject(log, err)
	}
	method, ok := p.methods[methodID]
	if !ok {
		return p.reject(log, errors.Wrapf(domain.ErrUnknownMethod, "%q", methodID))
	}

	release, err := p.acquire(domain.OperationDeposit)
	if err != nil {
		return p.reject(log, err)
	}
	defer release()

	log.Debug("state transition", zap.String("state", string(domain.StateProcessing)))
	if err := p.wait(ctx, p.latencies.Deposit); err != nil {
		return domain.Receipt{}, errors.Wrap(err, "deposit interrupted by shutdown")
	}

	if err := p.ledger.ApplyDeposit(p.stableAssetID, amount); err != nil {
		return p.reject(log, err)
	}

	asset, _ := p.ledger.Asset(p.stableAssetID)
	p.notifier.Emit(fmt.Sprintf("Deposited $%s via %s", amount.StringFixed(2), method.Name))

	receipt := domain.Receipt{
		ID:          opID,
		Kind:        domain.OperationDeposit,
		AssetID:     p.stableAssetID,
		Amount:      amount,
		CommittedAt: time.Now(),
	}
	log.Info("state transition",
		zap.String("state", string(domain.StateCommitted)),
		zap.String("asset", asset.Symbol),
		zap.String("amount", amount.String()))
	return receipt, nil
}

// RequestWithdraw validates and commits a withdrawal to an opaque address.
func (p *Pipeline) RequestWithdraw(ctx context.Context, assetID, amountText, addressText string) (domain.Receipt, error) {
	opID := uuid.NewString()
	log := p.logger.With(
		zap.String("op_id", opID),
		zap.String("kind", domain.OperationWithdraw.String()))
	log.Debug("state transition", zap.String("state", string(domain.StateValidating)))

	amount, err := parseAmount(amountText)
	if err != nil {
		return p.reject(log, err)
	}
	if addressText == "" {
		return p.reject(log, domain.ErrMissingAddress)
	}
	asset, err := p.ledger.Asset(assetID)
	if err != nil {
		return p.reject(log, err)
	}
	if asset.Balance.LessThan(amount) {
		return p.reject(log, errors.Wrapf(domain.ErrInsufficientBalance,
			"have %s %s, need %s", asset.Balance.String(), asset.Symbol, amount.String()))
	}

	release, err := p.acquire(domain.OperationWithdraw)
	if err != nil {
		return p.reject(log, err)
	}
	defer release()

	log.Debug("state transition", zap.String("state", string(domain.StateProcessing)))
	if err := p.wait(ctx, p.latencies.Withdraw); err != nil {
		return domain.Receipt{}, errors.Wrap(err, "withdraw interrupted by shutdown")
	}

	// the ledger re-checks the balance: a swap or another withdrawal may have
	// committed during the latency window
	if err := p.ledger.ApplyWithdraw(assetID, amount); err != nil {
		return p.reject(log, err)
	}

	p.notifier.Emit(fmt.Sprintf("Withdrew %s %s to %s",
		amount.String(), asset.Symbol, redactAddress(addressText)))

	receipt := domain.Receipt{
		ID:          opID,
		Kind:        domain.OperationWithdraw,
		AssetID:     assetID,
		Amount:      amount,
		CommittedAt: time.Now(),
	}
	log.Info("state transition",
		zap.String("state", string(domain.StateCommitted)),
		zap.String("asset", asset.Symbol),
		zap.String("amount", amount.String()))
	return receipt, nil
}

// RequestSwap validates and commits a swap between two assets. The executed
// rate is taken from prices current at commit time: a price tick landing
// during the latency window changes the received amount.
func (p *Pipeline) RequestSwap(ctx context.Context, fromID, toID, amountText string) (domain.Receipt, error) {
	opID := uuid.NewString()
	log := p.logger.With(
		zap.String("op_id", opID),
		zap.String("kind", domain.OperationSwap.String()))
	log.Debug("state transition", zap.String("state", string(domain.StateValidating)))

	amount, err := parseAmount(amountText)
	if err != nil {
		return p.reject(log, err)
	}
	if fromID == toID {
		return p.reject(log, errors.Wrap(domain.ErrInvalidAssetPair, "source equals destination"))
	}
	from, err := p.ledger.Asset(fromID)
	if err != nil {
		return p.reject(log, errors.Wrapf(domain.ErrInvalidAssetPair, "unknown source %q", fromID))
	}
	to, err := p.ledger.Asset(toID)
	if err != nil {
		return p.reject(log, errors.Wrapf(domain.ErrInvalidAssetPair, "unknown destination %q", toID))
	}
	if from.Balance.LessThan(amount) {
		return p.reject(log, errors.Wrapf(domain.ErrInsufficientBalance,
			"have %s %s, need %s", from.Balance.String(), from.Symbol, amount.String()))
	}

	release, err := p.acquire(domain.OperationSwap)
	if err != nil {
		return p.reject(log, err)
	}
	defer release()

	log.Debug("state transition", zap.String("state", string(domain.StateProcessing)))
	if err := p.wait(ctx, p.latencies.Swap); err != nil {
		return domain.Receipt{}, errors.Wrap(err, "swap interrupted by shutdown")
	}

	received, err := p.ledger.ApplySwap(fromID, toID, amount)
	if err != nil {
		return p.reject(log, err)
	}

	p.notifier.Emit(fmt.Sprintf("Swapped %s %s for %s %s",
		amount.String(), from.Symbol, received.StringFixed(4), to.Symbol))

	receipt := domain.Receipt{
		ID:          opID,
		Kind:        domain.OperationSwap,
		AssetID:     fromID,
		ToAssetID:   toID,
		Amount:      amount,
		Received:    received,
		CommittedAt: time.Now(),
	}
	log.Info("state transition",
		zap.String("state", string(domain.StateCommitted)),
		zap.String("from", from.Symbol),
		zap.String("to", to.Symbol),
		zap.String("amount", amount.String()),
		zap.String("received", received.String()))
	return receipt, nil
}

// acquire takes the per-surface guard, failing with ErrBusy when a request
// on the same surface is already processing.
func (p *Pipeline) acquire(kind domain.OperationKind) (func(), error) {
	guard := p.inFlight[kind]
	if !guard.CompareAndSwap(false, true) {
		return nil, errors.Wrapf(domain.ErrBusy, "%s", kind)
	}
	return func() { guard.Store(false) }, nil
}

func (p *Pipeline) reject(log *zap.Logger, err error) (domain.Receipt, error) {
	log.Info("state transition",
		zap.String("state", string(domain.StateRejected)),
		zap.Error(err))
	return domain.Receipt{}, err
}

// redactAddress shows only the first and last 4 characters of an address.
func redactAddress(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}
