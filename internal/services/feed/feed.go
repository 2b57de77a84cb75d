// Package feed periodically refreshes market prices and the display-currency
// rate, pushing them into the ledger. A failed tick is logged and skipped;
// prices stay at their previous values until the next successful tick.
package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tonpocket/internal/domain"
	"tonpocket/internal/services/pricer"
)

const (
	DefaultInterval = 10 * time.Second

	// the display rate drifts within ±0.25 per tick, decoupled from
	// per-asset pricing
	maxRateStep   = 0.25
	ratePrecision = 4
)

type ledgerSink interface {
	Assets() []domain.Asset
	ApplyPriceUpdate(update domain.PriceUpdate)
	Rate() decimal.Decimal
	SetRate(rate decimal.Decimal)
}

// Feed drives the pricing tick on a fixed schedule.
type Feed struct {
	source   pricer.Source
	ledger   ledgerSink
	logger   *zap.Logger
	interval time.Duration
	rng      *rand.Rand
	sched    gocron.Scheduler
}

// New creates a feed refreshing the ledger from source every interval.
func New(source pricer.Source, ledger ledgerSink, interval time.Duration, logger *zap.Logger) *Feed {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{
		source:   source,
		ledger:   ledger,
		logger:   logger,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start schedules the tick and returns. The scheduler shuts down when ctx is
// cancelled.
func (f *Feed) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	f.sched = scheduler

	job := func(jobCtx context.Context) {
		f.Tick(jobCtx)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(f.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	scheduler.Start()
	f.logger.Info("price feed started", zap.Duration("interval", f.interval))

	go func() {
		<-ctx.Done()
		if sdErr := f.Shutdown(); sdErr != nil {
			f.logger.Warn("feed scheduler shutdown", zap.Error(sdErr))
		}
	}()
	return nil
}

// Shutdown stops the scheduler.
func (f *Feed) Shutdown() error {
	if f.sched == nil {
		return nil
	}
	err := f.sched.Shutdown()
	f.sched = nil
	return err
}

// Tick runs one refresh: fetch quotes for the current asset set, apply them,
// then drift the display rate. A source failure leaves prices untouched and
// never propagates; the rate drift is independent and runs regardless.
func (f *Feed) Tick(ctx context.Context) {
	execID := uuid.NewString()

	quotes, err := f.source.Quotes(ctx, f.ledger.Assets())
	if err != nil {
		f.logger.Warn("price feed tick skipped",
			zap.String("exec_id", execID),
			zap.Error(err))
	} else {
		f.ledger.ApplyPriceUpdate(quotes)
		f.logger.Debug("price feed tick applied",
			zap.String("exec_id", execID),
			zap.Int("quotes", len(quotes)))
	}

	f.driftRate()
}

func (f *Feed) driftRate() {
	current, _ := f.ledger.Rate().Float64()
	next := current + (f.rng.Float64()-0.5)*2*maxRateStep
	if next <= 0 {
		return
	}
	f.ledger.SetRate(decimal.NewFromFloat(next).Round(ratePrecision))
}
