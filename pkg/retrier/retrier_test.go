package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_FirstAttemptNeedsNoBackoff(t *testing.T) {
	r := New()

	attempts := 0
	start := time.Now()
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestDo_DefaultBudgetIsThreeAttempts(t *testing.T) {
	r := New(WithInitialInterval(time.Millisecond), WithMaxInterval(2*time.Millisecond))

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("connection reset")
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts) // 1 initial + defaultMaxRetries
}

func TestDo_RecoversWithinBudget(t *testing.T) {
	r := New(WithInitialInterval(time.Millisecond))

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("timeout")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDo_ZeroRetriesMeansSingleAttempt(t *testing.T) {
	r := New(WithMaxRetries(0))

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("fail")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDo_CancelInterruptsBackoff(t *testing.T) {
	r := New(WithMaxRetries(5), WithInitialInterval(time.Second), WithJitter(0))
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Do(ctx, func(ctx context.Context) error {
			attempts++
			return errors.New("fail")
		})
	}()

	time.Sleep(20 * time.Millisecond) // let the first attempt fail and enter backoff
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	case <-time.After(time.Second):
		t.Fatal("retrier did not return after cancellation")
	}
}

func TestDoWithData_ReturnsQuoteAfterTransientFailures(t *testing.T) {
	r := New(WithInitialInterval(time.Millisecond))

	calls := 0
	price, err := DoWithData(r, context.Background(), func(ctx context.Context) (decimal.Decimal, error) {
		calls++
		if calls == 1 {
			return decimal.Zero, errors.New("503 service unavailable")
		}
		return decimal.NewFromFloat(5.42), nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, price.Equal(decimal.NewFromFloat(5.42)))
}

func TestDoWithData_ExhaustedBudgetReturnsZeroValue(t *testing.T) {
	r := New(WithMaxRetries(1), WithInitialInterval(time.Millisecond))

	price, err := DoWithData(r, context.Background(), func(ctx context.Context) (decimal.Decimal, error) {
		return decimal.Zero, errors.New("fail")
	})

	require.Error(t, err)
	assert.True(t, price.IsZero())
}
