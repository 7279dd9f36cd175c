package runner

import (
	"context"
	"sync"
	"testing"
	"time"

	"signal_bot/internal/models"
	strategy "signal_bot/internal/modules/strategy/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	waits  []time.Duration
	stopAt int // после стольких ожиданий отменяем цикл
	cancel context.CancelFunc
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Wait(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.now = c.now.Add(d)
	n := len(c.waits)
	c.mu.Unlock()

	if c.stopAt > 0 && n >= c.stopAt && c.cancel != nil {
		c.cancel()
	}
	return ctx.Err()
}

type dataFunc func(ctx context.Context, symbol, interval string, lookback int) ([]models.PriceSample, error)

func (f dataFunc) GetPrices(ctx context.Context, symbol, interval string, lookback int) ([]models.PriceSample, error) {
	return f(ctx, symbol, interval, lookback)
}

type recorder struct {
	mu      sync.Mutex
	reports []models.CycleReport
}

func (r *recorder) Report(_ context.Context, rep models.CycleReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// vSeries: n свечей, 80 шагов вниз по 0.5, дальше вверх по 0.3.
// sign=-1 даёт зеркальный ряд (рост, потом падение).
func vSeries(n int, sign float64) []models.PriceSample {
	out := make([]models.PriceSample, 0, n)
	px := 100.0
	for i := 0; i < n; i++ {
		if i < 80 {
			px -= 0.5 * sign
		} else {
			px += 0.3 * sign
		}
		out = append(out, models.PriceSample{Time: t0.Add(time.Duration(i) * time.Minute), Close: px})
	}
	return out
}

func newTestLoop(data MarketDataSource, ex Exchange, rep CycleReporter, clock Clock) *Loop {
	p := strategy.DefaultParams()
	return NewLoop(
		LoopConfig{
			Pair:                   testPair,
			Interval:               "1m",
			Lookback:               200,
			PollInterval:           time.Minute,
			MaxConsecutiveFailures: 3,
		},
		LoopDeps{
			Data:       data,
			Indicators: strategy.NewIndicatorSet(p),
			Engine:     strategy.NewEngine(p),
			Executor:   NewExecutor(ex, testPair),
			Reporter:   rep,
			Clock:      clock,
		},
	)
}

func staticData(samples []models.PriceSample) dataFunc {
	return func(context.Context, string, string, int) ([]models.PriceSample, error) {
		return samples, nil
	}
}

// на 81-й свече V-ряда MACD пересекает сигнальную снизу вверх, RSI глубоко внизу
func TestStepBuysOnCrossUp(t *testing.T) {
	ex := &exchangeMock{}
	ex.On("MarketBuy", mock.Anything, "PEPEUSDT", 10.0).
		Return(models.Fill{OrderID: "42", ExecutedQty: 10 / 60.3, QuoteQty: 10}, nil).Once()
	rec := &recorder{}

	l := newTestLoop(staticData(vSeries(81, 1)), ex, rec, &fakeClock{now: t0})
	rep := l.Step(context.Background())

	assert.Equal(t, models.DecisionBuy, rep.Decision)
	assert.Equal(t, models.OutcomeOrder, rep.Outcome)
	assert.InDelta(t, 60.3, rep.Price, 1e-9)
	assert.InDelta(t, 10/60.3, rep.Quantity, 1e-9)
	require.NotNil(t, rep.Order)
	assert.Equal(t, models.OrderStatusFilled, rep.Order.Status)
	assert.Contains(t, rep.Reason, "macd cross up")
	ex.AssertExpectations(t)

	require.Len(t, rec.reports, 1)
	assert.Equal(t, StateExecuting, l.State())
}

func TestStepHoldPlacesNoOrder(t *testing.T) {
	ex := &exchangeMock{}
	rec := &recorder{}

	// середина нисходящего участка — пересечений нет
	l := newTestLoop(staticData(vSeries(60, 1)), ex, rec, &fakeClock{now: t0})
	rep := l.Step(context.Background())

	assert.Equal(t, models.DecisionHold, rep.Decision)
	assert.Equal(t, models.OutcomeDecision, rep.Outcome)
	assert.Equal(t, "no crossover", rep.Reason)
	assert.Nil(t, rep.Order)
	ex.AssertNotCalled(t, "MarketBuy", mock.Anything, mock.Anything, mock.Anything)
	ex.AssertNotCalled(t, "FreeBalance", mock.Anything, mock.Anything)
}

func TestStepSellWithoutInventory(t *testing.T) {
	ex := &exchangeMock{}
	ex.On("FreeBalance", mock.Anything, "PEPE").Return(0.0, nil)
	rec := &recorder{}

	l := newTestLoop(staticData(vSeries(81, -1)), ex, rec, &fakeClock{now: t0})
	rep := l.Step(context.Background())

	assert.Equal(t, models.DecisionSell, rep.Decision)
	assert.Equal(t, models.OutcomeNoInventory, rep.Outcome)
	assert.NoError(t, rep.Err)
	assert.False(t, rep.Failed())
	ex.AssertNotCalled(t, "MarketSell", mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, rec.reports, 1)
}

func TestStepInsufficientHistory(t *testing.T) {
	ex := &exchangeMock{}
	rec := &recorder{}

	// 34 свечи = одна полная строка
	l := newTestLoop(staticData(vSeries(34, 1)), ex, rec, &fakeClock{now: t0})
	rep := l.Step(context.Background())

	assert.Equal(t, models.OutcomeInsufficientHistory, rep.Outcome)
	assert.Equal(t, models.DecisionHold, rep.Decision)
	assert.True(t, errors.Is(rep.Err, strategy.ErrInsufficientHistory))
	ex.AssertExpectations(t)
}

func TestStepOrderFailureIsReported(t *testing.T) {
	ex := &exchangeMock{}
	ex.On("MarketBuy", mock.Anything, "PEPEUSDT", 10.0).Return(models.Fill{}, errors.New("503"))
	rec := &recorder{}

	l := newTestLoop(staticData(vSeries(81, 1)), ex, rec, &fakeClock{now: t0})
	rep := l.Step(context.Background())

	assert.Equal(t, models.OutcomeOrderFailed, rep.Outcome)
	assert.True(t, errors.Is(rep.Err, ErrOrderFailed))
	assert.True(t, rep.Failed())
}

func TestRunFetchFailureWaitsAndRetries(t *testing.T) {
	ex := &exchangeMock{}
	rec := &recorder{}

	var calls int
	data := dataFunc(func(context.Context, string, string, int) ([]models.PriceSample, error) {
		calls++
		return nil, errors.New("dial tcp: i/o timeout")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock := &fakeClock{now: t0, stopAt: 2, cancel: cancel}

	l := newTestLoop(data, ex, rec, clock)
	err := l.Run(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls, "next cycle runs after the wait")
	assert.Equal(t, []time.Duration{time.Minute, time.Minute}, clock.waits)
	assert.Equal(t, StateWaiting, l.State())

	require.Len(t, rec.reports, 2)
	for i, rep := range rec.reports {
		assert.Equal(t, models.OutcomeFetchFailed, rep.Outcome)
		assert.True(t, errors.Is(rep.Err, ErrDataFetch))
		assert.Equal(t, i+1, rep.ConsecutiveFailures)
		assert.Nil(t, rep.Order)
	}
	assert.Equal(t, t0, rec.reports[0].At)
	assert.Equal(t, t0.Add(time.Minute), rec.reports[1].At)

	ex.AssertNotCalled(t, "MarketBuy", mock.Anything, mock.Anything, mock.Anything)
	ex.AssertNotCalled(t, "FreeBalance", mock.Anything, mock.Anything)
}

func TestFailuresEscalateAndReset(t *testing.T) {
	rec := &recorder{}
	fail := true
	data := dataFunc(func(context.Context, string, string, int) ([]models.PriceSample, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return vSeries(60, 1), nil
	})

	l := newTestLoop(data, &exchangeMock{}, rec, &fakeClock{now: t0})
	for i := 0; i < 4; i++ {
		l.Step(context.Background())
	}
	fail = false
	ok := l.Step(context.Background())

	require.Len(t, rec.reports, 5)
	assert.False(t, rec.reports[1].Escalated)
	assert.True(t, rec.reports[2].Escalated)
	assert.True(t, rec.reports[3].Escalated)
	assert.Equal(t, 4, rec.reports[3].ConsecutiveFailures)

	assert.False(t, ok.Escalated)
	assert.Zero(t, ok.ConsecutiveFailures)
	assert.Equal(t, models.OutcomeDecision, ok.Outcome)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	l := newTestLoop(staticData(vSeries(60, 1)), &exchangeMock{}, rec, &fakeClock{now: t0})

	require.ErrorIs(t, l.Run(ctx), context.Canceled)
	assert.Empty(t, rec.reports)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "fetching_data", StateFetchingData.String())
	assert.Equal(t, "waiting", StateWaiting.String())
	assert.Equal(t, "state(9)", State(9).String())
}
