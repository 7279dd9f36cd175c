package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"signal_bot/internal/models"
	strategy "signal_bot/internal/modules/strategy/service"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrDataFetch = errors.New("data fetch failed")

// MarketDataSource отдаёт последние lookback закрытий, по возрастанию времени.
type MarketDataSource interface {
	GetPrices(ctx context.Context, symbol, interval string, lookback int) ([]models.PriceSample, error)
}

// CycleReporter получает итог каждой итерации.
type CycleReporter interface {
	Report(ctx context.Context, rep models.CycleReport)
}

type State int32

const (
	StateFetchingData State = iota
	StateDeciding
	StateExecuting
	StateWaiting
)

func (s State) String() string {
	switch s {
	case StateFetchingData:
		return "fetching_data"
	case StateDeciding:
		return "deciding"
	case StateExecuting:
		return "executing"
	case StateWaiting:
		return "waiting"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

type LoopConfig struct {
	Pair                   models.Pair
	Interval               string
	Lookback               int
	PollInterval           time.Duration
	MaxConsecutiveFailures int // 0 — без эскалации
}

type LoopDeps struct {
	Data       MarketDataSource
	Indicators *strategy.IndicatorSet
	Engine     *strategy.Engine
	Executor   *Executor
	Reporter   CycleReporter
	Clock      Clock
}

// Loop — последовательный цикл одной пары:
// FetchingData → Deciding → Executing → Waiting → FetchingData.
// Итерации не перекрываются, единственная точка ожидания — Waiting.
type Loop struct {
	cfg   LoopConfig
	deps  LoopDeps
	sizer RiskSizer
	log   *zap.Logger

	state    atomic.Int32
	failures int // подряд неудачных загрузок
}

func NewLoop(cfg LoopConfig, deps LoopDeps) *Loop {
	if deps.Clock == nil {
		deps.Clock = RealClock()
	}
	return &Loop{
		cfg:  cfg,
		deps: deps,
		log:  logger.With(zap.String("symbol", cfg.Pair.Symbol)),
	}
}

func (l *Loop) Symbol() string { return l.cfg.Pair.Symbol }

func (l *Loop) State() State { return State(l.state.Load()) }

func (l *Loop) setState(s State) { l.state.Store(int32(s)) }

// Run крутит итерации до отмены ctx. Отмена прерывает только ожидание
// или загрузку данных: начатая заявка доводится до ответа биржи.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("loop started",
		zap.Float64("risk_budget", float64(l.cfg.Pair.RiskBudget)),
		zap.Duration("poll_interval", l.cfg.PollInterval),
	)
	defer l.log.Info("loop stopped")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.Step(ctx)

		l.setState(StateWaiting)
		if err := l.deps.Clock.Wait(ctx, l.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// Step — одна итерация без ожидания. Итог всегда уходит в Reporter.
func (l *Loop) Step(ctx context.Context) models.CycleReport {
	span, ctx := tracing.StartSpan(ctx, "cycle", opentracing.Tags{"symbol": l.cfg.Pair.Symbol})
	defer span.Finish()

	rep := l.step(ctx)

	span.SetTag("outcome", string(rep.Outcome))
	span.SetTag("decision", string(rep.Decision))
	if rep.Failed() {
		tracing.Fail(span, rep.Err)
	}

	if ctx.Err() != nil && rep.Outcome == models.OutcomeFetchFailed {
		// остановка посреди загрузки — не сбой
		return rep
	}
	l.deps.Reporter.Report(ctx, rep)
	return rep
}

func (l *Loop) step(ctx context.Context) models.CycleReport {
	rep := models.CycleReport{
		Symbol:   l.cfg.Pair.Symbol,
		At:       l.deps.Clock.Now(),
		Decision: models.DecisionHold,
	}

	l.setState(StateFetchingData)
	samples, err := l.fetch(ctx)
	if err != nil {
		l.failures++
		rep.Outcome = models.OutcomeFetchFailed
		rep.Err = err
		rep.ConsecutiveFailures = l.failures
		rep.Escalated = l.cfg.MaxConsecutiveFailures > 0 && l.failures >= l.cfg.MaxConsecutiveFailures
		return rep
	}
	l.failures = 0

	l.setState(StateDeciding)
	ev, latest, err := l.decide(ctx, samples)
	if err != nil {
		rep.Err = err
		rep.Reason = "indicators not ready"
		rep.Outcome = models.OutcomeInsufficientHistory
		return rep
	}
	rep.Decision = ev.Decision
	rep.Reason = ev.Reason()
	rep.Price = latest.Close

	l.setState(StateExecuting)
	switch ev.Decision {
	case models.DecisionHold:
		rep.Outcome = models.OutcomeDecision
		return rep
	case models.DecisionBuy:
		qty, err := l.sizer.Size(l.cfg.Pair.RiskBudget, latest.Close)
		if err != nil {
			rep.Outcome = models.OutcomeInvalidPrice
			rep.Err = err
			return rep
		}
		rep.Quantity = qty
	}

	res := l.execute(ctx, ev.Decision)
	rep.Order = &res
	switch res.Status {
	case models.OrderStatusFilled:
		rep.Outcome = models.OutcomeOrder
	case models.OrderStatusNoInventory:
		rep.Outcome = models.OutcomeNoInventory
	case models.OrderStatusFailed:
		rep.Outcome = models.OutcomeOrderFailed
		rep.Err = res.Err
	default:
		rep.Outcome = models.OutcomeDecision
	}
	return rep
}

func (l *Loop) fetch(ctx context.Context) ([]models.PriceSample, error) {
	span, ctx := tracing.StartSpan(ctx, "fetch", nil)
	defer span.Finish()

	raw, err := l.deps.Data.GetPrices(ctx, l.cfg.Pair.Symbol, l.cfg.Interval, l.cfg.Lookback)
	if err != nil {
		if !errors.Is(err, ErrDataFetch) {
			err = fmt.Errorf("%w: %s: %w", ErrDataFetch, l.cfg.Pair.Symbol, err)
		}
		tracing.Fail(span, err)
		return nil, err
	}

	samples, dropped := models.NormalizeSamples(raw)
	if dropped > 0 {
		l.log.Warn("dropped out-of-order or invalid samples", zap.Int("dropped", dropped), zap.Int("kept", len(samples)))
	}
	span.SetTag("samples", len(samples))
	return samples, nil
}

func (l *Loop) decide(ctx context.Context, samples []models.PriceSample) (strategy.Evaluation, models.IndicatorRow, error) {
	span, _ := tracing.StartSpan(ctx, "decide", nil)
	defer span.Finish()

	rows, err := l.deps.Indicators.Rows(samples)
	if err != nil {
		tracing.Fail(span, err)
		return strategy.Evaluation{}, models.IndicatorRow{}, err
	}
	ev, err := l.deps.Engine.EvaluateTail(rows)
	if err != nil {
		return ev, models.IndicatorRow{}, err
	}
	span.SetTag("decision", string(ev.Decision))
	return ev, rows[len(rows)-1], nil
}

func (l *Loop) execute(ctx context.Context, d models.Decision) models.OrderResult {
	// заявку не обрываем отменой цикла, таймаут — у клиента биржи
	span, ctx := tracing.StartSpan(context.WithoutCancel(ctx), "execute", opentracing.Tags{"side": string(d)})
	defer span.Finish()

	res := l.deps.Executor.Execute(ctx, d, l.cfg.Pair.RiskBudget)
	span.SetTag("status", string(res.Status))
	if res.Err != nil {
		tracing.Fail(span, res.Err)
	}
	return res
}
