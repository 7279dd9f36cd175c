package runner

import (
	"context"
	"fmt"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
)

var (
	ErrOrderFailed = errors.New("order failed")
	// ErrNoInventory — продавать нечего: остаток нулевой или меньше минимального лота.
	ErrNoInventory = errors.New("no inventory")
)

// Exchange — ордерное API спота.
type Exchange interface {
	// MarketBuy тратит quoteNotional котируемой валюты.
	MarketBuy(ctx context.Context, symbol string, quoteNotional float64) (models.Fill, error)
	// MarketSell продаёт baseQty базовой валюты.
	MarketSell(ctx context.Context, symbol string, baseQty float64) (models.Fill, error)
	FreeBalance(ctx context.Context, asset string) (float64, error)
}

// Executor превращает решение в одну рыночную заявку. Без ретраев:
// повтор рыночной заявки после таймаута может купить дважды.
type Executor struct {
	ex   Exchange
	pair models.Pair
}

func NewExecutor(ex Exchange, pair models.Pair) *Executor {
	return &Executor{ex: ex, pair: pair}
}

func (e *Executor) Execute(ctx context.Context, d models.Decision, budget models.RiskBudget) (res models.OrderResult) {
	res = models.OrderResult{Symbol: e.pair.Symbol, Side: d, Status: models.OrderStatusSkipped}

	defer func() {
		if p := recover(); p != nil {
			res.Status = models.OrderStatusFailed
			res.Err = errors.Wrapf(ErrOrderFailed, "%s %s: panic: %v", d, e.pair.Symbol, p)
		}
	}()

	switch d {
	case models.DecisionBuy:
		res.RequestedAmount = float64(budget)
		fill, err := e.ex.MarketBuy(ctx, e.pair.Symbol, float64(budget))
		return e.settle(res, fill, err)

	case models.DecisionSell:
		free, err := e.ex.FreeBalance(ctx, e.pair.BaseAsset)
		if err != nil {
			res.Status = models.OrderStatusFailed
			res.Err = failed(d, e.pair.Symbol, errors.Wrapf(err, "free balance %s", e.pair.BaseAsset))
			return res
		}
		if !(free > 0) {
			res.Status = models.OrderStatusNoInventory
			return res
		}
		// продаём весь свободный остаток
		res.RequestedAmount = free
		fill, err := e.ex.MarketSell(ctx, e.pair.Symbol, free)
		if errors.Is(err, ErrNoInventory) {
			// пыль после прошлой продажи, заявка не отправлялась
			res.Status = models.OrderStatusNoInventory
			return res
		}
		return e.settle(res, fill, err)
	}
	return res
}

func (e *Executor) settle(res models.OrderResult, fill models.Fill, err error) models.OrderResult {
	if err != nil {
		res.Status = models.OrderStatusFailed
		res.Err = failed(res.Side, res.Symbol, err)
		return res
	}
	res.Status = models.OrderStatusFilled
	res.Fill = &fill
	return res
}

func failed(d models.Decision, symbol string, cause error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrOrderFailed, d, symbol, cause)
}
