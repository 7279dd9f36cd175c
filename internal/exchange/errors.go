package exchange

import (
	"fmt"

	"signal_bot/internal/runner"

	"github.com/pkg/errors"
)

var (
	ErrStreamStale       = errors.New("kline stream is stale")
	ErrStreamEmpty       = errors.New("kline stream has no candles yet")
	ErrBelowMinQty       = fmt.Errorf("%w: quantity below exchange minimum", runner.ErrNoInventory)
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownSymbol     = errors.New("unknown symbol")
)

// APIError — отказ Binance: HTTP-статус + код биржи.
type APIError struct {
	Status int    `json:"-"`
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance http %d: code=%d msg=%s", e.Status, e.Code, e.Msg)
}
