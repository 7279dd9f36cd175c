package models

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusSkipped     OrderStatus = "skipped"      // HOLD, заявка не отправлялась
	OrderStatusFilled      OrderStatus = "filled"       // биржа приняла
	OrderStatusNoInventory OrderStatus = "no_inventory" // продавать нечего
	OrderStatusFailed      OrderStatus = "failed"       // отказ биржи / транспорт
)

// Fill — ответ биржи по рыночной заявке.
type Fill struct {
	OrderID       string
	ClientOrderID string
	Status        string
	ExecutedQty   float64 // base
	QuoteQty      float64 // quote
}

// OrderResult живёт одну итерацию цикла и нигде не хранится.
type OrderResult struct {
	Symbol          string
	Side            Decision
	RequestedAmount float64 // quote для BUY, base для SELL
	Fill            *Fill
	Status          OrderStatus
	Err             error
}

func (r OrderResult) Attempted() bool {
	return r.Status == OrderStatusFilled || r.Status == OrderStatusFailed
}

type Outcome string

const (
	OutcomeDecision            Outcome = "decision" // HOLD или сигнал без заявки
	OutcomeOrder               Outcome = "order"
	OutcomeFetchFailed         Outcome = "fetch_failed"
	OutcomeInsufficientHistory Outcome = "insufficient_history"
	OutcomeInvalidPrice        Outcome = "invalid_price"
	OutcomeNoInventory         Outcome = "no_inventory"
	OutcomeOrderFailed         Outcome = "order_failed"
)

// CycleReport — наблюдаемый итог одной итерации цикла.
type CycleReport struct {
	Symbol   string
	At       time.Time
	Outcome  Outcome
	Decision Decision
	Reason   string
	Price    float64
	Quantity float64 // оценка RiskSizer для BUY
	Order    *OrderResult
	Err      error

	// подряд неудачных загрузок данных, включая эту
	ConsecutiveFailures int
	// порог loop.max_consecutive_failures достигнут
	Escalated bool
}

func (r CycleReport) Failed() bool {
	switch r.Outcome {
	case OutcomeFetchFailed, OutcomeInvalidPrice, OutcomeOrderFailed:
		return true
	}
	return false
}
