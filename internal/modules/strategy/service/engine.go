package service

import (
	"strings"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
)

var ErrInsufficientHistory = errors.New("insufficient indicator history")

// Evaluation — разложение решения по условиям, для логов и отчётов.
type Evaluation struct {
	Decision models.Decision

	BuyCross   bool
	SellCross  bool
	BuyMACD    bool
	SellMACD   bool
	Oversold   bool
	Overbought bool
}

// Reason — короткое человекочитаемое объяснение.
func (e Evaluation) Reason() string {
	var parts []string
	if e.BuyCross {
		parts = append(parts, "ema cross up")
	}
	if e.SellCross {
		parts = append(parts, "ema cross down")
	}
	if e.BuyMACD {
		parts = append(parts, "macd cross up")
	}
	if e.SellMACD {
		parts = append(parts, "macd cross down")
	}
	if e.Overbought {
		parts = append(parts, "overbought")
	}
	if e.Oversold {
		parts = append(parts, "oversold")
	}
	if len(parts) == 0 {
		return "no crossover"
	}
	return strings.Join(parts, ", ")
}

// Engine — комбинированный сигнал: пересечение EMA или MACD,
// с вето от RSI+Bollinger на покупку вершин / продажу доньев.
// Без состояния, чистая функция двух последних строк.
type Engine struct {
	oversold   float64
	overbought float64
}

func NewEngine(p Params) *Engine {
	return &Engine{oversold: p.RSIOversold, overbought: p.RSIOverbought}
}

func (e *Engine) Decide(previous, latest models.IndicatorRow) models.Decision {
	return e.Evaluate(previous, latest).Decision
}

func (e *Engine) Evaluate(previous, latest models.IndicatorRow) Evaluation {
	ev := Evaluation{
		BuyCross:  latest.EMAShort > latest.EMALong && previous.EMAShort <= previous.EMALong,
		SellCross: latest.EMAShort < latest.EMALong && previous.EMAShort >= previous.EMALong,
		BuyMACD:   latest.MACD > latest.MACDSignal && previous.MACD <= previous.MACDSignal,
		SellMACD:  latest.MACD < latest.MACDSignal && previous.MACD >= previous.MACDSignal,

		Oversold:   latest.RSI < e.oversold && latest.Close < latest.BBLow,
		Overbought: latest.RSI > e.overbought && latest.Close > latest.BBHigh,
	}

	// BUY проверяется первым
	switch {
	case (ev.BuyCross || ev.BuyMACD) && !ev.Overbought:
		ev.Decision = models.DecisionBuy
	case (ev.SellCross || ev.SellMACD) && !ev.Oversold:
		ev.Decision = models.DecisionSell
	default:
		ev.Decision = models.DecisionHold
	}
	return ev
}

// EvaluateTail — решение по двум последним строкам; меньше двух строк — ErrInsufficientHistory.
func (e *Engine) EvaluateTail(rows []models.IndicatorRow) (Evaluation, error) {
	if len(rows) < 2 {
		return Evaluation{Decision: models.DecisionHold}, errors.Wrapf(ErrInsufficientHistory, "have %d complete rows, need 2", len(rows))
	}
	return e.Evaluate(rows[len(rows)-2], rows[len(rows)-1]), nil
}

// DecideTail — то же, что EvaluateTail, но только решение.
func (e *Engine) DecideTail(rows []models.IndicatorRow) (models.Decision, error) {
	ev, err := e.EvaluateTail(rows)
	return ev.Decision, err
}
