package models

import (
	"math"
	"time"
)

// Pair — торгуемая пара и её бюджет риска на одну заявку (в котируемой валюте).
type Pair struct {
	Symbol     string     `mapstructure:"symbol" yaml:"symbol"`
	BaseAsset  string     `mapstructure:"base_asset" yaml:"base_asset"`
	QuoteAsset string     `mapstructure:"quote_asset" yaml:"quote_asset"`
	RiskBudget RiskBudget `mapstructure:"risk_budget" yaml:"risk_budget"`
}

// RiskBudget — сколько котируемой валюты можно потратить на одну заявку.
type RiskBudget float64

// PriceSample — цена закрытия свечи.
type PriceSample struct {
	Time  time.Time
	Close float64
}

// IndicatorRow — индикаторы, посчитанные на одной свече.
type IndicatorRow struct {
	Time       time.Time
	Close      float64
	EMAShort   float64
	EMALong    float64
	MACD       float64
	MACDSignal float64
	RSI        float64
	BBHigh     float64
	BBLow      float64
}

// Complete == все компоненты определены (прогрев закончен).
func (r IndicatorRow) Complete() bool {
	for _, v := range [...]float64{r.Close, r.EMAShort, r.EMALong, r.MACD, r.MACDSignal, r.RSI, r.BBHigh, r.BBLow} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// NormalizeSamples оставляет строго возрастающие по времени сэмплы с валидной ценой.
// Возвращает число выброшенных.
func NormalizeSamples(in []PriceSample) ([]PriceSample, int) {
	out := make([]PriceSample, 0, len(in))
	dropped := 0
	for _, s := range in {
		if s.Close <= 0 || math.IsNaN(s.Close) {
			dropped++
			continue
		}
		if n := len(out); n > 0 && !s.Time.After(out[n-1].Time) {
			dropped++
			continue
		}
		out = append(out, s)
	}
	return out, dropped
}
