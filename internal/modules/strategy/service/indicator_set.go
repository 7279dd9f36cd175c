package service

import (
	"signal_bot/internal/models"
	"signal_bot/pkg/indicators"

	"github.com/pkg/errors"
)

// IndicatorSet считает индикаторы по ряду цен и отдаёт только полные строки.
type IndicatorSet struct {
	p Params
}

func NewIndicatorSet(p Params) *IndicatorSet {
	return &IndicatorSet{p: p}
}

// Rows возвращает строки, выровненные по сэмплам, без строк прогрева.
func (s *IndicatorSet) Rows(samples []models.PriceSample) ([]models.IndicatorRow, error) {
	closes := make([]float64, len(samples))
	for i, smp := range samples {
		closes[i] = smp.Close
	}

	emaShort, err := indicators.EMA(closes, s.p.EMAShort)
	if err != nil {
		return nil, errors.Wrap(err, "ema short")
	}
	emaLong, err := indicators.EMA(closes, s.p.EMALong)
	if err != nil {
		return nil, errors.Wrap(err, "ema long")
	}
	macd, macdSignal, err := indicators.MACD(closes, s.p.MACDFast, s.p.MACDSlow, s.p.MACDSignal)
	if err != nil {
		return nil, errors.Wrap(err, "macd")
	}
	rsi, err := indicators.RSI(closes, s.p.RSIPeriod)
	if err != nil {
		return nil, errors.Wrap(err, "rsi")
	}
	bbHigh, bbLow, err := indicators.Bollinger(closes, s.p.BollingerWindow, s.p.BollingerDev)
	if err != nil {
		return nil, errors.Wrap(err, "bollinger")
	}

	rows := make([]models.IndicatorRow, 0, len(samples))
	for i, smp := range samples {
		row := models.IndicatorRow{
			Time:       smp.Time,
			Close:      smp.Close,
			EMAShort:   emaShort[i],
			EMALong:    emaLong[i],
			MACD:       macd[i],
			MACDSignal: macdSignal[i],
			RSI:        rsi[i],
			BBHigh:     bbHigh[i],
			BBLow:      bbLow[i],
		}
		if !row.Complete() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
