package indicators

import (
	"errors"
	"math"
)

// MACD возвращает линию MACD (fast EMA - slow EMA) и сигнальную линию (EMA от MACD).
func MACD(series []float64, fastPeriod, slowPeriod, signalPeriod int) (macd, signal []float64, err error) {
	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 {
		return nil, nil, ErrBadPeriod
	}
	if fastPeriod >= slowPeriod {
		return nil, nil, errors.New("indicators: fast period must be smaller than slow period")
	}

	fast, err := EMA(series, fastPeriod)
	if err != nil {
		return nil, nil, err
	}
	slow, err := EMA(series, slowPeriod)
	if err != nil {
		return nil, nil, err
	}

	macd = make([]float64, len(series))
	for i := range series {
		if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) {
			macd[i] = math.NaN()
			continue
		}
		macd[i] = fast[i] - slow[i]
	}

	signal, err = EMA(macd, signalPeriod)
	if err != nil {
		return nil, nil, err
	}
	return macd, signal, nil
}
