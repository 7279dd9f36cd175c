// Package indicators — индикаторы по ряду цен закрытия.
// Позиции прогрева заполняются NaN, ряды выровнены по индексу входа.
package indicators

import (
	"errors"
	"math"
)

var ErrBadPeriod = errors.New("indicators: period must be positive")

// EMA — экспонента с alpha = 2/(period+1), затравка первым значением ряда.
// Значения определены начиная с period-й точки (индекс period-1).
// NaN во входе пропускаются до первого валидного значения.
func EMA(series []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrBadPeriod
	}
	out := nanSlice(len(series))
	alpha := 2.0 / (float64(period) + 1)

	seen := 0
	value := 0.0
	for i, v := range series {
		if math.IsNaN(v) {
			if seen > 0 {
				// дырка посреди ряда — дальше не считаем
				return out, nil
			}
			continue
		}
		if seen == 0 {
			value = v
		} else {
			value = alpha*v + (1-alpha)*value
		}
		seen++
		if seen >= period {
			out[i] = value
		}
	}
	return out, nil
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
