package indicators

import "math"

// RSI по Уайлдеру: сглаживание приростов/потерь с alpha = 1/period.
// Первое изменение считается нулевым, значения определены с индекса period-1.
// Если потерь не было — 100.
func RSI(series []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, ErrBadPeriod
	}
	out := nanSlice(len(series))
	if len(series) == 0 {
		return out, nil
	}

	alpha := 1.0 / float64(period)
	avgGain, avgLoss := 0.0, 0.0
	for i := range series {
		gain, loss := 0.0, 0.0
		if i > 0 {
			change := series[i] - series[i-1]
			if math.IsNaN(change) {
				return out, nil
			}
			if change > 0 {
				gain = change
			} else {
				loss = -change
			}
		}
		if i == 0 {
			avgGain, avgLoss = gain, loss
		} else {
			avgGain = alpha*gain + (1-alpha)*avgGain
			avgLoss = alpha*loss + (1-alpha)*avgLoss
		}
		if i < period-1 {
			continue
		}
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out, nil
}
