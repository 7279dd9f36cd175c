package indicators

import "math"

// Bollinger — SMA(window) ± k * стандартное отклонение (по генеральной совокупности).
func Bollinger(series []float64, window int, k float64) (upper, lower []float64, err error) {
	if window <= 0 {
		return nil, nil, ErrBadPeriod
	}
	upper = nanSlice(len(series))
	lower = nanSlice(len(series))

	for i := window - 1; i < len(series); i++ {
		sum := 0.0
		for _, v := range series[i-window+1 : i+1] {
			sum += v
		}
		mid := sum / float64(window)

		sq := 0.0
		for _, v := range series[i-window+1 : i+1] {
			d := v - mid
			sq += d * d
		}
		sd := math.Sqrt(sq / float64(window))
		if math.IsNaN(sd) {
			continue
		}
		upper[i] = mid + k*sd
		lower[i] = mid - k*sd
	}
	return upper, lower, nil
}
