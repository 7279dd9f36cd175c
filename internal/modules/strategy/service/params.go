package service

import "fmt"

// Params — окна и пороги индикаторов. Все значения приходят из конфига.
type Params struct {
	EMAShort int
	EMALong  int

	MACDFast   int
	MACDSlow   int
	MACDSignal int

	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64

	BollingerWindow int
	BollingerDev    float64
}

func DefaultParams() Params {
	return Params{
		EMAShort:        12,
		EMALong:         26,
		MACDFast:        12,
		MACDSlow:        26,
		MACDSignal:      9,
		RSIPeriod:       14,
		RSIOversold:     30,
		RSIOverbought:   70,
		BollingerWindow: 20,
		BollingerDev:    2,
	}
}

func (p Params) Validate() error {
	switch {
	case p.EMAShort <= 0 || p.EMALong <= 0:
		return fmt.Errorf("ema windows must be positive")
	case p.EMAShort >= p.EMALong:
		return fmt.Errorf("ema short (%d) must be < ema long (%d)", p.EMAShort, p.EMALong)
	case p.MACDFast <= 0 || p.MACDSlow <= 0 || p.MACDSignal <= 0:
		return fmt.Errorf("macd windows must be positive")
	case p.MACDFast >= p.MACDSlow:
		return fmt.Errorf("macd fast (%d) must be < macd slow (%d)", p.MACDFast, p.MACDSlow)
	case p.RSIPeriod <= 0:
		return fmt.Errorf("rsi period must be positive")
	case p.RSIOversold >= p.RSIOverbought:
		return fmt.Errorf("rsi oversold (%.2f) must be < overbought (%.2f)", p.RSIOversold, p.RSIOverbought)
	case p.BollingerWindow <= 0 || p.BollingerDev <= 0:
		return fmt.Errorf("bollinger window and deviations must be positive")
	}
	return nil
}

// Warmup — сколько свечей нужно до первой полной строки индикаторов.
func (p Params) Warmup() int {
	need := p.EMALong
	if v := p.MACDSlow + p.MACDSignal - 1; v > need {
		need = v
	}
	if p.RSIPeriod > need {
		need = p.RSIPeriod
	}
	if p.BollingerWindow > need {
		need = p.BollingerWindow
	}
	return need
}
