package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIndicatorRowComplete(t *testing.T) {
	row := IndicatorRow{Close: 1, EMAShort: 1, EMALong: 1, MACD: 0, MACDSignal: 0, RSI: 50, BBHigh: 2, BBLow: 0.5}
	assert.True(t, row.Complete())

	row.RSI = math.NaN()
	assert.False(t, row.Complete())
}

func TestNormalizeSamplesDropsOutOfOrder(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	in := []PriceSample{
		{Time: t0, Close: 1},
		{Time: t0, Close: 2}, // дубль
		{Time: t0.Add(2 * time.Minute), Close: 3},
		{Time: t0.Add(time.Minute), Close: 4},     // назад во времени
		{Time: t0.Add(3 * time.Minute), Close: 0}, // мусорная цена
		{Time: t0.Add(4 * time.Minute), Close: 5},
	}
	out, dropped := NormalizeSamples(in)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, []float64{1, 3, 5}, []float64{out[0].Close, out[1].Close, out[2].Close})
}

func TestDecisionActionable(t *testing.T) {
	assert.True(t, DecisionBuy.Actionable())
	assert.True(t, DecisionSell.Actionable())
	assert.False(t, DecisionHold.Actionable())
}
