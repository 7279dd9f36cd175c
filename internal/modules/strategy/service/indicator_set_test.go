package service

import (
	"testing"
	"time"

	"signal_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(n int, f func(i int) float64) []models.PriceSample {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.PriceSample, n)
	for i := range out {
		out[i] = models.PriceSample{Time: t0.Add(time.Duration(i) * time.Minute), Close: f(i)}
	}
	return out
}

func TestRowsDropWarmup(t *testing.T) {
	p := DefaultParams()
	set := NewIndicatorSet(p)

	samples := series(60, func(i int) float64 { return 100 + float64(i%7) })
	rows, err := set.Rows(samples)
	require.NoError(t, err)

	assert.Len(t, rows, 60-p.Warmup()+1)
	for _, r := range rows {
		assert.True(t, r.Complete())
	}
	assert.Equal(t, samples[len(samples)-1].Time, rows[len(rows)-1].Time)
	assert.Equal(t, samples[p.Warmup()-1].Time, rows[0].Time)
}

func TestRowsShortSeriesYieldsNothing(t *testing.T) {
	set := NewIndicatorSet(DefaultParams())
	rows, err := set.Rows(series(20, func(i int) float64 { return 1 + float64(i) }))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRowsRejectsBadParams(t *testing.T) {
	p := DefaultParams()
	p.MACDFast = 30
	_, err := NewIndicatorSet(p).Rows(series(50, func(i int) float64 { return 1 }))
	assert.Error(t, err)
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.EMAShort = 26
	assert.Error(t, p.Validate())

	p = DefaultParams()
	p.RSIOversold = 80
	assert.Error(t, p.Validate())

	assert.Equal(t, 34, DefaultParams().Warmup())
}
