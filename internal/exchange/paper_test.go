package exchange

import (
	"context"
	"testing"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPrice float64

func (p fixedPrice) LastPrice(context.Context, string) (float64, error) { return float64(p), nil }

var pepe = models.Pair{Symbol: "PEPEUSDT", BaseAsset: "PEPE", QuoteAsset: "USDT", RiskBudget: 10}

func TestPaperRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewPaperExchange(fixedPrice(0.5), []models.Pair{pepe}, 100)

	base, err := p.FreeBalance(ctx, "PEPE")
	require.NoError(t, err)
	assert.Zero(t, base)

	buy, err := p.MarketBuy(ctx, "PEPEUSDT", 10)
	require.NoError(t, err)
	assert.Equal(t, 20.0, buy.ExecutedQty)
	assert.Equal(t, "paper-1", buy.OrderID)

	quote, _ := p.FreeBalance(ctx, "USDT")
	assert.Equal(t, 90.0, quote)

	base, _ = p.FreeBalance(ctx, "PEPE")
	sell, err := p.MarketSell(ctx, "PEPEUSDT", base)
	require.NoError(t, err)
	assert.Equal(t, 10.0, sell.QuoteQty)
	assert.Equal(t, "paper-2", sell.OrderID)

	quote, _ = p.FreeBalance(ctx, "USDT")
	assert.Equal(t, 100.0, quote)
}

func TestPaperRejectsOverspend(t *testing.T) {
	p := NewPaperExchange(fixedPrice(1), []models.Pair{pepe}, 5)

	_, err := p.MarketBuy(context.Background(), "PEPEUSDT", 10)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))

	_, err = p.MarketSell(context.Background(), "PEPEUSDT", 1)
	assert.True(t, errors.Is(err, ErrInsufficientFunds))

	_, err = p.MarketBuy(context.Background(), "BTCUSDT", 1)
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
}
