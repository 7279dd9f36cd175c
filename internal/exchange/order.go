package exchange

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"signal_bot/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// MarketBuy — рыночная покупка на quoteNotional котируемой валюты (quoteOrderQty).
func (c *Client) MarketBuy(ctx context.Context, symbol string, quoteNotional float64) (models.Fill, error) {
	if !(quoteNotional > 0) {
		return models.Fill{}, errors.Errorf("market buy %s: notional must be > 0, got %v", symbol, quoteNotional)
	}
	r, err := c.rules(ctx, symbol)
	if err != nil {
		return models.Fill{}, err
	}
	amount := decimal.NewFromFloat(quoteNotional).Truncate(r.quotePrecision)

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("side", "BUY")
	q.Set("type", "MARKET")
	q.Set("quoteOrderQty", amount.String())
	return c.placeOrder(ctx, q)
}

// MarketSell — рыночная продажа baseQty, объём режется вниз до LOT_SIZE.stepSize.
func (c *Client) MarketSell(ctx context.Context, symbol string, baseQty float64) (models.Fill, error) {
	r, err := c.rules(ctx, symbol)
	if err != nil {
		return models.Fill{}, err
	}
	qty := floorToStep(decimal.NewFromFloat(baseQty), r.step)
	if !qty.IsPositive() || qty.LessThan(r.minQty) {
		return models.Fill{}, errors.Wrapf(ErrBelowMinQty, "market sell %s: qty %s (min %s, step %s)", symbol, qty, r.minQty, r.step)
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("side", "SELL")
	q.Set("type", "MARKET")
	q.Set("quantity", qty.String())
	return c.placeOrder(ctx, q)
}

func (c *Client) placeOrder(ctx context.Context, q url.Values) (models.Fill, error) {
	q.Set("newClientOrderId", newClientOrderID())
	q.Set("newOrderRespType", "RESULT")

	var resp orderResponse
	if err := c.signed(ctx, http.MethodPost, "/api/v3/order", q, &resp); err != nil {
		return models.Fill{}, errors.Wrapf(err, "order %s %s", q.Get("side"), q.Get("symbol"))
	}

	executed, _ := strconv.ParseFloat(resp.ExecutedQty, 64)
	quote, _ := strconv.ParseFloat(resp.CummulativeQuoteQty, 64)
	return models.Fill{
		OrderID:       strconv.FormatInt(resp.OrderID, 10),
		ClientOrderID: resp.ClientOrderID,
		Status:        resp.Status,
		ExecutedQty:   executed,
		QuoteQty:      quote,
	}, nil
}

// newClientOrderID — уникальный id заявки, по нему можно найти заявку после таймаута.
func newClientOrderID() string {
	return uuid.NewString()
}
