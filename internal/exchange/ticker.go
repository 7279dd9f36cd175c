package exchange

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// LastPrice — /api/v3/ticker/price, без подписи.
func (c *Client) LastPrice(ctx context.Context, symbol string) (float64, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var t tickerPrice
	if err := c.public(ctx, "/api/v3/ticker/price", q, &t); err != nil {
		return 0, errors.Wrapf(err, "ticker %s", symbol)
	}
	px, err := strconv.ParseFloat(t.Price, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "ticker %s: price %q", symbol, t.Price)
	}
	if px <= 0 {
		return 0, errors.Errorf("ticker %s: price <= 0: %s", symbol, t.Price)
	}
	return px, nil
}
