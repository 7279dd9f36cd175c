package exchange

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

// FreeBalance — свободный остаток актива. Нет актива в аккаунте — 0.
func (c *Client) FreeBalance(ctx context.Context, asset string) (float64, error) {
	q := url.Values{}
	q.Set("omitZeroBalances", "true")

	var acc accountResponse
	if err := c.signed(ctx, http.MethodGet, "/api/v3/account", q, &acc); err != nil {
		return 0, errors.Wrap(err, "account")
	}
	for _, b := range acc.Balances {
		if b.Asset != asset {
			continue
		}
		free, err := strconv.ParseFloat(b.Free, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "balance %s: free %q", asset, b.Free)
		}
		return free, nil
	}
	return 0, nil
}
