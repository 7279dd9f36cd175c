package exchange

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// rules — LOT_SIZE и точность котируемой валюты, кэшируются на процесс.
func (c *Client) rules(ctx context.Context, symbol string) (symbolRules, error) {
	c.mu.RLock()
	r, ok := c.symbols[symbol]
	c.mu.RUnlock()
	if ok {
		return r, nil
	}

	q := url.Values{}
	q.Set("symbol", symbol)

	var info exchangeInfo
	if err := c.public(ctx, "/api/v3/exchangeInfo", q, &info); err != nil {
		return symbolRules{}, errors.Wrapf(err, "exchangeInfo %s", symbol)
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		if s.Status != "" && s.Status != "TRADING" {
			return symbolRules{}, errors.Errorf("symbol %s not trading: status=%s", symbol, s.Status)
		}

		r = symbolRules{quotePrecision: s.QuoteAssetPrecision}
		if r.quotePrecision <= 0 {
			r.quotePrecision = 8
		}
		for _, f := range s.Filters {
			if f.FilterType != "LOT_SIZE" {
				continue
			}
			step, err := decimal.NewFromString(f.StepSize)
			if err != nil {
				return symbolRules{}, errors.Wrapf(err, "%s stepSize %q", symbol, f.StepSize)
			}
			minQty, err := decimal.NewFromString(f.MinQty)
			if err != nil {
				return symbolRules{}, errors.Wrapf(err, "%s minQty %q", symbol, f.MinQty)
			}
			r.step, r.minQty = step, minQty
		}
		if !r.step.IsPositive() {
			return symbolRules{}, errors.Errorf("symbol %s: no LOT_SIZE filter", symbol)
		}

		c.mu.Lock()
		c.symbols[symbol] = r
		c.mu.Unlock()
		return r, nil
	}
	return symbolRules{}, errors.Wrap(ErrUnknownSymbol, symbol)
}

// floorToStep округляет объём вниз до шага лота.
func floorToStep(qty, step decimal.Decimal) decimal.Decimal {
	return qty.Div(step).Floor().Mul(step)
}
