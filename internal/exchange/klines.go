package exchange

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"

	"github.com/pkg/errors"
)

// GetPrices — последние lookback закрытий по /api/v3/klines, по возрастанию времени.
// Незакрытая свеча отбрасывается, если не включён IncludeOpenCandle.
func (c *Client) GetPrices(ctx context.Context, symbol, interval string, lookback int) ([]models.PriceSample, error) {
	if lookback <= 0 {
		return nil, errors.Errorf("lookback must be positive, got %d", lookback)
	}
	limit := lookback
	if !c.includeOpen {
		limit++ // запас под текущую свечу
	}
	if limit > config.MaxKlinesPerRequest {
		limit = config.MaxKlinesPerRequest
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))

	var rows []kline
	if err := c.public(ctx, "/api/v3/klines", q, &rows); err != nil {
		return nil, errors.Wrapf(err, "klines %s %s", symbol, interval)
	}

	now := c.now()
	out := make([]models.PriceSample, 0, len(rows))
	for i, row := range rows {
		s, closeTime, err := parseKline(row)
		if err != nil {
			return nil, errors.Wrapf(err, "klines %s: row %d", symbol, i)
		}
		if !c.includeOpen && closeTime.After(now) {
			continue
		}
		out = append(out, s)
	}
	if len(out) > lookback {
		out = out[len(out)-lookback:]
	}
	return out, nil
}

func parseKline(row kline) (models.PriceSample, time.Time, error) {
	if len(row) < 7 {
		return models.PriceSample{}, time.Time{}, errors.Errorf("short kline: %d fields", len(row))
	}
	openMs, err := toInt64(row[0])
	if err != nil {
		return models.PriceSample{}, time.Time{}, errors.Wrap(err, "open time")
	}
	closeMs, err := toInt64(row[6])
	if err != nil {
		return models.PriceSample{}, time.Time{}, errors.Wrap(err, "close time")
	}
	closeStr, ok := row[4].(string)
	if !ok {
		return models.PriceSample{}, time.Time{}, errors.Errorf("close is %T, want string", row[4])
	}
	px, err := strconv.ParseFloat(closeStr, 64)
	if err != nil {
		return models.PriceSample{}, time.Time{}, errors.Wrapf(err, "close %q", closeStr)
	}
	return models.PriceSample{Time: time.UnixMilli(openMs).UTC(), Close: px}, time.UnixMilli(closeMs).UTC(), nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, errors.Errorf("unexpected %T", v)
}
