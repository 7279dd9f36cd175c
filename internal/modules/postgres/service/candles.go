package service

import (
	"context"
	"fmt"
	"time"

	"signal_bot/internal/models"
	"signal_bot/pkg/db"
)

const selectLatestCloses = `
SELECT open_time, close
FROM (
	SELECT open_time, close
	FROM candles
	WHERE symbol = $1 AND interval = $2
	ORDER BY open_time DESC
	LIMIT $3
) latest
ORDER BY open_time`

// CandleRepo — источник свечей из таблицы candles, которую наполняет внешний загрузчик.
type CandleRepo struct {
	db db.TxManager
}

func NewCandleRepo(db db.TxManager) *CandleRepo {
	return &CandleRepo{db: db}
}

// GetPrices — последние lookback закрытий по возрастанию времени, одним снапшотом.
func (r *CandleRepo) GetPrices(ctx context.Context, symbol, interval string, lookback int) (out []models.PriceSample, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("CandleRepo.GetPrices %s %s: %w", symbol, interval, err)
		}
	}()

	err = r.db.RunReadOnly(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		rows, err := tx.Query(ctxTx, selectLatestCloses, symbol, interval, lookback)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]models.PriceSample, 0, lookback)
		for rows.Next() {
			var (
				openTime time.Time
				closePx  float64
			)
			if err := rows.Scan(&openTime, &closePx); err != nil {
				return err
			}
			out = append(out, models.PriceSample{Time: openTime.UTC(), Close: closePx})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
