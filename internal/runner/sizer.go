package runner

import (
	"math"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
)

var ErrInvalidPrice = errors.New("invalid price")

// RiskSizer — фиксированный риск на сделку: budget/price.
// Единственное место, где считается объём, от индикаторов не зависит.
type RiskSizer struct{}

func (RiskSizer) Size(budget models.RiskBudget, price float64) (float64, error) {
	if !(price > 0) || math.IsInf(price, 0) {
		return 0, errors.Wrapf(ErrInvalidPrice, "price %v", price)
	}
	return float64(budget) / price, nil
}
