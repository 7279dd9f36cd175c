package models

// Decision — итог сигнального движка.
type Decision string

const (
	DecisionHold Decision = "HOLD"
	DecisionBuy  Decision = "BUY"
	DecisionSell Decision = "SELL"
)

func (d Decision) Actionable() bool { return d == DecisionBuy || d == DecisionSell }
