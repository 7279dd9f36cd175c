package exchange

import (
	"github.com/shopspring/decimal"
)

type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type exchangeInfo struct {
	Symbols []struct {
		Symbol              string `json:"symbol"`
		Status              string `json:"status"`
		BaseAsset           string `json:"baseAsset"`
		QuoteAsset          string `json:"quoteAsset"`
		QuoteAssetPrecision int32  `json:"quoteAssetPrecision"`
		Filters             []struct {
			FilterType string `json:"filterType"`
			StepSize   string `json:"stepSize"`
			MinQty     string `json:"minQty"`
		} `json:"filters"`
	} `json:"symbols"`
}

// symbolRules — то, что нужно для форматирования объёма заявки.
type symbolRules struct {
	step           decimal.Decimal
	minQty         decimal.Decimal
	quotePrecision int32
}

type orderResponse struct {
	Symbol              string `json:"symbol"`
	OrderID             int64  `json:"orderId"`
	ClientOrderID       string `json:"clientOrderId"`
	Status              string `json:"status"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
}

type accountResponse struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

// kline — сырой ряд /api/v3/klines:
// [openTime, open, high, low, close, volume, closeTime, ...]
type kline []any
