package exchange

import (
	"context"
	"strconv"
	"sync"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
)

// PriceSource — цена для исполнения paper-заявок.
type PriceSource interface {
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

// PaperExchange — биржа в памяти: заявки исполняются целиком по последней цене.
type PaperExchange struct {
	prices PriceSource

	mu       sync.Mutex
	pairs    map[string]models.Pair
	balances map[string]float64
	seq      int64
}

// NewPaperExchange выдаёт каждой котируемой валюте стартовый баланс quoteBalance.
func NewPaperExchange(prices PriceSource, pairs []models.Pair, quoteBalance float64) *PaperExchange {
	p := &PaperExchange{
		prices:   prices,
		pairs:    make(map[string]models.Pair, len(pairs)),
		balances: make(map[string]float64),
	}
	for _, pair := range pairs {
		p.pairs[pair.Symbol] = pair
		p.balances[pair.QuoteAsset] = quoteBalance
	}
	return p
}

func (p *PaperExchange) MarketBuy(ctx context.Context, symbol string, quoteNotional float64) (models.Fill, error) {
	pair, price, err := p.quote(ctx, symbol)
	if err != nil {
		return models.Fill{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.balances[pair.QuoteAsset] < quoteNotional {
		return models.Fill{}, errors.Wrapf(ErrInsufficientFunds, "paper buy %s: have %.8f %s, need %.8f",
			symbol, p.balances[pair.QuoteAsset], pair.QuoteAsset, quoteNotional)
	}
	qty := quoteNotional / price
	p.balances[pair.QuoteAsset] -= quoteNotional
	p.balances[pair.BaseAsset] += qty
	return p.fill(qty, quoteNotional), nil
}

func (p *PaperExchange) MarketSell(ctx context.Context, symbol string, baseQty float64) (models.Fill, error) {
	pair, price, err := p.quote(ctx, symbol)
	if err != nil {
		return models.Fill{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.balances[pair.BaseAsset] < baseQty {
		return models.Fill{}, errors.Wrapf(ErrInsufficientFunds, "paper sell %s: have %.8f %s, need %.8f",
			symbol, p.balances[pair.BaseAsset], pair.BaseAsset, baseQty)
	}
	quote := baseQty * price
	p.balances[pair.BaseAsset] -= baseQty
	p.balances[pair.QuoteAsset] += quote
	return p.fill(baseQty, quote), nil
}

func (p *PaperExchange) FreeBalance(_ context.Context, asset string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balances[asset], nil
}

func (p *PaperExchange) quote(ctx context.Context, symbol string) (models.Pair, float64, error) {
	pair, ok := p.pairs[symbol]
	if !ok {
		return models.Pair{}, 0, errors.Wrap(ErrUnknownSymbol, symbol)
	}
	price, err := p.prices.LastPrice(ctx, symbol)
	if err != nil {
		return models.Pair{}, 0, errors.Wrap(err, "paper price")
	}
	if !(price > 0) {
		return models.Pair{}, 0, errors.Errorf("paper price %s <= 0", symbol)
	}
	return pair, price, nil
}

// fill — под p.mu.
func (p *PaperExchange) fill(qty, quote float64) models.Fill {
	p.seq++
	return models.Fill{
		OrderID:       "paper-" + strconv.FormatInt(p.seq, 10),
		ClientOrderID: newClientOrderID(),
		Status:        "FILLED",
		ExecutedQty:   qty,
		QuoteQty:      quote,
	}
}
