package runner

import (
	"context"
	"testing"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type exchangeMock struct {
	mock.Mock
}

func (m *exchangeMock) MarketBuy(ctx context.Context, symbol string, quoteNotional float64) (models.Fill, error) {
	args := m.Called(ctx, symbol, quoteNotional)
	return args.Get(0).(models.Fill), args.Error(1)
}

func (m *exchangeMock) MarketSell(ctx context.Context, symbol string, baseQty float64) (models.Fill, error) {
	args := m.Called(ctx, symbol, baseQty)
	return args.Get(0).(models.Fill), args.Error(1)
}

func (m *exchangeMock) FreeBalance(ctx context.Context, asset string) (float64, error) {
	args := m.Called(ctx, asset)
	return args.Get(0).(float64), args.Error(1)
}

var testPair = models.Pair{Symbol: "PEPEUSDT", BaseAsset: "PEPE", QuoteAsset: "USDT", RiskBudget: 10}

func TestExecuteHoldDoesNothing(t *testing.T) {
	ex := &exchangeMock{}
	res := NewExecutor(ex, testPair).Execute(context.Background(), models.DecisionHold, 10)

	assert.Equal(t, models.OrderStatusSkipped, res.Status)
	assert.False(t, res.Attempted())
	ex.AssertExpectations(t)
	ex.AssertNotCalled(t, "MarketBuy", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteBuySpendsBudgetOnce(t *testing.T) {
	ex := &exchangeMock{}
	ex.On("MarketBuy", mock.Anything, "PEPEUSDT", 10.0).
		Return(models.Fill{OrderID: "1", ExecutedQty: 1e6, QuoteQty: 10}, nil).Once()

	res := NewExecutor(ex, testPair).Execute(context.Background(), models.DecisionBuy, 10)

	require.NoError(t, res.Err)
	assert.Equal(t, models.OrderStatusFilled, res.Status)
	assert.Equal(t, 10.0, res.RequestedAmount)
	require.NotNil(t, res.Fill)
	assert.Equal(t, "1", res.Fill.OrderID)
	ex.AssertExpectations(t)
	ex.AssertNumberOfCalls(t, "MarketBuy", 1)
}

func TestExecuteBuyFailureIsNotRetried(t *testing.T) {
	ex := &exchangeMock{}
	cause := errors.New("connection reset")
	ex.On("MarketBuy", mock.Anything, "PEPEUSDT", 10.0).Return(models.Fill{}, cause)

	res := NewExecutor(ex, testPair).Execute(context.Background(), models.DecisionBuy, 10)

	assert.Equal(t, models.OrderStatusFailed, res.Status)
	assert.True(t, errors.Is(res.Err, ErrOrderFailed))
	assert.True(t, errors.Is(res.Err, cause))
	assert.Nil(t, res.Fill)
	ex.AssertNumberOfCalls(t, "MarketBuy", 1)
}

func TestExecuteSellWithoutInventory(t *testing.T) {
	ex := &exchangeMock{}
	ex.On("FreeBalance", mock.Anything, "PEPE").Return(0.0, nil)

	res := NewExecutor(ex, testPair).Execute(context.Background(), models.DecisionSell, 10)

	assert.Equal(t, models.OrderStatusNoInventory, res.Status)
	assert.NoError(t, res.Err)
	assert.False(t, res.Attempted())
	ex.AssertNotCalled(t, "MarketSell", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteSellWholeFreeBalance(t *testing.T) {
	ex := &exchangeMock{}
	ex.On("FreeBalance", mock.Anything, "PEPE").Return(123456.0, nil)
	ex.On("MarketSell", mock.Anything, "PEPEUSDT", 123456.0).
		Return(models.Fill{OrderID: "2", ExecutedQty: 123456}, nil).Once()

	res := NewExecutor(ex, testPair).Execute(context.Background(), models.DecisionSell, 10)

	assert.Equal(t, models.OrderStatusFilled, res.Status)
	assert.Equal(t, 123456.0, res.RequestedAmount)
	ex.AssertExpectations(t)
}

func TestExecuteSellDustIsNoInventory(t *testing.T) {
	ex := &exchangeMock{}
	ex.On("FreeBalance", mock.Anything, "PEPE").Return(0.4, nil)
	ex.On("MarketSell", mock.Anything, "PEPEUSDT", 0.4).
		Return(models.Fill{}, errors.Wrap(ErrNoInventory, "qty 0 (min 1, step 1)")).Once()

	res := NewExecutor(ex, testPair).Execute(context.Background(), models.DecisionSell, 10)

	assert.Equal(t, models.OrderStatusNoInventory, res.Status)
	assert.NoError(t, res.Err)
	assert.Nil(t, res.Fill)
	assert.False(t, res.Attempted())
	ex.AssertExpectations(t)
}

func TestExecuteSellBalanceError(t *testing.T) {
	ex := &exchangeMock{}
	ex.On("FreeBalance", mock.Anything, "PEPE").Return(0.0, errors.New("timeout"))

	res := NewExecutor(ex, testPair).Execute(context.Background(), models.DecisionSell, 10)

	assert.Equal(t, models.OrderStatusFailed, res.Status)
	assert.True(t, errors.Is(res.Err, ErrOrderFailed))
	ex.AssertNotCalled(t, "MarketSell", mock.Anything, mock.Anything, mock.Anything)
}

type panicExchange struct{ exchangeMock }

func (p *panicExchange) MarketBuy(context.Context, string, float64) (models.Fill, error) {
	panic("nil map")
}

func TestExecuteRecoversPanic(t *testing.T) {
	var res models.OrderResult
	require.NotPanics(t, func() {
		res = NewExecutor(&panicExchange{}, testPair).Execute(context.Background(), models.DecisionBuy, 10)
	})
	assert.Equal(t, models.OrderStatusFailed, res.Status)
	assert.True(t, errors.Is(res.Err, ErrOrderFailed))
}
