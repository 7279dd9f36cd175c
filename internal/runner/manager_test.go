package runner

import (
	"context"
	"testing"
	"time"

	"signal_bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idleLoop(pair models.Pair) *Loop {
	l := newTestLoop(staticData(vSeries(60, 1)), &exchangeMock{}, &recorder{}, RealClock())
	l.cfg.Pair = pair
	l.cfg.PollInterval = time.Hour
	return l
}

func TestManagerRefusesDuplicates(t *testing.T) {
	m := NewManager()
	ctx := context.Background()

	require.NoError(t, m.Start(ctx, idleLoop(testPair)))
	require.Error(t, m.Start(ctx, idleLoop(testPair)))

	other := testPair
	other.Symbol = "BTCUSDT"
	require.NoError(t, m.Start(ctx, idleLoop(other)))
	assert.Equal(t, []string{"BTCUSDT", "PEPEUSDT"}, m.Symbols())

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, m.StopAll(stopCtx))
	assert.Empty(t, m.Symbols())
}

func TestManagerStopOne(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Start(context.Background(), idleLoop(testPair)))

	assert.Eventually(t, func() bool {
		return m.States()["PEPEUSDT"] == StateWaiting
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx, "PEPEUSDT"))
	require.Error(t, m.Stop(ctx, "PEPEUSDT"))
}
