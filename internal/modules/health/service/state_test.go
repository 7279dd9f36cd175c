package service

import (
	"testing"
	"time"

	"signal_bot/internal/models"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestReadyNeedsEveryPairFetched(t *testing.T) {
	s := NewState([]string{"BTCUSDT", "PEPEUSDT"})
	assert.False(t, s.Ready())

	s.Observe(models.CycleReport{Symbol: "BTCUSDT", At: at, Outcome: models.OutcomeDecision, Decision: models.DecisionHold})
	assert.False(t, s.Ready())

	s.Observe(models.CycleReport{Symbol: "PEPEUSDT", At: at, Outcome: models.OutcomeInsufficientHistory, Decision: models.DecisionHold})
	assert.True(t, s.Ready())
}

func TestEscalationClearsAfterRecovery(t *testing.T) {
	s := NewState([]string{"BTCUSDT"})
	s.Observe(models.CycleReport{Symbol: "BTCUSDT", At: at, Outcome: models.OutcomeDecision})
	require.True(t, s.Ready())

	s.Observe(models.CycleReport{
		Symbol: "BTCUSDT", At: at.Add(time.Minute), Outcome: models.OutcomeFetchFailed,
		Err: errors.New("timeout"), ConsecutiveFailures: 5, Escalated: true,
	})
	assert.False(t, s.Ready())

	p := s.Pairs()[0]
	assert.Equal(t, "timeout", p.LastError)
	assert.Equal(t, 5, p.ConsecutiveFailures)

	s.Observe(models.CycleReport{Symbol: "BTCUSDT", At: at.Add(2 * time.Minute), Outcome: models.OutcomeDecision})
	assert.True(t, s.Ready())
	assert.Empty(t, s.Pairs()[0].LastError)
}

func TestSummary(t *testing.T) {
	s := NewState([]string{"PEPEUSDT", "BTCUSDT"})
	s.Observe(models.CycleReport{
		Symbol: "PEPEUSDT", At: at, Outcome: models.OutcomeOrder, Decision: models.DecisionBuy, Price: 0.0000012,
	})

	out := s.Summary()
	assert.Contains(t, out, "not ready")
	assert.Contains(t, out, "- BTCUSDT: ещё не было циклов")
	assert.Contains(t, out, "- PEPEUSDT: order BUY @ 1.2e-06 (12:00:00)")
	assert.Equal(t, at, s.Pairs()[1].LastOrder)
}
