package backtest

import (
	"testing"
	"time"

	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary_KillSwitchStream(t *testing.T) {
	s := NewRunner("DEMO", risk.DefaultConfig()).Run(killSwitchStream()).Summary

	assert.Equal(t, "DEMO", s.Symbol)
	assert.Equal(t, 5, s.Observations)
	assert.Equal(t, map[string]int{
		"OK":                        1,
		"NO_SIGNAL":                 1,
		"BLOCKED_HIGH_VOL":          1,
		"INVALID_PRICE":             0,
		"SIZE_TOO_SMALL":            0,
		"EQUITY_LOSS_LIMIT_TRIPPED": 1,
		"KILL_SWITCH_ACTIVE":        1,
	}, s.ReasonCounts)
	assert.Equal(t, 1, s.LongOK)
	assert.Equal(t, 0, s.ShortOK)
	assert.Equal(t, 5, s.MaxAbsUnits)
	assert.Equal(t, 2, s.Blocked())

	assert.Equal(t, 100000.0, s.StartEquity)
	assert.Equal(t, 90000.0, s.EquityFloor)
	assert.Equal(t, 120000.0, s.FinalEquity)
	assert.Equal(t, 120000.0, s.PeakEquity)
	assert.InDelta(t, 0.10, s.MaxDrawdown, 1e-12)
	assert.True(t, s.FirstTime.Equal(t0))
	assert.True(t, s.LastTime.Equal(t0.Add(4*time.Minute)))

	assert.True(t, s.Tripped)
	require.NotNil(t, s.Trip)
	assert.Equal(t, 3, s.Trip.Index)
	assert.Equal(t, 90000.0, s.Trip.Equity)
}

func TestSummary_CountsSumToObservations(t *testing.T) {
	data := []types.Observation{
		obs(0, 100, 1000, 0.01, 1),
		obs(1, 0, 1000, 0.01, 1),
		obs(2, 100, 1000, 0.05, -1),
		obs(3, 50, 1000, 0.01, -1),
	}
	s := NewRunner("X", risk.DefaultConfig()).Run(data).Summary

	total := 0
	for _, n := range s.ReasonCounts {
		total += n
	}
	assert.Equal(t, s.Observations, total)
	assert.Equal(t, 1, s.Count(risk.ReasonInvalidPrice))
	assert.Equal(t, 1, s.Count(risk.ReasonBlockedHighVol))
	assert.Equal(t, 1, s.ShortOK)
	assert.Equal(t, 1, s.LongOK)
}

func TestSummaryBuilder_SnapshotIsolation(t *testing.T) {
	b := NewSummaryBuilder("X", risk.DefaultConfig())
	b.Add(types.DecisionRecord{
		Observation: obs(0, 100, 1000, 0.01, 1),
		Decision:    types.Decision{TargetUnits: 2, Reason: "OK"},
	})

	snap := b.Summary()
	b.Add(types.DecisionRecord{
		Observation: obs(1, 100, 1000, 0.01, 1),
		Decision:    types.Decision{TargetUnits: 2, Reason: "OK"},
	})

	assert.Equal(t, 1, snap.Count(risk.ReasonOK))
	assert.Equal(t, 2, b.Summary().Count(risk.ReasonOK))
}
