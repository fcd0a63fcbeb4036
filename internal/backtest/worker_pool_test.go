package backtest

import (
	"context"
	"testing"

	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareScenarios(t *testing.T) {
	limits := []float64{0.05, 0.10, 0.20, 0.50}
	jobs := LossLimitScenarios(risk.DefaultConfig(), limits)

	results, err := CompareScenarios(context.Background(), "DEMO", killSwitchStream(), jobs, 2)
	require.NoError(t, err)
	require.Len(t, results, len(limits))

	for i, r := range results {
		assert.Equal(t, i, r.Order)
		assert.Equal(t, limits[i], r.Config.EquityLossLimit)
		assert.Equal(t, jobs[i].ID, r.ID)
		assert.Equal(t, 5, r.Summary.Observations)
	}

	// equity dips to -10%: only the tighter limits trip
	assert.True(t, results[0].Summary.Tripped)
	assert.True(t, results[1].Summary.Tripped)
	assert.False(t, results[2].Summary.Tripped)
	assert.False(t, results[3].Summary.Tripped)

	// with a 5% limit the 95000 row already trips
	require.NotNil(t, results[0].Summary.Trip)
	assert.Equal(t, 2, results[0].Summary.Trip.Index)
}

func TestCompareScenarios_MatchesSequentialRuns(t *testing.T) {
	jobs := LossLimitScenarios(risk.DefaultConfig(), []float64{0.02, 0.3})

	results, err := CompareScenarios(context.Background(), "DEMO", killSwitchStream(), jobs, 0)
	require.NoError(t, err)

	for i, job := range jobs {
		want := NewRunner("DEMO", job.Config).Run(killSwitchStream()).Summary
		assert.Equal(t, want, results[i].Summary)
	}
}

func TestCompareScenarios_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := CompareScenarios(ctx, "DEMO", killSwitchStream(), LossLimitScenarios(risk.DefaultConfig(), []float64{0.1}), 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompareScenarios_NoJobs(t *testing.T) {
	results, err := CompareScenarios(context.Background(), "DEMO", killSwitchStream(), nil, 2)
	require.NoError(t, err)
	assert.Empty(t, results)
}
