package backtest

import (
	"context"
	"sync"
	"testing"
	"time"

	boterrors "github.com/ducminhle1904/crypto-risk-manager/internal/errors"
	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func obs(i int, price, equity, vol float64, signal int) types.Observation {
	return types.Observation{
		Time:       t0.Add(time.Duration(i) * time.Minute),
		Price:      price,
		Equity:     equity,
		Volatility: vol,
		RawSignal:  signal,
	}
}

// killSwitchStream trips on the fourth observation with default limits
func killSwitchStream() []types.Observation {
	return []types.Observation{
		obs(0, 100, 100000, 0.01, 1),
		obs(1, 100, 100000, 0.03, -1),
		obs(2, 100, 95000, 0.01, 0),
		obs(3, 100, 90000, 0.01, 1),
		obs(4, 100, 120000, 0.01, -1),
	}
}

type recordingObserver struct {
	mu        sync.Mutex
	decisions []types.DecisionRecord
	trips     []risk.TripEvent
}

func (o *recordingObserver) OnDecision(_ string, rec types.DecisionRecord) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decisions = append(o.decisions, rec)
}

func (o *recordingObserver) OnTrip(_ string, event risk.TripEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.trips = append(o.trips, event)
}

func TestRunner_Run(t *testing.T) {
	observer := &recordingObserver{}
	runner := NewRunner("DEMO", risk.DefaultConfig(), observer)

	results := runner.Run(killSwitchStream())
	require.Len(t, results.Records, 5)

	reasons := make([]string, 0, len(results.Records))
	for _, rec := range results.Records {
		reasons = append(reasons, rec.Reason)
	}
	assert.Equal(t, []string{
		"OK", "BLOCKED_HIGH_VOL", "NO_SIGNAL", "EQUITY_LOSS_LIMIT_TRIPPED", "KILL_SWITCH_ACTIVE",
	}, reasons)

	// Input fields are carried through untouched
	assert.Equal(t, killSwitchStream()[1], results.Records[1].Observation)
	assert.Equal(t, 5, results.Records[0].TargetUnits)

	assert.Len(t, observer.decisions, 5)
	require.Len(t, observer.trips, 1)
	assert.Equal(t, risk.TripEvent{
		Index:       3,
		Time:        t0.Add(3 * time.Minute),
		Equity:      90000,
		StartEquity: 100000,
		Floor:       90000,
	}, observer.trips[0])
}

func TestRunner_RunsAreIndependent(t *testing.T) {
	runner := NewRunner("DEMO", risk.DefaultConfig())

	first := runner.Run(killSwitchStream())
	second := runner.Run(killSwitchStream()[:1])

	assert.True(t, first.Summary.Tripped)
	assert.False(t, second.Summary.Tripped)
	assert.Equal(t, "OK", second.Records[0].Reason)
}

func TestRunner_EmptyInput(t *testing.T) {
	results := NewRunner("DEMO", risk.DefaultConfig()).Run(nil)

	assert.NotNil(t, results.Records)
	assert.Empty(t, results.Records)
	assert.Equal(t, 0, results.Summary.Observations)
	assert.False(t, results.Summary.Tripped)
	assert.Empty(t, results.Tail(10))
}

func TestResults_Tail(t *testing.T) {
	results := NewRunner("DEMO", risk.DefaultConfig()).Run(killSwitchStream())

	assert.Len(t, results.Tail(2), 2)
	assert.Equal(t, "KILL_SWITCH_ACTIVE", results.Tail(2)[1].Reason)
	assert.Len(t, results.Tail(10), 5)
	assert.Nil(t, results.Tail(0))
}

func TestRunner_RunStreamMatchesRun(t *testing.T) {
	data := killSwitchStream()
	want := NewRunner("DEMO", risk.DefaultConfig()).Run(data)

	in := make(chan types.Observation)
	out := make(chan types.DecisionRecord, len(data))
	go func() {
		defer close(in)
		for _, o := range data {
			in <- o
		}
	}()

	summary, err := NewRunner("DEMO", risk.DefaultConfig()).RunStream(context.Background(), in, out)
	require.NoError(t, err)
	close(out)

	var got []types.DecisionRecord
	for rec := range out {
		got = append(got, rec)
	}
	assert.Equal(t, want.Records, got)
	assert.Equal(t, want.Summary, summary)
}

func TestRunner_RunStreamNilOutput(t *testing.T) {
	in := make(chan types.Observation, 5)
	for _, o := range killSwitchStream() {
		in <- o
	}
	close(in)

	summary, err := NewRunner("DEMO", risk.DefaultConfig()).RunStream(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Observations)
	assert.True(t, summary.Tripped)
}

func TestRunner_RunStreamCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan types.Observation)

	done := make(chan error, 1)
	go func() {
		_, err := NewRunner("DEMO", risk.DefaultConfig()).RunStream(ctx, in, nil)
		done <- err
	}()

	in <- obs(0, 100, 1000, 0.01, 1)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("RunStream did not stop after cancellation")
	}
}

func TestRunner_RunStreamRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []types.Observation
	}{
		{"Out of order", []types.Observation{obs(2, 100, 1000, 0.01, 1), obs(1, 100, 1000, 0.01, 1)}},
		{"Bad signal", []types.Observation{obs(0, 100, 1000, 0.01, 3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make(chan types.Observation, len(tt.data))
			for _, o := range tt.data {
				in <- o
			}
			close(in)

			_, err := NewRunner("DEMO", risk.DefaultConfig()).RunStream(context.Background(), in, nil)
			require.Error(t, err)
			assert.True(t, boterrors.IsValidationError(err))
		})
	}
}
