package risk

import (
	"math/rand"
	"testing"
	"time"

	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func obsAt(i int, price, equity, vol float64, signal int) types.Observation {
	return types.Observation{
		Time:       baseTime.Add(time.Duration(i) * time.Minute),
		Price:      price,
		Equity:     equity,
		Volatility: vol,
		RawSignal:  signal,
	}
}

// TestNewEngine tests the creation of a new engine
func TestNewEngine(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	require.NotNil(t, engine)
	assert.Equal(t, DefaultConfig(), engine.Config())
	assert.False(t, engine.Tripped())

	_, ok := engine.StartEquity()
	assert.False(t, ok)

	_, ok = engine.EquityFloor()
	assert.False(t, ok)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.01, cfg.MaxRiskPerTrade)
	assert.Equal(t, 2.0, cfg.MaxExposure)
	assert.Equal(t, 5, cfg.MaxUnits)
	assert.Equal(t, 0.015, cfg.VolThreshold)
	assert.Equal(t, 0.10, cfg.EquityLossLimit)
}

// TestEngine_StartEquityCapturedOnce covers scenario A and the fixed baseline
func TestEngine_StartEquityCapturedOnce(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	engine.Process(obsAt(0, 100, 100000, 0.01, 1))
	start, ok := engine.StartEquity()
	require.True(t, ok)
	assert.Equal(t, 100000.0, start)

	// A later higher equity must not move the baseline
	engine.Process(obsAt(1, 100, 200000, 0.01, 1))
	start, _ = engine.StartEquity()
	assert.Equal(t, 100000.0, start)

	// 95000 is above the 90000 floor of the original baseline
	d := engine.Process(obsAt(2, 100, 95000, 0.01, 1))
	assert.Equal(t, ReasonOK.String(), d.Reason)
	assert.False(t, d.KillSwitch)
	assert.False(t, engine.Tripped())
}

func TestEngine_Process_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		price      float64
		vol        float64
		signal     int
		wantUnits  int
		wantReason Reason
	}{
		{
			name:       "Scenario C: long capped by max units",
			price:      100,
			vol:        0.01,
			signal:     1,
			wantUnits:  5,
			wantReason: ReasonOK,
		},
		{
			name:       "Short signal mirrors long sizing",
			price:      100,
			vol:        0.01,
			signal:     -1,
			wantUnits:  -5,
			wantReason: ReasonOK,
		},
		{
			name:       "Scenario D: no signal",
			price:      100,
			vol:        0.01,
			signal:     0,
			wantUnits:  0,
			wantReason: ReasonNoSignal,
		},
		{
			name:       "Scenario E: volatility above threshold",
			price:      100,
			vol:        0.02,
			signal:     1,
			wantUnits:  0,
			wantReason: ReasonBlockedHighVol,
		},
		{
			name:       "Volatility equal to threshold is allowed",
			price:      100,
			vol:        0.015,
			signal:     1,
			wantUnits:  5,
			wantReason: ReasonOK,
		},
		{
			name:       "Scenario F: zero price",
			price:      0,
			vol:        0.01,
			signal:     1,
			wantUnits:  0,
			wantReason: ReasonInvalidPrice,
		},
		{
			name:       "Negative price",
			price:      -25,
			vol:        0.01,
			signal:     -1,
			wantUnits:  0,
			wantReason: ReasonInvalidPrice,
		},
		{
			name:       "No signal wins over high volatility",
			price:      100,
			vol:        0.5,
			signal:     0,
			wantUnits:  0,
			wantReason: ReasonNoSignal,
		},
		{
			name:       "High volatility wins over invalid price",
			price:      0,
			vol:        0.5,
			signal:     1,
			wantUnits:  0,
			wantReason: ReasonBlockedHighVol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(DefaultConfig())
			d := engine.Process(obsAt(0, tt.price, 100000, tt.vol, tt.signal))

			assert.Equal(t, tt.wantUnits, d.TargetUnits)
			assert.Equal(t, tt.wantReason.String(), d.Reason)
			assert.False(t, d.KillSwitch)
		})
	}
}

func TestEngine_SizeTooSmall(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	// risk dollars 10, risk per unit 500 -> 0.02 units
	d := engine.Process(obsAt(0, 100000, 1000, 0.01, 1))

	assert.Equal(t, 0, d.TargetUnits)
	assert.Equal(t, ReasonSizeTooSmall.String(), d.Reason)
	assert.False(t, d.KillSwitch)
}

func TestEngine_ZeroMaxUnits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUnits = 0
	engine := NewEngine(cfg)

	d := engine.Process(obsAt(0, 100, 100000, 0.01, 1))

	assert.Equal(t, 0, d.TargetUnits)
	assert.Equal(t, ReasonSizeTooSmall.String(), d.Reason)
}

func TestEngine_ExposureCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUnits = 100
	cfg.MaxExposure = 0.0035
	engine := NewEngine(cfg)

	// risk sizing allows 2000 units, max units 100, exposure 350/100 = 3.5 -> 3
	d := engine.Process(obsAt(0, 100, 100000, 0.01, -1))

	assert.Equal(t, -3, d.TargetUnits)
	assert.Equal(t, ReasonOK.String(), d.Reason)
}

func TestEngine_RiskSizingBelowCaps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxUnits = 1000
	engine := NewEngine(cfg)

	// risk dollars 1000, risk per unit 2.5 -> 400 units; exposure cap 400
	d := engine.Process(obsAt(0, 500, 100000, 0.01, 1))

	assert.Equal(t, 400, d.TargetUnits)
	assert.Equal(t, ReasonOK.String(), d.Reason)
}

func TestEngine_TinyPriceSaturatesAtMaxUnits(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	d := engine.Process(obsAt(0, 1e-300, 100000, 0.01, 1))

	assert.Equal(t, 5, d.TargetUnits)
	assert.Equal(t, ReasonOK.String(), d.Reason)
}

// TestEngine_KillSwitch covers scenario B
func TestEngine_KillSwitch(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	d := engine.Process(obsAt(0, 100, 100000, 0.01, 1))
	require.Equal(t, ReasonOK.String(), d.Reason)

	d = engine.Process(obsAt(1, 100, 89000, 0.01, 1))
	assert.Equal(t, 0, d.TargetUnits)
	assert.Equal(t, ReasonEquityLossLimitTripped.String(), d.Reason)
	assert.True(t, d.KillSwitch)
	assert.True(t, engine.Tripped())

	// Recovery does not reset the switch, and every other rule is skipped
	later := []types.Observation{
		obsAt(2, 100, 150000, 0.01, 1),
		obsAt(3, 0, 150000, 0.01, -1),
		obsAt(4, 100, 150000, 0.5, 0),
	}
	for _, o := range later {
		d = engine.Process(o)
		assert.Equal(t, 0, d.TargetUnits)
		assert.Equal(t, ReasonKillSwitchActive.String(), d.Reason)
		assert.True(t, d.KillSwitch)
	}
}

func TestEngine_KillSwitchBoundaryIsInclusive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EquityLossLimit = 0.5
	engine := NewEngine(cfg)

	engine.Process(obsAt(0, 100, 100, 0.01, 0))
	floor, ok := engine.EquityFloor()
	require.True(t, ok)
	assert.Equal(t, 50.0, floor)

	d := engine.Process(obsAt(1, 100, 50, 0.01, 0))
	assert.Equal(t, ReasonEquityLossLimitTripped.String(), d.Reason)
	assert.True(t, d.KillSwitch)
}

func TestEngine_FullLossLimitTripsOnlyAtZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EquityLossLimit = 1.0
	engine := NewEngine(cfg)

	d := engine.Process(obsAt(0, 100, 100000, 0.01, 1))
	assert.Equal(t, ReasonOK.String(), d.Reason)

	d = engine.Process(obsAt(1, 100, 1, 0.01, 0))
	assert.Equal(t, ReasonNoSignal.String(), d.Reason)

	d = engine.Process(obsAt(2, 100, 0, 0.01, 1))
	assert.Equal(t, ReasonEquityLossLimitTripped.String(), d.Reason)
}

func TestEngine_ZeroStartEquityTripsImmediately(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	// start equity 0 gives a floor of 0, so the first row trips
	d := engine.Process(obsAt(0, 100, 0, 0.01, 1))
	assert.Equal(t, ReasonEquityLossLimitTripped.String(), d.Reason)
	assert.True(t, d.KillSwitch)
}

func randomStream(seed int64, n int) []types.Observation {
	rng := rand.New(rand.NewSource(seed))
	equity := 100000.0
	out := make([]types.Observation, n)
	for i := range out {
		equity *= 1 + (rng.Float64()-0.52)*0.02
		price := 50 + rng.Float64()*150
		if rng.Intn(40) == 0 {
			price = 0
		}
		out[i] = obsAt(i, price, equity, rng.Float64()*0.03, rng.Intn(3)-1)
	}
	return out
}

func TestEngine_Properties(t *testing.T) {
	configs := map[string]Config{
		"default": DefaultConfig(),
		"wide": {
			MaxRiskPerTrade: 0.05,
			MaxExposure:     0.5,
			MaxUnits:        1000,
			VolThreshold:    0.02,
			EquityLossLimit: 0.05,
		},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			engine := NewEngine(cfg)
			tripped := false

			for i, o := range randomStream(42, 2000) {
				d := engine.Process(o)

				assert.True(t, Reason(d.Reason).IsValid(), "row %d", i)
				assert.LessOrEqual(t, abs(d.TargetUnits), cfg.MaxUnits, "row %d", i)

				if tripped {
					assert.Equal(t, ReasonKillSwitchActive.String(), d.Reason, "row %d", i)
				}
				if d.Reason == ReasonEquityLossLimitTripped.String() {
					assert.False(t, tripped, "tripped twice at row %d", i)
					tripped = true
				}
				if tripped {
					assert.Equal(t, 0, d.TargetUnits, "row %d", i)
					assert.True(t, d.KillSwitch, "row %d", i)
				} else {
					assert.False(t, d.KillSwitch, "row %d", i)
				}

				if d.Reason == ReasonOK.String() {
					assert.NotZero(t, d.TargetUnits, "row %d", i)
					assert.Equal(t, o.RawSignal > 0, d.TargetUnits > 0, "row %d", i)
					assert.LessOrEqual(t, float64(abs(d.TargetUnits))*o.Price, o.Equity*cfg.MaxExposure*(1+1e-9), "row %d", i)
				} else {
					assert.Zero(t, d.TargetUnits, "row %d", i)
				}
			}
		})
	}
}

func TestEngine_Deterministic(t *testing.T) {
	stream := randomStream(7, 1500)

	first := NewEngine(DefaultConfig())
	second := NewEngine(DefaultConfig())

	for i, o := range stream {
		assert.Equal(t, first.Process(o), second.Process(o), "row %d", i)
	}
}

func TestReason_IsValid(t *testing.T) {
	for _, r := range AllReasons {
		assert.True(t, r.IsValid(), r.String())
	}
	assert.False(t, Reason("HOLD").IsValid())
	assert.Len(t, AllReasons, 7)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
