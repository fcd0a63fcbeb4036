package risk

import (
	"math"

	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

var _ DecisionEngine = (*Engine)(nil)

// Engine sizes positions from a raw directional signal and enforces a one-way
// equity loss kill switch. It is not safe for concurrent use; run one Engine
// per instrument and feed it observations in time order.
type Engine struct {
	config Config

	startEquity    float64
	hasStartEquity bool
	tripped        bool
}

// NewEngine creates an engine with the given limits
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// Config returns the limits the engine was built with
func (e *Engine) Config() Config {
	return e.config
}

// StartEquity returns the baseline equity captured from the first observation
func (e *Engine) StartEquity() (float64, bool) {
	return e.startEquity, e.hasStartEquity
}

// Tripped reports whether the kill switch has fired
func (e *Engine) Tripped() bool {
	return e.tripped
}

// EquityFloor returns the equity level at or below which the kill switch trips
func (e *Engine) EquityFloor() (float64, bool) {
	if !e.hasStartEquity {
		return 0, false
	}
	return e.startEquity * (1.0 - e.config.EquityLossLimit), true
}

// Process evaluates one observation and returns its decision.
//
// Rule priority is fixed: the equity check runs before the signal and
// volatility filters, and once tripped nothing else is evaluated.
func (e *Engine) Process(obs types.Observation) types.Decision {
	if !e.hasStartEquity {
		e.startEquity = obs.Equity
		e.hasStartEquity = true
	}

	justTripped := false
	if !e.tripped {
		floor, _ := e.EquityFloor()
		if obs.Equity <= floor {
			e.tripped = true
			justTripped = true
		}
	}

	if e.tripped {
		reason := ReasonKillSwitchActive
		if justTripped {
			reason = ReasonEquityLossLimitTripped
		}
		return decision(0, reason, true)
	}

	if obs.RawSignal == types.SignalFlat {
		return decision(0, ReasonNoSignal, false)
	}

	if obs.Volatility > e.config.VolThreshold {
		return decision(0, ReasonBlockedHighVol, false)
	}

	return e.size(obs)
}

// size applies risk-per-trade sizing, the unit cap and the exposure cap
func (e *Engine) size(obs types.Observation) types.Decision {
	riskDollars := obs.Equity * e.config.MaxRiskPerTrade
	riskPerUnit := obs.Price * AdverseMoveFraction
	if riskPerUnit <= 0 {
		return decision(0, ReasonInvalidPrice, false)
	}

	units := floorUnits(riskDollars/riskPerUnit, e.config.MaxUnits)

	if obs.Price > 0 {
		maxNotional := obs.Equity * e.config.MaxExposure
		units = floorUnits(maxNotional/obs.Price, units)
	}

	if units == 0 {
		return decision(0, ReasonSizeTooSmall, false)
	}

	direction := 1
	if obs.RawSignal < 0 {
		direction = -1
	}
	return decision(units*direction, ReasonOK, false)
}

// floorUnits floors x, clamps it to >= 0 and caps it at limit. Values beyond
// the int range saturate at limit instead of overflowing.
func floorUnits(x float64, limit int) int {
	if limit <= 0 || !(x > 0) {
		return 0
	}
	if x >= float64(limit) {
		return limit
	}
	return int(math.Floor(x))
}

func decision(units int, reason Reason, killSwitch bool) types.Decision {
	return types.Decision{
		TargetUnits: units,
		Reason:      reason.String(),
		KillSwitch:  killSwitch,
	}
}
