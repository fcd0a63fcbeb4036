package risk

import "time"

// Reason explains why the engine produced a given target size
type Reason string

const (
	ReasonOK                     Reason = "OK"
	ReasonNoSignal               Reason = "NO_SIGNAL"
	ReasonBlockedHighVol         Reason = "BLOCKED_HIGH_VOL"
	ReasonInvalidPrice           Reason = "INVALID_PRICE"
	ReasonSizeTooSmall           Reason = "SIZE_TOO_SMALL"
	ReasonEquityLossLimitTripped Reason = "EQUITY_LOSS_LIMIT_TRIPPED"
	ReasonKillSwitchActive       Reason = "KILL_SWITCH_ACTIVE"
)

// AllReasons lists every reason code in display order
var AllReasons = []Reason{
	ReasonOK,
	ReasonNoSignal,
	ReasonBlockedHighVol,
	ReasonInvalidPrice,
	ReasonSizeTooSmall,
	ReasonEquityLossLimitTripped,
	ReasonKillSwitchActive,
}

// String returns the wire form of the reason
func (r Reason) String() string {
	return string(r)
}

// IsValid reports whether r belongs to the fixed enumeration
func (r Reason) IsValid() bool {
	for _, known := range AllReasons {
		if r == known {
			return true
		}
	}
	return false
}

// AdverseMoveFraction is the assumed adverse price move per unit used for sizing (0.5%).
const AdverseMoveFraction = 0.005

// Config holds the immutable risk limits an Engine is built with
type Config struct {
	MaxRiskPerTrade float64 `json:"max_risk_per_trade" yaml:"max_risk_per_trade"` // fraction of equity risked per trade
	MaxExposure     float64 `json:"max_exposure" yaml:"max_exposure"`             // max notional as a multiple of equity
	MaxUnits        int     `json:"max_units" yaml:"max_units"`                   // hard cap on units
	VolThreshold    float64 `json:"vol_threshold" yaml:"vol_threshold"`           // block trading above this volatility
	EquityLossLimit float64 `json:"equity_loss_limit" yaml:"equity_loss_limit"`   // drawdown from start equity that trips the kill switch
}

// Default risk limits
const (
	DefaultMaxRiskPerTrade = 0.01  // 1% of equity per trade
	DefaultMaxExposure     = 2.0   // up to 2x equity notional
	DefaultMaxUnits        = 5     // hard cap on units
	DefaultVolThreshold    = 0.015 // ignore signals above this vol
	DefaultEquityLossLimit = 0.10  // kill switch at -10% from start equity
)

// DefaultConfig returns the documented default limits
func DefaultConfig() Config {
	return Config{
		MaxRiskPerTrade: DefaultMaxRiskPerTrade,
		MaxExposure:     DefaultMaxExposure,
		MaxUnits:        DefaultMaxUnits,
		VolThreshold:    DefaultVolThreshold,
		EquityLossLimit: DefaultEquityLossLimit,
	}
}

// TripEvent describes the observation that fired the kill switch
type TripEvent struct {
	Index       int       `json:"index"`
	Time        time.Time `json:"time"`
	Equity      float64   `json:"equity"`
	StartEquity float64   `json:"start_equity"`
	Floor       float64   `json:"floor"`
}
