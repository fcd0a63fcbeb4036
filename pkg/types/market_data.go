package types

import "time"

// Observation is one time-ordered market/account input row.
type Observation struct {
	Time       time.Time `json:"time"`
	Price      float64   `json:"price"`
	Equity     float64   `json:"equity"`
	Volatility float64   `json:"volatility"`
	RawSignal  int       `json:"raw_signal"`
}

// Decision is the risk engine output for a single observation.
type Decision struct {
	TargetUnits int    `json:"target_units"`
	Reason      string `json:"reason"`
	KillSwitch  bool   `json:"kill_switch"`
}

// DecisionRecord is an output row: the input fields preserved plus the decision.
type DecisionRecord struct {
	Observation
	Decision
}

// Signal direction values accepted by the engine
const (
	SignalShort = -1
	SignalFlat  = 0
	SignalLong  = 1
)

// IsValidSignal reports whether s is one of -1, 0, +1
func IsValidSignal(s int) bool {
	return s == SignalShort || s == SignalFlat || s == SignalLong
}
