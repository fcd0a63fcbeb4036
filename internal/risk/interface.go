package risk

import "github.com/ducminhle1904/crypto-risk-manager/pkg/types"

// DecisionEngine turns one observation into one sizing decision
type DecisionEngine interface {
	// Process evaluates a single observation; calls must follow time order
	Process(obs types.Observation) types.Decision

	// Tripped reports whether the equity kill switch has fired
	Tripped() bool
}
