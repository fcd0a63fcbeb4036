package backtest

import (
	"time"

	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// Summary aggregates the decisions of one run
type Summary struct {
	Symbol       string         `json:"symbol"`
	Config       risk.Config    `json:"config"`
	Observations int            `json:"observations"`
	ReasonCounts map[string]int `json:"reason_counts"`
	LongOK       int            `json:"long_ok"`
	ShortOK      int            `json:"short_ok"`
	MaxAbsUnits  int            `json:"max_abs_units"`

	FirstTime time.Time `json:"first_time"`
	LastTime  time.Time `json:"last_time"`

	StartEquity float64 `json:"start_equity"`
	EquityFloor float64 `json:"equity_floor"`
	FinalEquity float64 `json:"final_equity"`
	PeakEquity  float64 `json:"peak_equity"`
	MaxDrawdown float64 `json:"max_drawdown"` // fraction below running peak

	Tripped bool            `json:"tripped"`
	Trip    *risk.TripEvent `json:"trip,omitempty"`
}

// Count returns the number of decisions with the given reason
func (s Summary) Count(reason risk.Reason) int {
	return s.ReasonCounts[reason.String()]
}

// Blocked returns the number of zero-size decisions outside the kill switch
func (s Summary) Blocked() int {
	return s.Observations - s.Count(risk.ReasonOK) -
		s.Count(risk.ReasonEquityLossLimitTripped) - s.Count(risk.ReasonKillSwitchActive)
}

// SummaryBuilder accumulates a Summary one record at a time
type SummaryBuilder struct {
	summary Summary
}

// NewSummaryBuilder creates a builder with every reason counter at zero
func NewSummaryBuilder(symbol string, config risk.Config) *SummaryBuilder {
	counts := make(map[string]int, len(risk.AllReasons))
	for _, r := range risk.AllReasons {
		counts[r.String()] = 0
	}
	return &SummaryBuilder{
		summary: Summary{
			Symbol:       symbol,
			Config:       config,
			ReasonCounts: counts,
		},
	}
}

// Add folds one decision record into the summary
func (b *SummaryBuilder) Add(rec types.DecisionRecord) {
	s := &b.summary

	if s.Observations == 0 {
		s.FirstTime = rec.Time
		s.StartEquity = rec.Equity
		s.EquityFloor = rec.Equity * (1.0 - s.Config.EquityLossLimit)
		s.PeakEquity = rec.Equity
	}
	s.Observations++
	s.LastTime = rec.Time
	s.FinalEquity = rec.Equity
	s.ReasonCounts[rec.Reason]++

	if rec.Equity > s.PeakEquity {
		s.PeakEquity = rec.Equity
	}
	if s.PeakEquity > 0 {
		if dd := (s.PeakEquity - rec.Equity) / s.PeakEquity; dd > s.MaxDrawdown {
			s.MaxDrawdown = dd
		}
	}

	switch {
	case rec.TargetUnits > 0:
		s.LongOK++
	case rec.TargetUnits < 0:
		s.ShortOK++
	}
	if u := abs(rec.TargetUnits); u > s.MaxAbsUnits {
		s.MaxAbsUnits = u
	}

	if rec.Reason == risk.ReasonEquityLossLimitTripped.String() && s.Trip == nil {
		s.Tripped = true
		s.Trip = &risk.TripEvent{
			Index:       s.Observations - 1,
			Time:        rec.Time,
			Equity:      rec.Equity,
			StartEquity: s.StartEquity,
			Floor:       s.EquityFloor,
		}
	}
}

// Summary returns a snapshot that later Add calls do not modify
func (b *SummaryBuilder) Summary() Summary {
	out := b.summary
	out.ReasonCounts = make(map[string]int, len(b.summary.ReasonCounts))
	for k, v := range b.summary.ReasonCounts {
		out.ReasonCounts[k] = v
	}
	if b.summary.Trip != nil {
		trip := *b.summary.Trip
		out.Trip = &trip
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
