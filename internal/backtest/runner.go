package backtest

import (
	"context"
	"math"
	"time"

	boterrors "github.com/ducminhle1904/crypto-risk-manager/internal/errors"
	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// Observer receives every decision of a run as it is produced
type Observer interface {
	OnDecision(symbol string, rec types.DecisionRecord)
	OnTrip(symbol string, event risk.TripEvent)
}

// Results holds the full output of a batch run
type Results struct {
	Symbol   string
	Config   risk.Config
	Records  []types.DecisionRecord
	Summary  Summary
	Duration time.Duration
}

// Tail returns the last n records, or all of them when n exceeds the count
func (r *Results) Tail(n int) []types.DecisionRecord {
	if n <= 0 {
		return nil
	}
	if n >= len(r.Records) {
		return r.Records
	}
	return r.Records[len(r.Records)-n:]
}

// Runner replays observation streams through a fresh risk engine per run
type Runner struct {
	symbol    string
	config    risk.Config
	observers []Observer
}

// NewRunner creates a runner for one instrument
func NewRunner(symbol string, config risk.Config, observers ...Observer) *Runner {
	return &Runner{
		symbol:    symbol,
		config:    config,
		observers: observers,
	}
}

// AddObserver registers an observer for subsequent runs
func (r *Runner) AddObserver(o Observer) {
	if o != nil {
		r.observers = append(r.observers, o)
	}
}

// Run processes the observations in order. The input must already be
// validated; an empty input yields empty results.
func (r *Runner) Run(data []types.Observation) *Results {
	start := time.Now()
	s := r.newSession()

	records := make([]types.DecisionRecord, 0, len(data))
	for _, obs := range data {
		records = append(records, s.step(obs))
	}

	return &Results{
		Symbol:   r.symbol,
		Config:   r.config,
		Records:  records,
		Summary:  s.builder.Summary(),
		Duration: time.Since(start),
	}
}

// RunStream processes observations from in until it is closed or ctx is done.
// Each record is forwarded to out when out is non-nil. Observations that go
// back in time or carry invalid values end the stream with a validation error.
func (r *Runner) RunStream(ctx context.Context, in <-chan types.Observation, out chan<- types.DecisionRecord) (Summary, error) {
	s := r.newSession()

	var prev time.Time
	for i := 0; ; i++ {
		var (
			obs types.Observation
			ok  bool
		)
		select {
		case <-ctx.Done():
			return s.builder.Summary(), ctx.Err()
		case obs, ok = <-in:
		}
		if !ok {
			return s.builder.Summary(), nil
		}

		if err := checkStreamObservation(obs, prev, i); err != nil {
			return s.builder.Summary(), err
		}
		prev = obs.Time

		rec := s.step(obs)
		if out == nil {
			continue
		}
		select {
		case out <- rec:
		case <-ctx.Done():
			return s.builder.Summary(), ctx.Err()
		}
	}
}

func checkStreamObservation(obs types.Observation, prev time.Time, index int) error {
	if index > 0 && obs.Time.Before(prev) {
		return boterrors.NewValidationError("runner", "RunStream", "observations not in chronological order").
			WithContext("index", index)
	}
	for _, v := range []float64{obs.Price, obs.Equity, obs.Volatility} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return boterrors.NewValidationError("runner", "RunStream", "not a finite number").
				WithContext("index", index)
		}
	}
	if !types.IsValidSignal(obs.RawSignal) {
		return boterrors.NewValidationError("runner", "RunStream", "raw_signal must be -1, 0 or 1").
			WithContext("index", index).
			WithContext("value", obs.RawSignal)
	}
	return nil
}

// session is the per-run state shared by Run and RunStream
type session struct {
	runner  *Runner
	engine  *risk.Engine
	builder *SummaryBuilder
}

func (r *Runner) newSession() *session {
	return &session{
		runner:  r,
		engine:  risk.NewEngine(r.config),
		builder: NewSummaryBuilder(r.symbol, r.config),
	}
}

func (s *session) step(obs types.Observation) types.DecisionRecord {
	rec := types.DecisionRecord{
		Observation: obs,
		Decision:    s.engine.Process(obs),
	}
	s.builder.Add(rec)

	symbol := s.runner.symbol
	for _, o := range s.runner.observers {
		o.OnDecision(symbol, rec)
	}

	if rec.Reason == risk.ReasonEquityLossLimitTripped.String() {
		base, _ := s.engine.StartEquity()
		floor, _ := s.engine.EquityFloor()
		event := risk.TripEvent{
			Index:       s.builder.summary.Observations - 1,
			Time:        obs.Time,
			Equity:      obs.Equity,
			StartEquity: base,
			Floor:       floor,
		}
		for _, o := range s.runner.observers {
			o.OnTrip(symbol, event)
		}
	}

	return rec
}
