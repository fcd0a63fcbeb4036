package reporting

import (
	"github.com/parquet-go/parquet-go"

	"github.com/ducminhle1904/crypto-risk-manager/pkg/data"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// DecisionRecord is the Parquet schema for decision exports
type DecisionRecord struct {
	Time        int64   `parquet:"time,timestamp(millisecond)"` // Unix ms
	Price       float64 `parquet:"price"`
	Equity      float64 `parquet:"equity"`
	Volatility  float64 `parquet:"volatility"`
	RawSignal   int64   `parquet:"raw_signal"`
	TargetUnits int64   `parquet:"target_units"`
	Reason      string  `parquet:"reason,dict"`
	KillSwitch  bool    `parquet:"kill_switch"`
}

// NewDecisionRecord converts a domain record into its on-disk form
func NewDecisionRecord(rec types.DecisionRecord) DecisionRecord {
	obs := data.NewObservationRecord(rec.Observation)
	return DecisionRecord{
		Time:        obs.Time,
		Price:       obs.Price,
		Equity:      obs.Equity,
		Volatility:  obs.Volatility,
		RawSignal:   obs.RawSignal,
		TargetUnits: int64(rec.TargetUnits),
		Reason:      rec.Reason,
		KillSwitch:  rec.KillSwitch,
	}
}

// ToDecisionRecord converts the on-disk form back into the domain type
func (r DecisionRecord) ToDecisionRecord() types.DecisionRecord {
	obs := data.ObservationRecord{
		Time:       r.Time,
		Price:      r.Price,
		Equity:     r.Equity,
		Volatility: r.Volatility,
		RawSignal:  r.RawSignal,
	}
	return types.DecisionRecord{
		Observation: obs.ToObservation(),
		Decision: types.Decision{
			TargetUnits: int(r.TargetUnits),
			Reason:      r.Reason,
			KillSwitch:  r.KillSwitch,
		},
	}
}

// WriteDecisionsParquet writes decisions as a Parquet file
func (r *DefaultReporter) WriteDecisionsParquet(records []types.DecisionRecord, path string) error {
	return WriteDecisionsParquet(records, path)
}

// WriteDecisionsParquet is the package-level convenience form
func WriteDecisionsParquet(records []types.DecisionRecord, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	rows := make([]DecisionRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, NewDecisionRecord(rec))
	}
	return parquet.WriteFile(path, rows)
}

// ReadDecisionsParquet loads a file written by WriteDecisionsParquet
func ReadDecisionsParquet(path string) ([]types.DecisionRecord, error) {
	rows, err := parquet.ReadFile[DecisionRecord](path)
	if err != nil {
		return nil, err
	}

	records := make([]types.DecisionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.ToDecisionRecord())
	}
	return records, nil
}
