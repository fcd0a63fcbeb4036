package data

import (
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	boterrors "github.com/ducminhle1904/crypto-risk-manager/internal/errors"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// ObservationRecord is the Parquet schema for observation streams
type ObservationRecord struct {
	Time       int64   `parquet:"time,timestamp(millisecond)"` // Unix ms
	Price      float64 `parquet:"price"`
	Equity     float64 `parquet:"equity"`
	Volatility float64 `parquet:"volatility"`
	RawSignal  int64   `parquet:"raw_signal"`
}

// ToObservation converts the on-disk record into the domain type
func (r ObservationRecord) ToObservation() types.Observation {
	return types.Observation{
		Time:       time.UnixMilli(r.Time).UTC(),
		Price:      r.Price,
		Equity:     r.Equity,
		Volatility: r.Volatility,
		RawSignal:  int(r.RawSignal),
	}
}

// NewObservationRecord converts a domain observation into its on-disk record
func NewObservationRecord(o types.Observation) ObservationRecord {
	return ObservationRecord{
		Time:       o.Time.UnixMilli(),
		Price:      o.Price,
		Equity:     o.Equity,
		Volatility: o.Volatility,
		RawSignal:  int64(o.RawSignal),
	}
}

// ParquetProvider implements DataProvider for Parquet files
type ParquetProvider struct{}

// NewParquetProvider creates a new Parquet data provider
func NewParquetProvider() *ParquetProvider {
	return &ParquetProvider{}
}

// GetName returns the name of the data provider
func (p *ParquetProvider) GetName() string {
	return "Parquet Provider"
}

// LoadData loads observations from a Parquet file
func (p *ParquetProvider) LoadData(source string) ([]types.Observation, error) {
	if _, err := os.Stat(source); err != nil {
		return nil, boterrors.NewDataError("parquet", "LoadData", err).WithContext("source", source)
	}

	records, err := parquet.ReadFile[ObservationRecord](source)
	if err != nil {
		return nil, boterrors.NewValidationError("parquet", "LoadData", "unreadable parquet file").
			WithContext("source", filepath.Base(source)).
			WithUnderlying(err)
	}

	data := make([]types.Observation, 0, len(records))
	for _, r := range records {
		data = append(data, r.ToObservation())
	}

	if err := p.ValidateData(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidateData validates the integrity of the loaded data
func (p *ParquetProvider) ValidateData(data []types.Observation) error {
	return validateObservations("parquet", data)
}

// WriteObservationsParquet stores observations using ObservationRecord
func WriteObservationsParquet(path string, data []types.Observation) error {
	records := make([]ObservationRecord, 0, len(data))
	for _, o := range data {
		records = append(records, NewObservationRecord(o))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return boterrors.NewDataError("parquet", "WriteObservations", err)
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return boterrors.NewDataError("parquet", "WriteObservations", err)
	}
	return nil
}
