package data

import (
	"time"

	boterrors "github.com/ducminhle1904/crypto-risk-manager/internal/errors"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// DefaultDataFilter implements DataFilter for common filtering operations
type DefaultDataFilter struct{}

// NewDefaultDataFilter creates a new default data filter
func NewDefaultDataFilter() *DefaultDataFilter {
	return &DefaultDataFilter{}
}

// FilterByPeriod keeps observations within period of the latest one
func (f *DefaultDataFilter) FilterByPeriod(data []types.Observation, period time.Duration) []types.Observation {
	if period <= 0 || len(data) == 0 {
		return data
	}

	cutoff := data[len(data)-1].Time.Add(-period)
	for i, o := range data {
		if !o.Time.Before(cutoff) {
			return data[i:]
		}
	}
	return data[:0]
}

// FilterByDateRange keeps observations with start <= time <= end; a zero bound is open
func (f *DefaultDataFilter) FilterByDateRange(data []types.Observation, start, end time.Time) []types.Observation {
	if len(data) == 0 {
		return data
	}

	filtered := make([]types.Observation, 0, len(data))
	for _, o := range data {
		if !start.IsZero() && o.Time.Before(start) {
			continue
		}
		if !end.IsZero() && o.Time.After(end) {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered
}

// ValidateTimeSequence rejects observations that go back in time. Equal
// timestamps are allowed and keep their input order.
func (f *DefaultDataFilter) ValidateTimeSequence(data []types.Observation) error {
	for i := 1; i < len(data); i++ {
		if data[i].Time.Before(data[i-1].Time) {
			return boterrors.NewValidationError("data", "ValidateTimeSequence", "observations not in chronological order").
				WithContext("index", i).
				WithContext("time", data[i].Time.Format(time.RFC3339)).
				WithContext("previous", data[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}
