package data

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	boterrors "github.com/ducminhle1904/crypto-risk-manager/internal/errors"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// numericTimeFunc converts a numeric time cell to a timestamp
type numericTimeFunc func(v float64) (time.Time, error)

// unixTime treats numbers as Unix seconds, or milliseconds when large enough
func unixTime(v float64) (time.Time, error) {
	if math.Abs(v) >= 1e12 {
		return time.UnixMilli(int64(v)).UTC(), nil
	}
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
}

// rowParser maps header names to positions and turns text rows into observations
type rowParser struct {
	component   string
	source      string
	index       map[string]int
	numericTime numericTimeFunc
}

// newRowParser validates the header and records the position of each required column
func newRowParser(component, source string, header []string, numericTime numericTimeFunc) (*rowParser, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, boterrors.NewValidationError(component, "LoadData", "missing required columns").
			WithContext("source", source).
			WithContext("columns", strings.Join(missing, ","))
	}

	if numericTime == nil {
		numericTime = unixTime
	}

	return &rowParser{
		component:   component,
		source:      source,
		index:       index,
		numericTime: numericTime,
	}, nil
}

// parse converts one data row; line is the 1-based line or row number for messages
func (p *rowParser) parse(record []string, line int) (types.Observation, error) {
	var obs types.Observation

	field := func(col string) (string, error) {
		i := p.index[col]
		if i >= len(record) || strings.TrimSpace(record[i]) == "" {
			return "", p.fieldError(line, col, "", "missing value")
		}
		return strings.TrimSpace(record[i]), nil
	}

	raw, err := field(ColumnTime)
	if err != nil {
		return obs, err
	}
	if obs.Time, err = p.parseTime(raw); err != nil {
		return obs, p.fieldError(line, ColumnTime, raw, "unrecognized time format")
	}

	for _, f := range []struct {
		col    string
		target *float64
	}{
		{ColumnPrice, &obs.Price},
		{ColumnEquity, &obs.Equity},
		{ColumnVolatility, &obs.Volatility},
	} {
		raw, err := field(f.col)
		if err != nil {
			return obs, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return obs, p.fieldError(line, f.col, raw, "not a finite number")
		}
		*f.target = v
	}

	raw, err = field(ColumnRawSignal)
	if err != nil {
		return obs, err
	}
	if obs.RawSignal, err = parseSignal(raw); err != nil {
		return obs, p.fieldError(line, ColumnRawSignal, raw, "raw_signal must be -1, 0 or 1")
	}

	return obs, nil
}

func (p *rowParser) parseTime(raw string) (time.Time, error) {
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return time.Time{}, fmt.Errorf("non-finite time %q", raw)
		}
		return p.numericTime(v)
	}
	return parseTimeText(raw)
}

func parseTimeText(raw string) (time.Time, error) {
	for _, layout := range TimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", raw)
}

// parseSignal accepts integral spellings such as "1", "+1", "-1.0"
func parseSignal(raw string) (int, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || !types.IsValidSignal(int(v)) {
		return 0, fmt.Errorf("signal %q out of range", raw)
	}
	return int(v), nil
}

func (p *rowParser) fieldError(line int, column, value, message string) error {
	err := boterrors.NewValidationError(p.component, "LoadData", message).
		WithContext("source", p.source).
		WithContext("line", line).
		WithContext("column", column)
	if value != "" {
		err.WithContext("value", value)
	}
	return err
}

// validateObservations checks values that bypass text parsing (parquet, in-memory)
func validateObservations(component string, data []types.Observation) error {
	for i, o := range data {
		for _, f := range []struct {
			col string
			v   float64
		}{
			{ColumnPrice, o.Price},
			{ColumnEquity, o.Equity},
			{ColumnVolatility, o.Volatility},
		} {
			if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
				return boterrors.NewValidationError(component, "ValidateData", "not a finite number").
					WithContext("index", i).
					WithContext("column", f.col)
			}
		}
		if !types.IsValidSignal(o.RawSignal) {
			return boterrors.NewValidationError(component, "ValidateData", "raw_signal must be -1, 0 or 1").
				WithContext("index", i).
				WithContext("value", o.RawSignal)
		}
	}
	return NewDefaultDataFilter().ValidateTimeSequence(data)
}
