package data

import (
	"strconv"
	"time"

	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// TimeFormat is the layout used when writing observation times
const TimeFormat = time.RFC3339Nano

// FormatFloat renders a float with the shortest exact representation
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ObservationFields renders an observation in RequiredColumns order
func ObservationFields(o types.Observation) []string {
	return []string{
		o.Time.Format(TimeFormat),
		FormatFloat(o.Price),
		FormatFloat(o.Equity),
		FormatFloat(o.Volatility),
		strconv.Itoa(o.RawSignal),
	}
}
