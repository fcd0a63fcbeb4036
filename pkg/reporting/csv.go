package reporting

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/ducminhle1904/crypto-risk-manager/pkg/data"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteDecisionsCSV writes one row per decision with the input columns preserved
func (r *DefaultCSVReporter) WriteDecisionsCSV(records []types.DecisionRecord, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(DecisionColumns); err != nil {
		return err
	}

	for _, rec := range records {
		if err := w.Write(DecisionFields(rec)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// DecisionFields renders a record in DecisionColumns order
func DecisionFields(rec types.DecisionRecord) []string {
	return append(data.ObservationFields(rec.Observation),
		strconv.Itoa(rec.TargetUnits),
		rec.Reason,
		strconv.FormatBool(rec.KillSwitch),
	)
}

// WriteDecisionsCSV is the package-level convenience form
func WriteDecisionsCSV(records []types.DecisionRecord, path string) error {
	return NewDefaultCSVReporter().WriteDecisionsCSV(records, path)
}
