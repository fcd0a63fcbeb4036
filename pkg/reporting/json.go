package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ducminhle1904/crypto-risk-manager/internal/backtest"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// WriteSummaryJSON writes the run summary as indented JSON
func WriteSummaryJSON(summary backtest.Summary, path string) error {
	return writeJSONFile(summary, path)
}

// WriteDecisionsJSON writes decisions as a JSON array
func WriteDecisionsJSON(records []types.DecisionRecord, path string) error {
	if records == nil {
		records = []types.DecisionRecord{}
	}
	return writeJSONFile(records, path)
}

// WriteDecisionsJSONL streams decisions as one JSON object per line
func WriteDecisionsJSONL(w io.Writer, records []types.DecisionRecord) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// PrintJSON prints any value as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeJSONFile(v interface{}, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
