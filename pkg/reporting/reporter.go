package reporting

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ducminhle1904/crypto-risk-manager/internal/backtest"
	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

var _ Reporter = (*DefaultReporter)(nil)

// DefaultReporter implements the complete Reporter interface
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a new default reporter with all functionality
func NewDefaultReporter() *DefaultReporter {
	return NewReporterWithConsole(NewDefaultConsoleReporter())
}

// NewReporterWithConsole creates a reporter around a specific console reporter
func NewReporterWithConsole(console *DefaultConsoleReporter) *DefaultReporter {
	return &DefaultReporter{
		console: console,
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		paths:   NewDefaultPathManager(),
	}
}

// Console output methods
func (r *DefaultReporter) PrintDecisionTail(results *backtest.Results, n int) {
	r.console.PrintDecisionTail(results, n)
}

func (r *DefaultReporter) PrintSummary(summary backtest.Summary) {
	r.console.PrintSummary(summary)
}

func (r *DefaultReporter) PrintConfig(cfg risk.Config) {
	r.console.PrintConfig(cfg)
}

func (r *DefaultReporter) PrintScenarioComparison(results []backtest.ScenarioResult) {
	r.console.PrintScenarioComparison(results)
}

// File output methods
func (r *DefaultReporter) WriteDecisionsCSV(records []types.DecisionRecord, path string) error {
	return r.csv.WriteDecisionsCSV(records, path)
}

func (r *DefaultReporter) WriteDecisionsXLSX(results *backtest.Results, path string) error {
	return r.excel.WriteDecisionsXLSX(results, path)
}

func (r *DefaultReporter) WriteSummaryJSON(summary backtest.Summary, path string) error {
	return WriteSummaryJSON(summary, path)
}

// Path management methods
func (r *DefaultReporter) GetDefaultOutputDir(symbol string) string {
	return r.paths.GetDefaultOutputDir(symbol)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}

// ExportDecisions writes decisions in the format implied by the extension:
// .csv, .xlsx, .parquet or .json
func (r *DefaultReporter) ExportDecisions(results *backtest.Results, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return r.WriteDecisionsCSV(results.Records, path)
	case ".xlsx":
		return r.WriteDecisionsXLSX(results, path)
	case ".parquet":
		return r.WriteDecisionsParquet(results.Records, path)
	case ".json":
		return WriteDecisionsJSON(results.Records, path)
	default:
		return fmt.Errorf("unsupported export format: %s", path)
	}
}
