package reporting

import (
	"github.com/ducminhle1904/crypto-risk-manager/internal/backtest"
	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/types"
)

// Package reporting provides output generation for risk manager runs

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	PrintDecisionTail(results *backtest.Results, n int)
	PrintSummary(summary backtest.Summary)
	PrintConfig(cfg risk.Config)
	PrintScenarioComparison(results []backtest.ScenarioResult)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteDecisionsCSV(records []types.DecisionRecord, path string) error
	WriteDecisionsXLSX(results *backtest.Results, path string) error
	WriteDecisionsParquet(records []types.DecisionRecord, path string) error
	WriteSummaryJSON(summary backtest.Summary, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	GetDefaultOutputDir(symbol string) string
	EnsureDirectoryExists(path string) error
}

// Reporter combines all reporting interfaces
type Reporter interface {
	ConsoleReporter
	FileReporter
	PathManager
}

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle  int
	BaseStyle    int
	NumberStyle  int
	PercentStyle int
	LongStyle    int
	ShortStyle   int
	BlockedStyle int
	KillStyle    int
	SummaryStyle int
}

// DecisionColumns is the header of every tabular decision export
var DecisionColumns = []string{
	"time",
	"price",
	"equity",
	"volatility",
	"raw_signal",
	"target_units",
	"reason",
	"kill_switch",
}
