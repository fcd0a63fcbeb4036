package main

import (
	"flag"
	"strconv"
	"strings"

	"github.com/ducminhle1904/crypto-risk-manager/cmd/common"
	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/config"
	"github.com/ducminhle1904/crypto-risk-manager/pkg/data"
)

// RiskFlags holds all command line flags for the risk manager
type RiskFlags struct {
	Common *common.CommonFlags

	// Configuration
	ConfigFile *string
	DataFile   *string
	Symbol     *string

	// Risk limits
	MaxRiskPerTrade *float64
	MaxExposure     *float64
	MaxUnits        *int
	VolThreshold    *float64
	EquityLossLimit *float64

	// Input selection
	Sample      *bool
	SampleSeed  *int64
	SampleSize  *int
	WriteSample *string
	Period      *string
	From        *string
	To          *string

	// Output
	Tail        *int
	JSONL       *bool
	Out         *string
	SummaryOut  *string
	PrintConfig *bool
	SaveConfig  *string
	LogDir      *string
	LogEvery    *bool

	// Analysis
	CompareLimits *string
	Workers       *int

	// Monitoring
	MetricsAddr *string
}

// flagParams maps flag names to the config parameters they override
var flagParams = map[string]string{
	"data":               config.ParamDataFile,
	"symbol":             config.ParamSymbol,
	"tail":               config.ParamTailRows,
	"max-risk-per-trade": config.ParamMaxRiskPerTrade,
	"max-exposure":       config.ParamMaxExposure,
	"max-units":          config.ParamMaxUnits,
	"vol-threshold":      config.ParamVolThreshold,
	"equity-loss-limit":  config.ParamEquityLossLimit,
}

// NewRiskFlags creates and registers all risk manager flags on fs
func NewRiskFlags(fs *flag.FlagSet) *RiskFlags {
	return &RiskFlags{
		Common: common.RegisterCommonFlags(fs),

		ConfigFile: fs.String("config", "", "Path to configuration file (.json, .yaml, .yml)"),
		DataFile:   fs.String("data", config.DefaultDataFile, "Path to observation file (.csv, .xlsx, .parquet)"),
		Symbol:     fs.String("symbol", config.DefaultSymbol, "Instrument symbol"),

		MaxRiskPerTrade: fs.Float64("max-risk-per-trade", risk.DefaultMaxRiskPerTrade, "Fraction of equity risked per trade (0.01 = 1%)"),
		MaxExposure:     fs.Float64("max-exposure", risk.DefaultMaxExposure, "Maximum notional exposure as a multiple of equity"),
		MaxUnits:        fs.Int("max-units", risk.DefaultMaxUnits, "Maximum absolute position size in units"),
		VolThreshold:    fs.Float64("vol-threshold", risk.DefaultVolThreshold, "Volatility above which new sizing is blocked"),
		EquityLossLimit: fs.Float64("equity-loss-limit", risk.DefaultEquityLossLimit, "Drawdown from starting equity that trips the kill switch (0.10 = 10%)"),

		Sample:      fs.Bool("sample", false, "Generate sample observations when the data file does not exist"),
		SampleSeed:  fs.Int64("sample-seed", data.DefaultSampleSeed, "Seed for generated sample observations"),
		SampleSize:  fs.Int("sample-size", data.DefaultSampleSize, "Number of generated sample observations"),
		WriteSample: fs.String("write-sample", "", "Write generated sample observations to this file and exit"),
		Period:      fs.String("period", "", "Limit data to a trailing period (7d, 30d, 180d, 36h)"),
		From:        fs.String("from", "", "Drop observations before this date (2024-01-31)"),
		To:          fs.String("to", "", "Drop observations after this date, inclusive of the whole day (2024-02-29)"),

		Tail:        fs.Int("tail", config.DefaultTailRows, "Number of trailing decisions to print"),
		JSONL:       fs.Bool("jsonl", false, "Print every decision as a JSON line instead of tables"),
		Out:         fs.String("out", "", "Export decisions (.csv, .xlsx, .parquet, .json)"),
		SummaryOut:  fs.String("summary", "", "Write the run summary as JSON"),
		PrintConfig: fs.Bool("print-config", false, "Print the effective configuration as JSON and exit"),
		SaveConfig:  fs.String("save-config", "", "Save the effective configuration (.json, .yaml)"),
		LogDir:      fs.String("log-dir", "", "Write a session log to this directory"),
		LogEvery:    fs.Bool("log-decisions", false, "Include one log line per decision in the session log"),

		CompareLimits: fs.String("compare-limits", "", "Comma-separated equity loss limits to compare (0.05,0.1,0.2)"),
		Workers:       fs.Int("workers", 4, "Worker count for scenario comparison"),

		MetricsAddr: fs.String("metrics-addr", "", "Serve /metrics and /healthz on this address until interrupted"),
	}
}

// ValidateRiskFlags checks flag values that do not depend on configuration files
func ValidateRiskFlags(flags *RiskFlags) error {
	v := common.NewFlagValidator()

	v.ValidateInt("tail", *flags.Tail, 0, 1_000_000)
	v.ValidateInt("sample-size", *flags.SampleSize, 1, 10_000_000)
	v.ValidateInt("workers", *flags.Workers, 1, 256)
	v.ValidateFile("config", *flags.ConfigFile, false)

	if *flags.Period != "" {
		if _, ok := data.ParseTrailingPeriod(*flags.Period); !ok {
			v.AddError("invalid period format: " + *flags.Period + " (use 7d, 30d, 180d, 36h)")
		}
	}
	if *flags.From != "" {
		if _, err := data.ParseDate(*flags.From); err != nil {
			v.AddError("invalid from date: " + *flags.From)
		}
	}
	if *flags.To != "" {
		if _, err := data.ParseDateEnd(*flags.To); err != nil {
			v.AddError("invalid to date: " + *flags.To)
		}
	}
	if *flags.CompareLimits != "" {
		if _, err := parseLimits(*flags.CompareLimits); err != nil {
			v.AddError("invalid compare-limits: " + err.Error())
		}
		if *flags.JSONL {
			v.AddError("compare-limits cannot be combined with jsonl")
		}
	}

	return v.GetError()
}

// configParams returns the config overrides for flags set on the command line
func configParams(fs *flag.FlagSet, flags *RiskFlags) map[string]interface{} {
	values := map[string]interface{}{
		"data":               *flags.DataFile,
		"symbol":             *flags.Symbol,
		"tail":               *flags.Tail,
		"max-risk-per-trade": *flags.MaxRiskPerTrade,
		"max-exposure":       *flags.MaxExposure,
		"max-units":          *flags.MaxUnits,
		"vol-threshold":      *flags.VolThreshold,
		"equity-loss-limit":  *flags.EquityLossLimit,
	}

	params := make(map[string]interface{})
	for name := range common.VisitedFlags(fs) {
		if key, ok := flagParams[name]; ok {
			params[key] = values[name]
		}
	}
	return params
}

// parseLimits parses a comma-separated list of fractions
func parseLimits(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	limits := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		limits = append(limits, v)
	}
	if len(limits) == 0 {
		return nil, strconv.ErrSyntax
	}
	return limits, nil
}

// newUsageFormatter returns the help text shown by -help
func newUsageFormatter() *common.UsageFormatter {
	return common.NewUsageFormatter(AppName, "Position sizing, volatility filter and equity kill switch replay").
		AddExample("risk-manager -data data/BTCUSDT.csv -symbol BTCUSDT", "Replay a CSV observation file").
		AddExample("risk-manager -sample -tail 20", "Replay generated sample observations").
		AddExample("risk-manager -config configs/risk.yaml -out decisions.xlsx -summary summary.json", "Load limits from YAML and export results").
		AddExample("risk-manager -sample -compare-limits 0.05,0.1,0.2", "Compare equity loss limits on the same stream").
		AddExample("risk-manager -sample -metrics-addr :9090", "Expose Prometheus metrics and health after the run")
}
