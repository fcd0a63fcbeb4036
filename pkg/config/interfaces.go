package config

// Package config provides configuration management for the risk manager

// ConfigManager handles loading, validation and saving of run configurations
type ConfigManager interface {
	// LoadConfig builds a configuration from defaults, a config file,
	// environment overrides and explicit command line parameters
	LoadConfig(configFile string, params map[string]interface{}) (*RunConfig, error)

	// ValidateConfig validates a configuration
	ValidateConfig(cfg *RunConfig) error

	// SaveConfig saves configuration to file (JSON or YAML by extension)
	SaveConfig(cfg *RunConfig, path string) error
}

// Validator interface for configuration validation
type Validator interface {
	Validate(cfg *RunConfig) error
}

// Common configuration constants
const (
	DefaultSymbol   = "DEMO"
	DefaultTailRows = 10
	DefaultDataFile = "sample_positions.csv"

	// Validation bounds
	MaxEquityLossLimit = 1.0

	// Parameter keys accepted by LoadConfig
	ParamMaxRiskPerTrade = "max_risk_per_trade"
	ParamMaxExposure     = "max_exposure"
	ParamMaxUnits        = "max_units"
	ParamVolThreshold    = "vol_threshold"
	ParamEquityLossLimit = "equity_loss_limit"
	ParamDataFile        = "data_file"
	ParamSymbol          = "symbol"
	ParamTailRows        = "tail_rows"

	// Environment overrides
	EnvMaxRiskPerTrade = "RISK_MAX_RISK_PER_TRADE"
	EnvMaxExposure     = "RISK_MAX_EXPOSURE"
	EnvMaxUnits        = "RISK_MAX_UNITS"
	EnvVolThreshold    = "RISK_VOL_THRESHOLD"
	EnvEquityLossLimit = "RISK_EQUITY_LOSS_LIMIT"
	EnvDataFile        = "RISK_DATA_FILE"
	EnvSymbol          = "RISK_SYMBOL"

	// File and directory constants
	ResultsDir       = "results"
	DecisionsFile    = "decisions.xlsx"
	SummaryFile      = "summary.json"
	EffectiveCfgFile = "effective_config.json"
)
