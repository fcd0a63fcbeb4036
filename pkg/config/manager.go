package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	boterrors "github.com/ducminhle1904/crypto-risk-manager/internal/errors"
	"gopkg.in/yaml.v3"
)

var _ ConfigManager = (*RiskConfigManager)(nil)

// RiskConfigManager implements ConfigManager for risk manager runs
type RiskConfigManager struct {
	validator Validator
	getenv    func(string) string
}

// NewRiskConfigManager creates a new configuration manager reading the process environment
func NewRiskConfigManager() *RiskConfigManager {
	return &RiskConfigManager{
		validator: NewRiskValidator(),
		getenv:    os.Getenv,
	}
}

// NewRiskConfigManagerWithEnv creates a manager with a custom environment lookup
func NewRiskConfigManagerWithEnv(getenv func(string) string) *RiskConfigManager {
	return &RiskConfigManager{
		validator: NewRiskValidator(),
		getenv:    getenv,
	}
}

// LoadConfig builds the effective configuration. Precedence, lowest first:
// defaults, config file, environment, explicit params.
func (m *RiskConfigManager) LoadConfig(configFile string, params map[string]interface{}) (*RunConfig, error) {
	cfg := NewDefaultRunConfig()

	if configFile != "" {
		if err := m.loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := m.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := applyParams(cfg, params); err != nil {
		return nil, err
	}

	if err := m.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ValidateConfig validates a configuration
func (m *RiskConfigManager) ValidateConfig(cfg *RunConfig) error {
	return m.validator.Validate(cfg)
}

// SaveConfig writes the configuration in nested layout; .yaml/.yml selects YAML
func (m *RiskConfigManager) SaveConfig(cfg *RunConfig, path string) error {
	nested := cfg.ToNested()

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(nested)
	} else {
		data, err = json.MarshalIndent(nested, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	return os.WriteFile(path, data, 0644)
}

// loadFromFile overlays a JSON or YAML file onto cfg. Both the nested layout
// and a flat layout holding only the risk limits are accepted.
func (m *RiskConfigManager) loadFromFile(configFile string, cfg *RunConfig) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}

	if isYAML(configFile) {
		return loadYAML(data, cfg)
	}
	return loadJSON(data, cfg)
}

func loadJSON(data []byte, cfg *RunConfig) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("could not parse config file: %w", err)
	}

	if isNested(keysOf(probe)) {
		nested := cfg.ToNested()
		if err := json.Unmarshal(data, &nested); err != nil {
			return fmt.Errorf("could not parse nested config: %w", err)
		}
		cfg.applyNested(nested)
		return nil
	}

	if err := json.Unmarshal(data, &cfg.Risk); err != nil {
		return fmt.Errorf("could not parse flat config: %w", err)
	}
	return nil
}

func loadYAML(data []byte, cfg *RunConfig) error {
	var probe map[string]interface{}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("could not parse config file: %w", err)
	}

	if isNested(keysOf(probe)) {
		nested := cfg.ToNested()
		if err := yaml.Unmarshal(data, &nested); err != nil {
			return fmt.Errorf("could not parse nested config: %w", err)
		}
		cfg.applyNested(nested)
		return nil
	}

	if err := yaml.Unmarshal(data, &cfg.Risk); err != nil {
		return fmt.Errorf("could not parse flat config: %w", err)
	}
	return nil
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func isNested(keys []string) bool {
	for _, k := range keys {
		switch k {
		case "input", "risk", "output":
			return true
		}
	}
	return false
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func (m *RiskConfigManager) applyEnvOverrides(cfg *RunConfig) error {
	if m.getenv == nil {
		return nil
	}

	floats := []struct {
		key    string
		target *float64
	}{
		{EnvMaxRiskPerTrade, &cfg.Risk.MaxRiskPerTrade},
		{EnvMaxExposure, &cfg.Risk.MaxExposure},
		{EnvVolThreshold, &cfg.Risk.VolThreshold},
		{EnvEquityLossLimit, &cfg.Risk.EquityLossLimit},
	}
	for _, f := range floats {
		v := strings.TrimSpace(m.getenv(f.key))
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError(f.key, v, err)
		}
		*f.target = parsed
	}

	if v := strings.TrimSpace(m.getenv(EnvMaxUnits)); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return envError(EnvMaxUnits, v, err)
		}
		cfg.Risk.MaxUnits = parsed
	}

	if v := m.getenv(EnvDataFile); v != "" {
		cfg.DataFile = v
	}
	if v := m.getenv(EnvSymbol); v != "" {
		cfg.Symbol = v
	}

	return nil
}

func envError(key, value string, err error) error {
	return boterrors.NewConfigurationError("config", "applyEnvOverrides", "invalid environment value").
		WithContext("key", key).
		WithContext("value", value).
		WithUnderlying(err)
}

// applyParams applies explicitly provided parameters (typically command line flags)
func applyParams(cfg *RunConfig, params map[string]interface{}) error {
	for key, raw := range params {
		switch key {
		case ParamMaxRiskPerTrade:
			if err := setFloat(&cfg.Risk.MaxRiskPerTrade, key, raw); err != nil {
				return err
			}
		case ParamMaxExposure:
			if err := setFloat(&cfg.Risk.MaxExposure, key, raw); err != nil {
				return err
			}
		case ParamVolThreshold:
			if err := setFloat(&cfg.Risk.VolThreshold, key, raw); err != nil {
				return err
			}
		case ParamEquityLossLimit:
			if err := setFloat(&cfg.Risk.EquityLossLimit, key, raw); err != nil {
				return err
			}
		case ParamMaxUnits:
			if err := setInt(&cfg.Risk.MaxUnits, key, raw); err != nil {
				return err
			}
		case ParamTailRows:
			if err := setInt(&cfg.TailRows, key, raw); err != nil {
				return err
			}
		case ParamDataFile:
			if s, ok := raw.(string); ok {
				cfg.DataFile = s
			} else {
				return paramTypeError(key, raw)
			}
		case ParamSymbol:
			if s, ok := raw.(string); ok {
				cfg.Symbol = s
			} else {
				return paramTypeError(key, raw)
			}
		default:
			return boterrors.NewConfigurationError("config", "applyParams", "unknown parameter").
				WithContext("key", key)
		}
	}
	return nil
}

func setFloat(target *float64, key string, raw interface{}) error {
	switch v := raw.(type) {
	case float64:
		*target = v
	case int:
		*target = float64(v)
	default:
		return paramTypeError(key, raw)
	}
	return nil
}

func setInt(target *int, key string, raw interface{}) error {
	switch v := raw.(type) {
	case int:
		*target = v
	case float64:
		if v != float64(int(v)) {
			return paramTypeError(key, raw)
		}
		*target = int(v)
	default:
		return paramTypeError(key, raw)
	}
	return nil
}

func paramTypeError(key string, raw interface{}) error {
	return boterrors.NewConfigurationError("config", "applyParams", "unsupported parameter type").
		WithContext("key", key).
		WithContext("type", fmt.Sprintf("%T", raw))
}
