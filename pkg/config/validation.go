package config

import (
	"fmt"
	"math"

	boterrors "github.com/ducminhle1904/crypto-risk-manager/internal/errors"
	"github.com/ducminhle1904/crypto-risk-manager/internal/risk"
)

// RiskValidator implements validation for run configurations
type RiskValidator struct{}

// NewRiskValidator creates a new validator
func NewRiskValidator() *RiskValidator {
	return &RiskValidator{}
}

// Validate checks every risk limit and output setting
func (v *RiskValidator) Validate(cfg *RunConfig) error {
	if cfg == nil {
		return configError("config is nil")
	}

	if err := ValidateRiskConfig(cfg.Risk); err != nil {
		return err
	}

	if cfg.TailRows < 0 {
		return configError(fmt.Sprintf("tail_rows must be non-negative, got: %d", cfg.TailRows))
	}

	return nil
}

// ValidateRiskConfig checks the engine limits against their documented ranges
func ValidateRiskConfig(rc risk.Config) error {
	if !isFinite(rc.MaxRiskPerTrade) || rc.MaxRiskPerTrade <= 0 {
		return configError(fmt.Sprintf("max_risk_per_trade must be positive, got: %v", rc.MaxRiskPerTrade))
	}

	if !isFinite(rc.MaxExposure) || rc.MaxExposure <= 0 {
		return configError(fmt.Sprintf("max_exposure must be positive, got: %v", rc.MaxExposure))
	}

	if rc.MaxUnits < 0 {
		return configError(fmt.Sprintf("max_units must be non-negative, got: %d", rc.MaxUnits))
	}

	if !isFinite(rc.VolThreshold) || rc.VolThreshold < 0 {
		return configError(fmt.Sprintf("vol_threshold must be non-negative, got: %v", rc.VolThreshold))
	}

	if !isFinite(rc.EquityLossLimit) || rc.EquityLossLimit <= 0 || rc.EquityLossLimit > MaxEquityLossLimit {
		return configError(fmt.Sprintf("equity_loss_limit must be within (0, %.0f], got: %v", MaxEquityLossLimit, rc.EquityLossLimit))
	}

	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func configError(message string) error {
	return boterrors.NewConfigurationError("config", "Validate", message)
}
