package config

import "github.com/ducminhle1904/crypto-risk-manager/internal/risk"

// RunConfig is the effective configuration for one risk manager run
type RunConfig struct {
	Symbol   string
	DataFile string
	TailRows int
	Risk     risk.Config
}

// NewDefaultRunConfig returns the documented defaults
func NewDefaultRunConfig() *RunConfig {
	return &RunConfig{
		Symbol:   DefaultSymbol,
		DataFile: DefaultDataFile,
		TailRows: DefaultTailRows,
		Risk:     risk.DefaultConfig(),
	}
}

// NestedConfig is the on-disk configuration layout
type NestedConfig struct {
	Input  InputConfig  `json:"input" yaml:"input"`
	Risk   risk.Config  `json:"risk" yaml:"risk"`
	Output OutputConfig `json:"output" yaml:"output"`
}

type InputConfig struct {
	Symbol   string `json:"symbol" yaml:"symbol"`
	DataFile string `json:"data_file" yaml:"data_file"`
}

type OutputConfig struct {
	TailRows int `json:"tail_rows" yaml:"tail_rows"`
}

// ToNested converts a run config to the on-disk layout
func (c *RunConfig) ToNested() NestedConfig {
	return NestedConfig{
		Input: InputConfig{
			Symbol:   c.Symbol,
			DataFile: c.DataFile,
		},
		Risk: c.Risk,
		Output: OutputConfig{
			TailRows: c.TailRows,
		},
	}
}

// applyNested copies a decoded nested config into the run config
func (c *RunConfig) applyNested(n NestedConfig) {
	c.Symbol = n.Input.Symbol
	c.DataFile = n.Input.DataFile
	c.Risk = n.Risk
	c.TailRows = n.Output.TailRows
}
